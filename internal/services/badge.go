package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/readleap/readleap-backend/internal/clients/redis"
	"github.com/readleap/readleap-backend/internal/logger"
	"github.com/readleap/readleap-backend/internal/repos"
	"github.com/readleap/readleap-backend/internal/types"
)

// Accuracy badges require this many graded answers on the skill before the
// percentage means anything.
const minAccuracySampleSize = 10

const (
	badgeCatalogCacheKey = "badge:catalog"
	badgeCatalogCacheTTL = 10 * time.Minute
)

// BadgeUnlock is one newly earned badge in a completion response.
type BadgeUnlock struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IconURL     string    `json:"icon_url"`
}

// BadgeService evaluates the declarative badge catalog against a user's
// just-updated aggregate state and awards whatever newly holds. Safe to
// re-run: ownership is checked before predicates, and the unique
// (user, badge) index is the backstop against concurrent double-awards.
type BadgeService interface {
	// Evaluate must run inside the completion transaction, after mastery,
	// streak, and the user counters have been updated.
	Evaluate(ctx context.Context, tx *gorm.DB, user *types.User) ([]BadgeUnlock, error)
}

type badgeService struct {
	log         *logger.Logger
	badgeRepo   repos.BadgeRepo
	masteryRepo repos.SkillMasteryRepo
	sessionRepo repos.ReadingSessionRepo
	tagRepo     repos.TagRepo
	cache       redisclient.Cache
}

// NewBadgeService accepts a nil cache; catalog reads then always hit the DB.
func NewBadgeService(log *logger.Logger, badgeRepo repos.BadgeRepo, masteryRepo repos.SkillMasteryRepo, sessionRepo repos.ReadingSessionRepo, tagRepo repos.TagRepo, cache redisclient.Cache) BadgeService {
	return &badgeService{
		log:         log.With("service", "BadgeService"),
		badgeRepo:   badgeRepo,
		masteryRepo: masteryRepo,
		sessionRepo: sessionRepo,
		tagRepo:     tagRepo,
		cache:       cache,
	}
}

func (bs *badgeService) Evaluate(ctx context.Context, tx *gorm.DB, user *types.User) ([]BadgeUnlock, error) {
	defs, err := bs.loadCatalog(ctx, tx)
	if err != nil {
		return nil, err
	}

	ownedIDs, err := bs.badgeRepo.ListAwardedBadgeIDs(ctx, tx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list awarded badges: %w", err)
	}
	owned := make(map[uuid.UUID]struct{}, len(ownedIDs))
	for _, id := range ownedIDs {
		owned[id] = struct{}{}
	}

	var unlocks []BadgeUnlock
	for _, def := range defs {
		if _, already := owned[def.ID]; already {
			continue
		}

		earned, err := bs.earned(ctx, tx, user, def)
		if err != nil {
			return nil, err
		}
		if !earned {
			continue
		}

		award := &types.BadgeAward{
			UserID:  user.ID,
			BadgeID: def.ID,
		}
		if err := bs.badgeRepo.CreateAward(ctx, tx, award); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// A concurrent completion awarded it first.
				continue
			}
			return nil, fmt.Errorf("create badge award: %w", err)
		}

		unlocks = append(unlocks, BadgeUnlock{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			IconURL:     def.IconURL,
		})
	}

	return unlocks, nil
}

func (bs *badgeService) earned(ctx context.Context, tx *gorm.DB, user *types.User, def *types.BadgeDefinition) (bool, error) {
	switch def.ConditionKind {
	case types.BadgeCondFirstReading:
		return user.TotalReadings >= 1, nil

	case types.BadgeCondStreakDays:
		return user.StreakDays >= def.ConditionValue, nil

	case types.BadgeCondTotalReadings:
		return user.TotalReadings >= def.ConditionValue, nil

	case types.BadgeCondSkillAccuracy:
		mastery, err := bs.masteryRepo.GetByUserAndSkillCode(ctx, tx, user.ID, def.ConditionExtra)
		if err != nil {
			return false, fmt.Errorf("fetch mastery for %q: %w", def.ConditionExtra, err)
		}
		if mastery == nil || mastery.TotalCount < minAccuracySampleSize {
			return false, nil
		}
		return mastery.Score >= float64(def.ConditionValue), nil

	case types.BadgeCondSkillCorrectCount:
		mastery, err := bs.masteryRepo.GetByUserAndSkillCode(ctx, tx, user.ID, def.ConditionExtra)
		if err != nil {
			return false, fmt.Errorf("fetch mastery for %q: %w", def.ConditionExtra, err)
		}
		if mastery == nil {
			return false, nil
		}
		return mastery.CorrectCount >= def.ConditionValue, nil

	case types.BadgeCondGenreCount:
		count, err := bs.sessionRepo.CountCompletedWithGenre(ctx, tx, user.ID, def.ConditionExtra)
		if err != nil {
			return false, fmt.Errorf("count genre readings for %q: %w", def.ConditionExtra, err)
		}
		return count >= int64(def.ConditionValue), nil

	case types.BadgeCondAllGenres:
		all, err := bs.tagRepo.GenreNames(ctx, tx)
		if err != nil {
			return false, fmt.Errorf("list genres: %w", err)
		}
		if len(all) == 0 {
			return false, nil
		}
		covered, err := bs.sessionRepo.DistinctCompletedGenres(ctx, tx, user.ID)
		if err != nil {
			return false, fmt.Errorf("list covered genres: %w", err)
		}
		coveredSet := make(map[string]struct{}, len(covered))
		for _, name := range covered {
			coveredSet[name] = struct{}{}
		}
		for _, name := range all {
			if _, ok := coveredSet[name]; !ok {
				return false, nil
			}
		}
		return true, nil
	}

	bs.log.Warn("Unknown badge condition kind", "kind", def.ConditionKind, "badge", def.Name)
	return false, nil
}

// loadCatalog serves the immutable badge catalog from redis when available.
// Cache failures degrade to the DB read, never to an error.
func (bs *badgeService) loadCatalog(ctx context.Context, tx *gorm.DB) ([]*types.BadgeDefinition, error) {
	if bs.cache != nil {
		var cached []*types.BadgeDefinition
		hit, err := bs.cache.GetJSON(ctx, badgeCatalogCacheKey, &cached)
		if err != nil {
			bs.log.Warn("Badge catalog cache read failed", "error", err)
		} else if hit {
			return cached, nil
		}
	}

	defs, err := bs.badgeRepo.ListDefinitions(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("list badge definitions: %w", err)
	}

	if bs.cache != nil {
		if err := bs.cache.SetJSON(ctx, badgeCatalogCacheKey, defs, badgeCatalogCacheTTL); err != nil {
			bs.log.Warn("Badge catalog cache write failed", "error", err)
		}
	}
	return defs, nil
}
