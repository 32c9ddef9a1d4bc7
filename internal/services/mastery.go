package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/readleap/readleap-backend/internal/logger"
	"github.com/readleap/readleap-backend/internal/repos"
	"github.com/readleap/readleap-backend/internal/types"
)

// SkillScoreItem is the session-local outcome for one skill: how the user did
// on this session's questions tagged with it.
type SkillScoreItem struct {
	SkillID      uuid.UUID `json:"ability_id"`
	SkillName    string    `json:"ability_name"`
	CorrectCount int       `json:"correct_count"`
	TotalCount   int       `json:"total_count"`
	Score        float64   `json:"score"`
}

// MasteryService folds a completed session's answers into the user's
// cumulative per-skill counters. Mastery is all-time cumulative accuracy:
// never decayed, never windowed, monotonic in sample size.
type MasteryService interface {
	// ApplySession must run inside the completion transaction.
	ApplySession(ctx context.Context, tx *gorm.DB, session *types.ReadingSession) ([]SkillScoreItem, error)
}

type masteryService struct {
	log         *logger.Logger
	answerRepo  repos.AnswerRecordRepo
	masteryRepo repos.SkillMasteryRepo
}

func NewMasteryService(log *logger.Logger, answerRepo repos.AnswerRecordRepo, masteryRepo repos.SkillMasteryRepo) MasteryService {
	return &masteryService{
		log:         log.With("service", "MasteryService"),
		answerRepo:  answerRepo,
		masteryRepo: masteryRepo,
	}
}

type skillStat struct {
	name    string
	correct int
	total   int
}

func (ms *masteryService) ApplySession(ctx context.Context, tx *gorm.DB, session *types.ReadingSession) ([]SkillScoreItem, error) {
	answers, err := ms.answerRepo.ListBySessionWithSkills(ctx, tx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("list session answers: %w", err)
	}

	// A question may carry several skill tags; each tag counts the answer
	// once. Tag weights are reserved and ignored here.
	stats := map[uuid.UUID]*skillStat{}
	var order []uuid.UUID
	for _, answer := range answers {
		if answer.Question == nil {
			continue
		}
		for _, qs := range answer.Question.Skills {
			if qs.Skill == nil {
				continue
			}
			stat, ok := stats[qs.SkillID]
			if !ok {
				stat = &skillStat{name: qs.Skill.Name}
				stats[qs.SkillID] = stat
				order = append(order, qs.SkillID)
			}
			stat.total++
			if answer.IsCorrect {
				stat.correct++
			}
		}
	}

	sort.Slice(order, func(i, j int) bool {
		return stats[order[i]].name < stats[order[j]].name
	})

	items := make([]SkillScoreItem, 0, len(order))
	for _, skillID := range order {
		stat := stats[skillID]

		mastery, err := ms.masteryRepo.GetByUserAndSkillForUpdate(ctx, tx, session.UserID, skillID)
		if err != nil {
			return nil, fmt.Errorf("fetch skill mastery: %w", err)
		}
		if mastery == nil {
			mastery = &types.SkillMastery{
				UserID:  session.UserID,
				SkillID: skillID,
			}
			if err := ms.masteryRepo.Create(ctx, tx, mastery); err != nil {
				return nil, fmt.Errorf("create skill mastery: %w", err)
			}
		}

		mastery.CorrectCount += stat.correct
		mastery.TotalCount += stat.total
		if mastery.TotalCount > 0 {
			mastery.Score = float64(mastery.CorrectCount) / float64(mastery.TotalCount) * 100
		}
		if err := ms.masteryRepo.Save(ctx, tx, mastery); err != nil {
			return nil, fmt.Errorf("save skill mastery: %w", err)
		}

		sessionScore := 0.0
		if stat.total > 0 {
			sessionScore = float64(stat.correct) / float64(stat.total) * 100
		}
		items = append(items, SkillScoreItem{
			SkillID:      skillID,
			SkillName:    stat.name,
			CorrectCount: stat.correct,
			TotalCount:   stat.total,
			Score:        math.Round(sessionScore*10) / 10,
		})
	}

	return items, nil
}
