package db

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/readleap/readleap-backend/internal/logger"
	"github.com/readleap/readleap-backend/internal/types"
)

type badgeCatalogFile struct {
	Badges []badgeCatalogEntry `yaml:"badges"`
}

type badgeCatalogEntry struct {
	Name           string `yaml:"name"`
	Description    string `yaml:"description"`
	IconURL        string `yaml:"icon_url"`
	Category       string `yaml:"category"`
	ConditionKind  string `yaml:"condition_kind"`
	ConditionValue int    `yaml:"condition_value"`
	ConditionExtra string `yaml:"condition_extra"`
	DisplayOrder   int    `yaml:"display_order"`
}

var validBadgeConditions = map[types.BadgeCondition]struct{}{
	types.BadgeCondFirstReading:      {},
	types.BadgeCondStreakDays:        {},
	types.BadgeCondTotalReadings:     {},
	types.BadgeCondSkillAccuracy:     {},
	types.BadgeCondSkillCorrectCount: {},
	types.BadgeCondGenreCount:        {},
	types.BadgeCondAllGenres:         {},
}

// SeedBadgeCatalog loads the badge catalog YAML and upserts it keyed on badge
// name. Condition semantics of existing badges may be tuned between deploys;
// awards already granted are never revisited.
func SeedBadgeCatalog(gormDB *gorm.DB, log *logger.Logger, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read badge catalog: %w", err)
	}

	var file badgeCatalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse badge catalog: %w", err)
	}

	for i, entry := range file.Badges {
		if entry.Name == "" {
			return fmt.Errorf("badge catalog entry %d: missing name", i)
		}
		kind := types.BadgeCondition(entry.ConditionKind)
		if _, ok := validBadgeConditions[kind]; !ok {
			return fmt.Errorf("badge catalog entry %q: unknown condition kind %q", entry.Name, entry.ConditionKind)
		}

		def := types.BadgeDefinition{
			Name:           entry.Name,
			Description:    entry.Description,
			IconURL:        entry.IconURL,
			Category:       entry.Category,
			ConditionKind:  kind,
			ConditionValue: entry.ConditionValue,
			ConditionExtra: entry.ConditionExtra,
			DisplayOrder:   entry.DisplayOrder,
		}
		if err := gormDB.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"description", "icon_url", "category",
				"condition_kind", "condition_value", "condition_extra",
				"display_order",
			}),
		}).Create(&def).Error; err != nil {
			return fmt.Errorf("upsert badge %q: %w", entry.Name, err)
		}
	}

	log.Info("Badge catalog seeded", "count", len(file.Badges))
	return nil
}
