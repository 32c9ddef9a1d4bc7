package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	BadgeCategoryPersistence = "persistence"
	BadgeCategoryAbility     = "ability"
	BadgeCategoryReading     = "reading"
	BadgeCategoryExplore     = "explore"
)

type BadgeCondition string

const (
	BadgeCondFirstReading      BadgeCondition = "first_reading"
	BadgeCondStreakDays        BadgeCondition = "streak_days"
	BadgeCondTotalReadings     BadgeCondition = "total_readings"
	BadgeCondSkillAccuracy     BadgeCondition = "skill_accuracy"
	BadgeCondSkillCorrectCount BadgeCondition = "skill_correct_count"
	BadgeCondGenreCount        BadgeCondition = "genre_count"
	BadgeCondAllGenres         BadgeCondition = "all_genres"
)

// BadgeDefinition is an immutable catalog entry: a condition kind, a
// threshold, and an optional extra parameter (skill code or genre name).
type BadgeDefinition struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null;column:name" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	IconURL     string    `gorm:"column:icon_url" json:"icon_url"`
	Category    string    `gorm:"column:category;not null" json:"category"`

	ConditionKind  BadgeCondition `gorm:"column:condition_kind;not null" json:"condition_kind"`
	ConditionValue int            `gorm:"column:condition_value;not null" json:"condition_value"`
	ConditionExtra string         `gorm:"column:condition_extra" json:"condition_extra,omitempty"`

	DisplayOrder int       `gorm:"column:display_order;not null;default:0" json:"display_order"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (BadgeDefinition) TableName() string { return "badge_definition" }

func (b *BadgeDefinition) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// BadgeAward records one unlock. idx_user_badge guarantees a badge is never
// awarded twice, no matter how completions race.
type BadgeAward struct {
	ID      uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  uuid.UUID        `gorm:"type:uuid;not null;index:idx_user_badge,unique" json:"user_id"`
	User    *User            `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	BadgeID uuid.UUID        `gorm:"type:uuid;not null;index:idx_user_badge,unique" json:"badge_id"`
	Badge   *BadgeDefinition `gorm:"constraint:OnDelete:CASCADE;foreignKey:BadgeID;references:ID" json:"badge,omitempty"`

	EarnedAt time.Time `gorm:"column:earned_at;not null" json:"earned_at"`
}

func (BadgeAward) TableName() string { return "badge_award" }

func (ba *BadgeAward) BeforeCreate(tx *gorm.DB) error {
	if ba.ID == uuid.Nil {
		ba.ID = uuid.New()
	}
	if ba.EarnedAt.IsZero() {
		ba.EarnedAt = time.Now().UTC()
	}
	return nil
}
