package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SkillCategoryInformation   = "information"
	SkillCategoryComprehension = "comprehension"
	SkillCategoryAnalysis      = "analysis"
	SkillCategoryExpression    = "expression"
)

// SkillDimension is a tagged comprehension dimension questions are associated
// with (e.g. detail extraction).
type SkillDimension struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"uniqueIndex;not null;column:name" json:"name"`
	Code         string    `gorm:"uniqueIndex;not null;column:code" json:"code"`
	Category     string    `gorm:"not null;column:category" json:"category"`
	Description  string    `gorm:"column:description" json:"description"`
	DisplayOrder int       `gorm:"column:display_order;not null;default:0" json:"display_order"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (SkillDimension) TableName() string { return "skill_dimension" }

func (s *SkillDimension) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SkillMastery is a user's cumulative accuracy on one skill across every
// session ever completed. Counters only grow; score is derived from them.
type SkillMastery struct {
	ID      uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_user_skill,unique" json:"user_id"`
	User    *User           `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	SkillID uuid.UUID       `gorm:"type:uuid;not null;index:idx_user_skill,unique" json:"skill_id"`
	Skill   *SkillDimension `gorm:"constraint:OnDelete:CASCADE;foreignKey:SkillID;references:ID" json:"skill,omitempty"`

	CorrectCount int     `gorm:"column:correct_count;not null;default:0" json:"correct_count"`
	TotalCount   int     `gorm:"column:total_count;not null;default:0" json:"total_count"`
	Score        float64 `gorm:"column:score;not null;default:0" json:"score"`

	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (SkillMastery) TableName() string { return "skill_mastery" }

func (m *SkillMastery) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
