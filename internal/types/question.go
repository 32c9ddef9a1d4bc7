package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionKind string

const (
	QuestionKindChoice      QuestionKind = "choice"
	QuestionKindJudge       QuestionKind = "judge"
	QuestionKindFill        QuestionKind = "fill"
	QuestionKindShortAnswer QuestionKind = "short_answer"
)

type Question struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ArticleID uuid.UUID `gorm:"type:uuid;not null;index" json:"article_id"`
	Article   *Article  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ArticleID;references:ID" json:"article,omitempty"`

	Kind    QuestionKind `gorm:"column:kind;not null" json:"kind"`
	Content string       `gorm:"type:text;not null;column:content" json:"content"`

	Options datatypes.JSON `gorm:"type:jsonb;column:options" json:"options,omitempty"`

	Answer      string `gorm:"type:text;not null;column:answer" json:"answer"`
	Explanation string `gorm:"type:text;column:explanation" json:"explanation"`
	Hint        string `gorm:"column:hint" json:"hint"`

	Difficulty   int  `gorm:"column:difficulty;not null;default:2" json:"difficulty"`
	DisplayOrder int  `gorm:"column:display_order;not null;default:0" json:"display_order"`
	IsAIGen      bool `gorm:"column:is_ai_generated;not null;default:false" json:"is_ai_generated"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Skills []*QuestionSkill `gorm:"foreignKey:QuestionID;references:ID" json:"skills,omitempty"`
}

func (Question) TableName() string { return "question" }

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

type QuestionSkill struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID uuid.UUID       `gorm:"type:uuid;not null;index:idx_question_skill,unique" json:"question_id"`
	Question   *Question       `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuestionID;references:ID" json:"question,omitempty"`
	SkillID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_question_skill,unique" json:"skill_id"`
	Skill      *SkillDimension `gorm:"constraint:OnDelete:CASCADE;foreignKey:SkillID;references:ID" json:"skill,omitempty"`

	// Reserved. Written by content tooling, not used by aggregation.
	Weight int `gorm:"column:weight;not null;default:1" json:"weight"`
}

func (QuestionSkill) TableName() string { return "question_skill" }

func (qs *QuestionSkill) BeforeCreate(tx *gorm.DB) error {
	if qs.ID == uuid.Nil {
		qs.ID = uuid.New()
	}
	return nil
}
