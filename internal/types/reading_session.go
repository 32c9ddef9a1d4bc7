package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReadingSession is one attempt at reading an article and answering its
// questions. Mutable only while CompletedAt is null; correct_count never
// exceeds total_count.
type ReadingSession struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ArticleID uuid.UUID `gorm:"type:uuid;not null;index" json:"article_id"`
	Article   *Article  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ArticleID;references:ID" json:"article,omitempty"`

	// Score is 0-100, null until completed.
	Score        *int `gorm:"column:score" json:"score,omitempty"`
	CorrectCount int  `gorm:"column:correct_count;not null;default:0" json:"correct_count"`
	// TotalCount snapshots the article's question count at start.
	TotalCount int `gorm:"column:total_count;not null;default:0" json:"total_count"`

	TimeSpent   *int       `gorm:"column:time_spent" json:"time_spent,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at;index" json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`

	Answers []*AnswerRecord `gorm:"foreignKey:SessionID;references:ID" json:"answers,omitempty"`
}

func (ReadingSession) TableName() string { return "reading_session" }

func (s *ReadingSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// AnswerRecord is one graded submission; at most one per (session, question),
// enforced by idx_session_question.
type AnswerRecord struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_session_question,unique" json:"session_id"`
	Session    *ReadingSession `gorm:"constraint:OnDelete:CASCADE;foreignKey:SessionID;references:ID" json:"session,omitempty"`
	QuestionID uuid.UUID       `gorm:"type:uuid;not null;index:idx_session_question,unique" json:"question_id"`
	Question   *Question       `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuestionID;references:ID" json:"question,omitempty"`

	UserAnswer string `gorm:"type:text;column:user_answer" json:"user_answer"`
	IsCorrect  bool   `gorm:"column:is_correct;not null;default:false" json:"is_correct"`

	// Reserved for out-of-band short-answer review.
	AIScore    *int   `gorm:"column:ai_score" json:"ai_score,omitempty"`
	AIFeedback string `gorm:"type:text;column:ai_feedback" json:"ai_feedback,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (AnswerRecord) TableName() string { return "answer_record" }

func (a *AnswerRecord) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
