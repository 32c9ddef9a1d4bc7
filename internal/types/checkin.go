package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CheckIn marks one user as having completed at least one session on one
// calendar day. CheckDate is always UTC midnight; idx_user_check_date keeps
// it to one per user per day.
type CheckIn struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_user_check_date,unique" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	CheckDate time.Time `gorm:"column:check_date;not null;index:idx_user_check_date,unique" json:"check_date"`

	SessionID *uuid.UUID      `gorm:"type:uuid;column:session_id" json:"session_id,omitempty"`
	Session   *ReadingSession `gorm:"constraint:OnDelete:SET NULL;foreignKey:SessionID;references:ID" json:"session,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (CheckIn) TableName() string { return "check_in" }

func (c *CheckIn) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
