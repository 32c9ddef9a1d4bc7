package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OpenID    string    `gorm:"uniqueIndex;not null;column:openid" json:"openid"`
	Nickname  string    `gorm:"column:nickname" json:"nickname"`
	AvatarURL string    `gorm:"column:avatar_url" json:"avatar_url"`
	Grade     int       `gorm:"column:grade" json:"grade"`

	// Cached counters, kept consistent with check_ins and reading_sessions
	// inside the completion transaction.
	TotalReadings int `gorm:"column:total_readings;not null;default:0" json:"total_readings"`
	StreakDays    int `gorm:"column:streak_days;not null;default:0" json:"streak_days"`
	MaxStreakDays int `gorm:"column:max_streak_days;not null;default:0" json:"max_streak_days"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
