package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ArticleStatusDraft     = "draft"
	ArticleStatusPending   = "pending"
	ArticleStatusPublished = "published"
	ArticleStatusArchived  = "archived"
)

type Article struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title   string    `gorm:"not null;index;column:title" json:"title"`
	Content string    `gorm:"type:text;not null;column:content" json:"content"`

	SourceBook    string `gorm:"column:source_book" json:"source_book"`
	SourceChapter string `gorm:"column:source_chapter" json:"source_chapter"`
	IsExcerpt     bool   `gorm:"column:is_excerpt;not null;default:false" json:"is_excerpt"`

	WordCount   int `gorm:"column:word_count;not null" json:"word_count"`
	ReadingTime int `gorm:"column:reading_time;not null" json:"reading_time"`
	Difficulty  int `gorm:"column:difficulty;not null;default:2" json:"difficulty"`

	Status string `gorm:"column:status;not null;default:'draft';index" json:"status"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Questions []*Question   `gorm:"foreignKey:ArticleID;references:ID" json:"questions,omitempty"`
	Tags      []*ArticleTag `gorm:"foreignKey:ArticleID;references:ID" json:"tags,omitempty"`
}

func (Article) TableName() string { return "article" }

func (a *Article) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type ArticleTag struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ArticleID uuid.UUID `gorm:"type:uuid;not null;index:idx_article_tag,unique" json:"article_id"`
	Article   *Article  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ArticleID;references:ID" json:"article,omitempty"`
	TagID     uuid.UUID `gorm:"type:uuid;not null;index:idx_article_tag,unique" json:"tag_id"`
	Tag       *Tag      `gorm:"constraint:OnDelete:CASCADE;foreignKey:TagID;references:ID" json:"tag,omitempty"`
}

func (ArticleTag) TableName() string { return "article_tag" }

func (at *ArticleTag) BeforeCreate(tx *gorm.DB) error {
	if at.ID == uuid.Nil {
		at.ID = uuid.New()
	}
	return nil
}
