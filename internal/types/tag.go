package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TagCategoryGrade      = "grade"
	TagCategoryGenre      = "genre"
	TagCategorySource     = "source"
	TagCategoryTheme      = "theme"
	TagCategoryCulture    = "culture"
	TagCategoryAdaptation = "adaptation"
)

type Tag struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"not null;index:idx_tag_name_category,unique;column:name" json:"name"`
	Category     string    `gorm:"not null;index:idx_tag_name_category,unique;index;column:category" json:"category"`
	Description  string    `gorm:"column:description" json:"description"`
	DisplayOrder int       `gorm:"column:display_order;not null;default:0" json:"display_order"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (Tag) TableName() string { return "tag" }

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
