package models

import (
	"time"

	"gorm.io/gorm"
)

// Tag labels zero or more articles. Names are stored in snake_case form
// and must be unique.
type Tag struct {
	ID   string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name string `json:"name" gorm:"uniqueIndex;type:varchar(64)" validate:"required,min=1,max=64"`
}

// Article represents a published post. The slug is derived from the title
// at creation time, is globally unique and never changes afterwards.
// AverageRating is recomputed on every read and never stored.
type Article struct {
	ID             string         `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Slug           string         `json:"slug" gorm:"uniqueIndex;type:varchar(100)"`
	AuthorID       *string        `json:"-" gorm:"type:varchar(36)"` // nullable to tolerate author deletion
	Author         *User          `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Title          string         `json:"title" validate:"required,min=1,max=255"`
	Description    string         `json:"description" gorm:"type:text" validate:"required,min=1"`
	Body           string         `json:"body" gorm:"type:text" validate:"required,min=1"`
	PhotoURL       string         `json:"photo_url" gorm:"type:varchar(255)" validate:"omitempty,url"`
	FavoritesCount int            `json:"favorites_count" gorm:"default:0"`
	AverageRating  float64        `json:"average_rating" gorm:"-"`
	Tags           []Tag          `json:"tags" gorm:"many2many:article_tags"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// TagNames flattens the association for responses and event payloads.
func (a *Article) TagNames() []string {
	names := make([]string, 0, len(a.Tags))
	for _, t := range a.Tags {
		names = append(names, t.Name)
	}
	return names
}
