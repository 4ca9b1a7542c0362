package models

import "time"

// Rating is one user's score for an article. A user rates an article at
// most once; rating again replaces the previous score.
type Rating struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	ArticleID string    `json:"article_id" gorm:"type:varchar(36);uniqueIndex:idx_rating_article_user"`
	RatedBy   string    `json:"rated_by" gorm:"type:varchar(36);uniqueIndex:idx_rating_article_user"`
	Score     float64   `json:"score" validate:"required,gte=1,lte=5"`
	RatedAt   time.Time `json:"rated_at"`
}
