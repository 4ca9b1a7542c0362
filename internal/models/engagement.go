package models

import "time"

// PreferenceValue is a user's sentiment toward an article. Like and
// dislike are mutually exclusive per (user, article) pair.
type PreferenceValue string

const (
	PreferenceLike    PreferenceValue = "like"
	PreferenceDislike PreferenceValue = "dislike"
)

// Favorite marks an article as a favorite of a user. The article's
// favorites_count must always equal the number of Favorite rows for it.
type Favorite struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);uniqueIndex:idx_favorite_user_article"`
	ArticleID string    `json:"article_id" gorm:"type:varchar(36);uniqueIndex:idx_favorite_user_article"`
	CreatedAt time.Time `json:"created_at"`
}

// Preference stores a user's like or dislike of an article. A row exists
// only while the user holds a sentiment; toggling back to none deletes it.
type Preference struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string          `json:"user_id" gorm:"type:varchar(36);uniqueIndex:idx_preference_user_article"`
	ArticleID string          `json:"article_id" gorm:"type:varchar(36);uniqueIndex:idx_preference_user_article"`
	Value     PreferenceValue `json:"value" gorm:"type:varchar(10)"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ArticleReport records a user's complaint about an article. Reports are
// never deduplicated and are visible only to superusers.
type ArticleReport struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36)"`
	ArticleID string    `json:"article_id" gorm:"type:varchar(36);index"`
	Message   string    `json:"message" gorm:"type:text" validate:"required,min=1"`
	CreatedAt time.Time `json:"created_at"`
}
