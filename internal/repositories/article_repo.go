package repositories

import "authorshaven/internal/models"

// ArticleFilter carries the optional search criteria for listing
// articles. Zero-valued fields are ignored; set fields combine with AND
// semantics.
type ArticleFilter struct {
	Query  string // free-text match across title, description and body
	Tag    string // tag name, snake_case form
	Author string // author username
}

// ArticleRepository defines the interface for article data access,
// including the engagement relations (ratings, favorites, preferences)
// owned by articles.
//
// Favorite and Unfavorite must update the join row and the article's
// favorites_count in a single transaction so the counter never drifts
// from the relation's cardinality.
type ArticleRepository interface {
	Create(article *models.Article) error
	GetBySlug(slug string) (*models.Article, error)
	Search(filter ArticleFilter) ([]models.Article, error)
	Update(article *models.Article) error
	Delete(slug, authorID string) error
	SlugExists(slug string) (bool, error)

	AverageRating(articleID string) (float64, error)
	UpsertRating(rating *models.Rating) error

	Favorite(userID, articleID string) error
	Unfavorite(userID, articleID string) error
	IsFavorited(userID, articleID string) (bool, error)

	GetPreference(userID, articleID string) (*models.Preference, error)
	SetPreference(pref *models.Preference) error
	ClearPreference(userID, articleID string) error
}
