package repositories

import (
	"errors"
	"fmt"
	"time"

	"authorshaven/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMArticleRepository is a GORM implementation of ArticleRepository.
type GORMArticleRepository struct {
	db *gorm.DB
}

// NewGORMArticleRepository creates a new instance of GORMArticleRepository.
func NewGORMArticleRepository(db *gorm.DB) *GORMArticleRepository {
	return &GORMArticleRepository{
		db: db,
	}
}

// Create creates a new article together with its tag associations.
func (r *GORMArticleRepository) Create(article *models.Article) error {
	if article.ID == "" {
		article.ID = uuid.New().String()
	}
	if err := r.db.Create(article).Error; err != nil {
		return fmt.Errorf("failed to create article: %w", err)
	}
	return nil
}

// GetBySlug retrieves a single article by its slug, with the author and
// tags loaded.
func (r *GORMArticleRepository) GetBySlug(slug string) (*models.Article, error) {
	var article models.Article
	err := r.db.Preload("Author").Preload("Tags").First(&article, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("article with slug %s: %w", slug, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get article by slug %s: %w", slug, err)
	}
	return &article, nil
}

// Search lists articles matching the filter, newest first with ties
// broken by author. The fixed ordering keeps offset pagination stable.
func (r *GORMArticleRepository) Search(filter ArticleFilter) ([]models.Article, error) {
	query := r.db.Model(&models.Article{}).Preload("Author").Preload("Tags")

	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		query = query.Where("articles.title LIKE ? OR articles.description LIKE ? OR articles.body LIKE ?", like, like, like)
	}
	if filter.Tag != "" {
		query = query.
			Joins("JOIN article_tags ON article_tags.article_id = articles.id").
			Joins("JOIN tags ON tags.id = article_tags.tag_id").
			Where("tags.name = ?", filter.Tag)
	}
	if filter.Author != "" {
		query = query.
			Joins("JOIN users ON users.id = articles.author_id").
			Where("users.username = ?", filter.Author)
	}

	var articles []models.Article
	err := query.
		Distinct("articles.*").
		Order("articles.created_at DESC").
		Order("articles.author_id ASC").
		Find(&articles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search articles: %w", err)
	}
	return articles, nil
}

// Update persists changes to an existing article and replaces its tag
// associations. The slug is never changed here.
func (r *GORMArticleRepository) Update(article *models.Article) error {
	res := r.db.Omit("Tags").Save(article)
	if res.Error != nil {
		return fmt.Errorf("failed to update article: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("article with ID %s: %w", article.ID, ErrNotFound)
	}
	if err := r.db.Model(article).Association("Tags").Replace(article.Tags); err != nil {
		return fmt.Errorf("failed to update article tags: %w", err)
	}
	return nil
}

// Delete removes the article with the given slug if it is owned by the
// given author.
func (r *GORMArticleRepository) Delete(slug, authorID string) error {
	res := r.db.Where("slug = ? AND author_id = ?", slug, authorID).Delete(&models.Article{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete article: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("article with slug %s: %w", slug, ErrNotFound)
	}
	return nil
}

// SlugExists reports whether any article already uses the given slug.
// Soft-deleted articles still hold their slug in the unique index, so
// the check runs unscoped.
func (r *GORMArticleRepository) SlugExists(slug string) (bool, error) {
	var count int64
	if err := r.db.Unscoped().Model(&models.Article{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check slug %s: %w", slug, err)
	}
	return count > 0, nil
}

// AverageRating computes the arithmetic mean of all rating scores for
// the article, 0 when it has none. The value is recomputed on every
// call, never cached.
func (r *GORMArticleRepository) AverageRating(articleID string) (float64, error) {
	var avg float64
	err := r.db.Model(&models.Rating{}).
		Where("article_id = ?", articleID).
		Select("COALESCE(AVG(score), 0)").
		Scan(&avg).Error
	if err != nil {
		return 0, fmt.Errorf("failed to compute average rating for article %s: %w", articleID, err)
	}
	return avg, nil
}

// UpsertRating records a user's score for an article. A second rating
// by the same user replaces the first one.
func (r *GORMArticleRepository) UpsertRating(rating *models.Rating) error {
	if rating.ID == "" {
		rating.ID = uuid.New().String()
	}
	if rating.RatedAt.IsZero() {
		rating.RatedAt = time.Now()
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "article_id"}, {Name: "rated_by"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "rated_at"}),
	}).Create(rating).Error
	if err != nil {
		return fmt.Errorf("failed to upsert rating: %w", err)
	}
	return nil
}

// Favorite inserts the favorite relation and increments the article's
// favorites_count in one transaction, so a partial update can never
// leave the counter out of sync with the relation.
func (r *GORMArticleRepository) Favorite(userID, articleID string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		fav := models.Favorite{
			ID:        uuid.New().String(),
			UserID:    userID,
			ArticleID: articleID,
		}
		if err := tx.Create(&fav).Error; err != nil {
			return err
		}
		return tx.Model(&models.Article{}).
			Where("id = ?", articleID).
			UpdateColumn("favorites_count", gorm.Expr("favorites_count + 1")).Error
	})
	if err != nil {
		return fmt.Errorf("failed to favorite article %s: %w", articleID, err)
	}
	return nil
}

// Unfavorite removes the favorite relation and decrements the article's
// favorites_count in one transaction. The counter is floored at zero.
func (r *GORMArticleRepository) Unfavorite(userID, articleID string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND article_id = ?", userID, articleID).Delete(&models.Favorite{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Model(&models.Article{}).
			Where("id = ?", articleID).
			UpdateColumn("favorites_count",
				gorm.Expr("CASE WHEN favorites_count > 0 THEN favorites_count - 1 ELSE 0 END")).Error
	})
	if err != nil {
		return fmt.Errorf("failed to unfavorite article %s: %w", articleID, err)
	}
	return nil
}

// IsFavorited reports whether the user already favorited the article.
func (r *GORMArticleRepository) IsFavorited(userID, articleID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Favorite{}).
		Where("user_id = ? AND article_id = ?", userID, articleID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check favorite state: %w", err)
	}
	return count > 0, nil
}

// GetPreference returns the user's like/dislike for the article, or nil
// when no sentiment is held.
func (r *GORMArticleRepository) GetPreference(userID, articleID string) (*models.Preference, error) {
	var pref models.Preference
	err := r.db.First(&pref, "user_id = ? AND article_id = ?", userID, articleID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get preference: %w", err)
	}
	return &pref, nil
}

// SetPreference records or replaces the user's like/dislike for the
// article.
func (r *GORMArticleRepository) SetPreference(pref *models.Preference) error {
	if pref.ID == "" {
		pref.ID = uuid.New().String()
	}
	pref.UpdatedAt = time.Now()
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "article_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(pref).Error
	if err != nil {
		return fmt.Errorf("failed to set preference: %w", err)
	}
	return nil
}

// ClearPreference removes any like/dislike the user holds for the
// article.
func (r *GORMArticleRepository) ClearPreference(userID, articleID string) error {
	err := r.db.Where("user_id = ? AND article_id = ?", userID, articleID).Delete(&models.Preference{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear preference: %w", err)
	}
	return nil
}
