package repositories

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"authorshaven/internal/models"

	"github.com/google/uuid"
)

// MockArticleRepository is an in-memory implementation of
// ArticleRepository, used by service unit tests.
type MockArticleRepository struct {
	articles     map[string]models.Article    // keyed by article ID
	ratings      map[string]models.Rating     // keyed by articleID|userID
	favorites    map[string]models.Favorite   // keyed by userID|articleID
	prefs        map[string]models.Preference // keyed by userID|articleID
	deletedSlugs map[string]bool              // slugs stay reserved after deletion
	mu           sync.RWMutex
}

// NewMockArticleRepository creates a new instance of MockArticleRepository.
func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{
		articles:     make(map[string]models.Article),
		ratings:      make(map[string]models.Rating),
		favorites:    make(map[string]models.Favorite),
		prefs:        make(map[string]models.Preference),
		deletedSlugs: make(map[string]bool),
	}
}

func pairKey(a, b string) string {
	return a + "|" + b
}

// Create adds a new article.
func (r *MockArticleRepository) Create(article *models.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if article.ID == "" {
		article.ID = uuid.New().String()
	}
	if article.CreatedAt.IsZero() {
		article.CreatedAt = time.Now()
	}
	article.UpdatedAt = article.CreatedAt
	r.articles[article.ID] = *article
	return nil
}

// GetBySlug returns an article by its slug.
func (r *MockArticleRepository) GetBySlug(slug string) (*models.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, article := range r.articles {
		if article.Slug == slug {
			found := article
			return &found, nil
		}
	}
	return nil, fmt.Errorf("article with slug %s: %w", slug, ErrNotFound)
}

// Search filters and orders the stored articles the same way the GORM
// implementation does: newest first, ties broken by author.
func (r *MockArticleRepository) Search(filter ArticleFilter) ([]models.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]models.Article, 0, len(r.articles))
	for _, article := range r.articles {
		if filter.Query != "" {
			q := strings.ToLower(filter.Query)
			text := strings.ToLower(article.Title + " " + article.Description + " " + article.Body)
			if !strings.Contains(text, q) {
				continue
			}
		}
		if filter.Tag != "" {
			tagged := false
			for _, tag := range article.Tags {
				if tag.Name == filter.Tag {
					tagged = true
					break
				}
			}
			if !tagged {
				continue
			}
		}
		if filter.Author != "" {
			if article.Author == nil || article.Author.Username != filter.Author {
				continue
			}
		}
		matches = append(matches, article)
	}

	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		var a, b string
		if matches[i].AuthorID != nil {
			a = *matches[i].AuthorID
		}
		if matches[j].AuthorID != nil {
			b = *matches[j].AuthorID
		}
		return a < b
	})
	return matches, nil
}

// Update replaces a stored article.
func (r *MockArticleRepository) Update(article *models.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.articles[article.ID]; !ok {
		return fmt.Errorf("article with ID %s: %w", article.ID, ErrNotFound)
	}
	article.UpdatedAt = time.Now()
	r.articles[article.ID] = *article
	return nil
}

// Delete removes an article by slug if owned by the author.
func (r *MockArticleRepository) Delete(slug, authorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, article := range r.articles {
		if article.Slug == slug && article.AuthorID != nil && *article.AuthorID == authorID {
			delete(r.articles, id)
			r.deletedSlugs[slug] = true
			return nil
		}
	}
	return fmt.Errorf("article with slug %s: %w", slug, ErrNotFound)
}

// SlugExists reports whether any article, live or deleted, uses the
// slug. Deleted articles keep their slug reserved, matching the unique
// index the GORM implementation runs against.
func (r *MockArticleRepository) SlugExists(slug string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.deletedSlugs[slug] {
		return true, nil
	}
	for _, article := range r.articles {
		if article.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

// AverageRating computes the mean score for an article, 0 when unrated.
func (r *MockArticleRepository) AverageRating(articleID string) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sum float64
	var n int
	for _, rating := range r.ratings {
		if rating.ArticleID == articleID {
			sum += rating.Score
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return sum / float64(n), nil
}

// UpsertRating stores or replaces a user's score for an article.
func (r *MockArticleRepository) UpsertRating(rating *models.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rating.ID == "" {
		rating.ID = uuid.New().String()
	}
	rating.RatedAt = time.Now()
	r.ratings[pairKey(rating.ArticleID, rating.RatedBy)] = *rating
	return nil
}

// Favorite inserts the relation and bumps the counter together, the
// same all-or-nothing effect the GORM transaction provides.
func (r *MockArticleRepository) Favorite(userID, articleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey(userID, articleID)
	if _, ok := r.favorites[key]; ok {
		return fmt.Errorf("favorite: %w", ErrDuplicate)
	}
	article, ok := r.articles[articleID]
	if !ok {
		return fmt.Errorf("article with ID %s: %w", articleID, ErrNotFound)
	}
	r.favorites[key] = models.Favorite{
		ID:        uuid.New().String(),
		UserID:    userID,
		ArticleID: articleID,
		CreatedAt: time.Now(),
	}
	article.FavoritesCount++
	r.articles[articleID] = article
	return nil
}

// Unfavorite removes the relation and decrements the counter, floored
// at zero.
func (r *MockArticleRepository) Unfavorite(userID, articleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey(userID, articleID)
	if _, ok := r.favorites[key]; !ok {
		return fmt.Errorf("favorite: %w", ErrNotFound)
	}
	article, ok := r.articles[articleID]
	if !ok {
		return fmt.Errorf("article with ID %s: %w", articleID, ErrNotFound)
	}
	delete(r.favorites, key)
	if article.FavoritesCount > 0 {
		article.FavoritesCount--
	}
	r.articles[articleID] = article
	return nil
}

// IsFavorited reports whether the relation exists.
func (r *MockArticleRepository) IsFavorited(userID, articleID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.favorites[pairKey(userID, articleID)]
	return ok, nil
}

// GetPreference returns the stored sentiment, nil when none is held.
func (r *MockArticleRepository) GetPreference(userID, articleID string) (*models.Preference, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pref, ok := r.prefs[pairKey(userID, articleID)]
	if !ok {
		return nil, nil
	}
	return &pref, nil
}

// SetPreference stores or replaces a sentiment.
func (r *MockArticleRepository) SetPreference(pref *models.Preference) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pref.ID == "" {
		pref.ID = uuid.New().String()
	}
	pref.UpdatedAt = time.Now()
	r.prefs[pairKey(pref.UserID, pref.ArticleID)] = *pref
	return nil
}

// ClearPreference removes any stored sentiment.
func (r *MockArticleRepository) ClearPreference(userID, articleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.prefs, pairKey(userID, articleID))
	return nil
}
