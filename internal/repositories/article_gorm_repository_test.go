package repositories_test

import (
	"fmt"
	"strings"
	"testing"

	"authorshaven/internal/models"
	"authorshaven/internal/repositories"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupArticleRepo(t *testing.T) *repositories.GORMArticleRepository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Tag{}, &models.Article{}, &models.Rating{}); err != nil {
		t.Fatalf("failed to auto-migrate database: %v", err)
	}
	return repositories.NewGORMArticleRepository(db)
}

func TestGORMArticleRepository_SlugExistsSeesDeletedArticles(t *testing.T) {
	repo := setupArticleRepo(t)

	authorID := "author-1"
	article := &models.Article{
		Slug:        "reusable-title",
		AuthorID:    &authorID,
		Title:       "Reusable Title",
		Description: "a description",
		Body:        "the full body",
	}
	assert.NoError(t, repo.Create(article))

	// Deletes are soft; the unique index still holds the slug, so the
	// check must keep reporting it as taken.
	assert.NoError(t, repo.Delete("reusable-title", authorID))
	taken, err := repo.SlugExists("reusable-title")
	assert.NoError(t, err)
	assert.True(t, taken)

	// A later article with the same title lands on a fresh slug and can
	// be stored without tripping the index.
	second := &models.Article{
		Slug:        "reusable-title-2",
		AuthorID:    &authorID,
		Title:       "Reusable Title",
		Description: "a description",
		Body:        "the full body",
	}
	assert.NoError(t, repo.Create(second))

	taken, err = repo.SlugExists("reusable-title-2")
	assert.NoError(t, err)
	assert.True(t, taken)
}
