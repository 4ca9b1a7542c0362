package repositories

import "authorshaven/internal/models"

// TagRepository defines the interface for tag data access. Deleting a
// tag removes only the article associations, never the articles.
type TagRepository interface {
	Create(tag *models.Tag) error
	GetAll() ([]models.Tag, error)
	GetByID(id string) (*models.Tag, error)
	GetOrCreateByName(name string) (*models.Tag, error)
	Update(tag *models.Tag) error
	Delete(id string) error
}
