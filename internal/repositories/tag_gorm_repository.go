package repositories

import (
	"errors"
	"fmt"

	"authorshaven/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMTagRepository is a GORM implementation of TagRepository.
type GORMTagRepository struct {
	db *gorm.DB
}

// NewGORMTagRepository creates a new instance of GORMTagRepository.
func NewGORMTagRepository(db *gorm.DB) *GORMTagRepository {
	return &GORMTagRepository{
		db: db,
	}
}

// Create creates a new tag.
func (r *GORMTagRepository) Create(tag *models.Tag) error {
	if tag.ID == "" {
		tag.ID = uuid.New().String()
	}
	if err := r.db.Create(tag).Error; err != nil {
		return fmt.Errorf("failed to create tag: %w", err)
	}
	return nil
}

// GetAll retrieves all tags.
func (r *GORMTagRepository) GetAll() ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.Order("name ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to get all tags: %w", err)
	}
	return tags, nil
}

// GetByID retrieves a tag by its ID.
func (r *GORMTagRepository) GetByID(id string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tag with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get tag by ID %s: %w", id, err)
	}
	return &tag, nil
}

// GetOrCreateByName finds a tag by its normalized name, creating it if
// it does not exist yet.
func (r *GORMTagRepository) GetOrCreateByName(name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.First(&tag, "name = ?", name).Error
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up tag %s: %w", name, err)
	}
	tag = models.Tag{ID: uuid.New().String(), Name: name}
	if err := r.db.Create(&tag).Error; err != nil {
		return nil, fmt.Errorf("failed to create tag %s: %w", name, err)
	}
	return &tag, nil
}

// Update renames an existing tag.
func (r *GORMTagRepository) Update(tag *models.Tag) error {
	res := r.db.Save(tag)
	if res.Error != nil {
		return fmt.Errorf("failed to update tag: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("tag with ID %s: %w", tag.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a tag and its article associations. The articles
// themselves are untouched.
func (r *GORMTagRepository) Delete(id string) error {
	if _, err := r.GetByID(id); err != nil {
		return err
	}
	if err := r.db.Exec("DELETE FROM article_tags WHERE tag_id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to clear tag associations: %w", err)
	}
	if err := r.db.Delete(&models.Tag{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	return nil
}
