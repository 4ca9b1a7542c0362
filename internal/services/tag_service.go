package services

import (
	"authorshaven/internal/models"
	"authorshaven/internal/repositories"
	"authorshaven/pkg/slugify"
)

// TagService handles business logic for tags. Access control (tag
// writes are superuser-only) is enforced by the route middleware.
type TagService struct {
	repo repositories.TagRepository
}

// NewTagService creates a new TagService.
func NewTagService(repo repositories.TagRepository) *TagService {
	return &TagService{
		repo: repo,
	}
}

// GetAllTags retrieves all tags.
func (s *TagService) GetAllTags() ([]models.Tag, error) {
	return s.repo.GetAll()
}

// GetTagByID retrieves a single tag by its ID.
func (s *TagService) GetTagByID(id string) (*models.Tag, error) {
	return s.repo.GetByID(id)
}

// CreateTag creates a tag, normalizing the name to its snake_case key
// form.
func (s *TagService) CreateTag(tag *models.Tag) error {
	tag.Name = slugify.MakeSnake(tag.Name)
	return s.repo.Create(tag)
}

// UpdateTag renames a tag, normalizing the new name.
func (s *TagService) UpdateTag(tag *models.Tag) error {
	tag.Name = slugify.MakeSnake(tag.Name)
	return s.repo.Update(tag)
}

// DeleteTag removes a tag. Articles keep existing; only the
// associations go away.
func (s *TagService) DeleteTag(id string) error {
	return s.repo.Delete(id)
}
