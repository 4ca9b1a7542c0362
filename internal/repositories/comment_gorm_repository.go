package repositories

import (
	"errors"
	"fmt"

	"authorshaven/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCommentRepository is a GORM implementation of CommentRepository.
type GORMCommentRepository struct {
	db *gorm.DB
}

// NewGORMCommentRepository creates a new instance of GORMCommentRepository.
func NewGORMCommentRepository(db *gorm.DB) *GORMCommentRepository {
	return &GORMCommentRepository{
		db: db,
	}
}

// CreateComment adds a comment to an article.
func (r *GORMCommentRepository) CreateComment(comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	if err := r.db.Create(comment).Error; err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// GetCommentByID retrieves one comment with its author loaded.
func (r *GORMCommentRepository) GetCommentByID(id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.Preload("Author").First(&comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("comment with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get comment by ID %s: %w", id, err)
	}
	return &comment, nil
}

// ListByArticle returns an article's comments newest first, with
// authors and replies loaded.
func (r *GORMCommentRepository) ListByArticle(articleID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Preload("Author").Preload("Replies").Preload("Replies.Author").
		Where("article_id = ?", articleID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments for article %s: %w", articleID, err)
	}
	return comments, nil
}

// CreateReply adds a reply to a comment.
func (r *GORMCommentRepository) CreateReply(reply *models.Reply) error {
	if reply.ID == "" {
		reply.ID = uuid.New().String()
	}
	if err := r.db.Create(reply).Error; err != nil {
		return fmt.Errorf("failed to create reply: %w", err)
	}
	return nil
}

// ListReplies returns a comment's replies newest first.
func (r *GORMCommentRepository) ListReplies(commentID string) ([]models.Reply, error) {
	var replies []models.Reply
	err := r.db.Preload("Author").
		Where("comment_id = ?", commentID).
		Order("created_at DESC").
		Find(&replies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list replies for comment %s: %w", commentID, err)
	}
	return replies, nil
}
