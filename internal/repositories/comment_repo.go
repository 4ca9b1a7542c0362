package repositories

import "authorshaven/internal/models"

// CommentRepository defines the interface for comment and reply data
// access.
type CommentRepository interface {
	CreateComment(comment *models.Comment) error
	GetCommentByID(id string) (*models.Comment, error)
	ListByArticle(articleID string) ([]models.Comment, error)
	CreateReply(reply *models.Reply) error
	ListReplies(commentID string) ([]models.Reply, error)
}
