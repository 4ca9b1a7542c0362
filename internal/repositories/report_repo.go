package repositories

import "authorshaven/internal/models"

// ReportRepository defines the interface for article report data
// access. Reports are insert-only; there is no deduplication.
type ReportRepository interface {
	Create(report *models.ArticleReport) error
	GetAll() ([]models.ArticleReport, error)
	ListByArticle(articleID string) ([]models.ArticleReport, error)
}
