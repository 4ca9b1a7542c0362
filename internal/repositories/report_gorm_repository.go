package repositories

import (
	"fmt"

	"authorshaven/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMReportRepository is a GORM implementation of ReportRepository.
type GORMReportRepository struct {
	db *gorm.DB
}

// NewGORMReportRepository creates a new instance of GORMReportRepository.
func NewGORMReportRepository(db *gorm.DB) *GORMReportRepository {
	return &GORMReportRepository{
		db: db,
	}
}

// Create inserts a new report. Duplicate reports by the same user are
// allowed.
func (r *GORMReportRepository) Create(report *models.ArticleReport) error {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	if err := r.db.Create(report).Error; err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// GetAll retrieves every report, newest first.
func (r *GORMReportRepository) GetAll() ([]models.ArticleReport, error) {
	var reports []models.ArticleReport
	if err := r.db.Order("created_at DESC").Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to get all reports: %w", err)
	}
	return reports, nil
}

// ListByArticle retrieves the reports for one article, newest first.
func (r *GORMReportRepository) ListByArticle(articleID string) ([]models.ArticleReport, error) {
	var reports []models.ArticleReport
	err := r.db.Where("article_id = ?", articleID).
		Order("created_at DESC").
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reports for article %s: %w", articleID, err)
	}
	return reports, nil
}
