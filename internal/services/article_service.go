package services

import (
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"authorshaven/internal/models"
	"authorshaven/internal/repositories"
	"authorshaven/pkg/rabbitmq"
	"authorshaven/pkg/slugify"
)

// maxSlugAttempts bounds the collision loop; with an incrementing
// suffix it can only be hit by a pathological store.
const maxSlugAttempts = 1000

// ArticleUpdate is a partial update of an article. Nil fields keep the
// stored value; a non-nil Tags slice replaces the tag set.
type ArticleUpdate struct {
	Title       *string
	Description *string
	Body        *string
	PhotoURL    *string
	Tags        []string
}

// ArticleService handles business logic for articles and their
// engagement relations: ratings, favorites, preferences, comments and
// reports.
type ArticleService struct {
	articleRepo repositories.ArticleRepository
	commentRepo repositories.CommentRepository
	tagRepo     repositories.TagRepository
	reportRepo  repositories.ReportRepository
	userRepo    repositories.UserRepository
	mqClient    *rabbitmq.Client
}

// NewArticleService creates a new ArticleService. mqClient may be nil;
// event publishing is then skipped.
func NewArticleService(
	articleRepo repositories.ArticleRepository,
	commentRepo repositories.CommentRepository,
	tagRepo repositories.TagRepository,
	reportRepo repositories.ReportRepository,
	userRepo repositories.UserRepository,
	mqClient *rabbitmq.Client,
) *ArticleService {
	return &ArticleService{
		articleRepo: articleRepo,
		commentRepo: commentRepo,
		tagRepo:     tagRepo,
		reportRepo:  reportRepo,
		userRepo:    userRepo,
		mqClient:    mqClient,
	}
}

// round2 rounds to two decimal places, the precision ratings are
// reported with.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// uniqueSlug derives a URL-safe slug from the title and disambiguates
// collisions with an incrementing suffix. Two articles with identical
// titles always end up with distinct slugs.
func (s *ArticleService) uniqueSlug(title string) (string, error) {
	base := slugify.Make(title)
	if base == "" {
		base = "article"
	}
	slug := base
	for i := 2; i <= maxSlugAttempts; i++ {
		taken, err := s.articleRepo.SlugExists(slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("could not find a free slug for title %q", title)
}

// resolveTags normalizes tag names to their snake_case key form and
// returns the matching tag records, creating missing ones.
func (s *ArticleService) resolveTags(names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	seen := make(map[string]bool)
	for _, name := range names {
		key := slugify.MakeSnake(name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		tag, err := s.tagRepo.GetOrCreateByName(key)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

// withDerived fills in the fields that are computed per read rather
// than stored.
func (s *ArticleService) withDerived(article *models.Article) (*models.Article, error) {
	avg, err := s.articleRepo.AverageRating(article.ID)
	if err != nil {
		return nil, err
	}
	article.AverageRating = round2(avg)
	return article, nil
}

func (s *ArticleService) publish(kind string, article *models.Article, userID, detail string) {
	if s.mqClient == nil {
		return
	}
	event := rabbitmq.Event{
		Kind:      kind,
		ArticleID: article.ID,
		Slug:      article.Slug,
		UserID:    userID,
		Detail:    detail,
	}
	if err := s.mqClient.PublishArticleEvent(event); err != nil {
		log.Printf("Warning: failed to publish %s event for article %s: %v", kind, article.Slug, err)
	}
}

// CreateArticle stores a new article for the author, generating its
// slug and resolving its tags.
func (s *ArticleService) CreateArticle(authorID string, article *models.Article, tagNames []string) (*models.Article, error) {
	author, err := s.userRepo.GetByID(authorID)
	if err != nil {
		return nil, err
	}

	slug, err := s.uniqueSlug(article.Title)
	if err != nil {
		return nil, err
	}
	tags, err := s.resolveTags(tagNames)
	if err != nil {
		return nil, err
	}

	article.Slug = slug
	article.AuthorID = &author.ID
	article.Author = author
	article.Tags = tags
	article.FavoritesCount = 0

	if err := s.articleRepo.Create(article); err != nil {
		return nil, err
	}
	return s.withDerived(article)
}

// GetArticle returns one article by slug with its derived rating.
func (s *ArticleService) GetArticle(slug string) (*models.Article, error) {
	article, err := s.articleRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	return s.withDerived(article)
}

// SearchArticles lists articles matching the filter in the stable
// newest-first order. Pagination happens at the handler boundary.
func (s *ArticleService) SearchArticles(filter repositories.ArticleFilter) ([]models.Article, error) {
	articles, err := s.articleRepo.Search(filter)
	if err != nil {
		return nil, err
	}
	for i := range articles {
		if _, err := s.withDerived(&articles[i]); err != nil {
			return nil, err
		}
	}
	return articles, nil
}

// UpdateArticle merges a partial update onto the stored article. Only
// the author may update it; the slug never changes. Omitted fields keep
// their stored values.
func (s *ArticleService) UpdateArticle(userID, slug string, update ArticleUpdate) (*models.Article, error) {
	article, err := s.articleRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if article.AuthorID == nil || *article.AuthorID != userID {
		return nil, fmt.Errorf("article with slug %s: %w", slug, repositories.ErrNotFound)
	}

	if update.Title != nil {
		article.Title = *update.Title
	}
	if update.Description != nil {
		article.Description = *update.Description
	}
	if update.Body != nil {
		article.Body = *update.Body
	}
	if update.PhotoURL != nil {
		article.PhotoURL = *update.PhotoURL
	}
	if update.Tags != nil {
		tags, err := s.resolveTags(update.Tags)
		if err != nil {
			return nil, err
		}
		article.Tags = tags
	}
	article.UpdatedAt = time.Now()

	if err := s.articleRepo.Update(article); err != nil {
		return nil, err
	}
	return s.withDerived(article)
}

// DeleteArticle removes an article owned by the caller.
func (s *ArticleService) DeleteArticle(userID, slug string) error {
	return s.articleRepo.Delete(slug, userID)
}

// RateArticle records the caller's score for an article. Rating the
// same article again replaces the previous score. Returns the article
// with its recomputed average.
func (s *ArticleService) RateArticle(userID, slug string, score float64) (*models.Article, error) {
	article, err := s.articleRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	rating := models.Rating{
		ArticleID: article.ID,
		RatedBy:   userID,
		Score:     score,
	}
	if err := s.articleRepo.UpsertRating(&rating); err != nil {
		return nil, err
	}
	return s.withDerived(article)
}

// FavoriteArticle marks an article as a favorite of the caller and
// bumps its favorites_count. The author cannot favorite their own
// article, and favoriting twice is rejected.
func (s *ArticleService) FavoriteArticle(userID, slug string) (*models.Article, error) {
	article, err := s.articleRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if article.AuthorID != nil && *article.AuthorID == userID {
		return nil, ErrSelfFavorite
	}
	favorited, err := s.articleRepo.IsFavorited(userID, article.ID)
	if err != nil {
		return nil, err
	}
	if favorited {
		return nil, ErrAlreadyFavorited
	}
	if err := s.articleRepo.Favorite(userID, article.ID); err != nil {
		return nil, err
	}
	s.publish("article.favorited", article, userID, "")

	article, err = s.articleRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	return s.withDerived(article)
}

// UnfavoriteArticle removes the caller's favorite and decrements the
// counter. Unfavoriting an article that was never favorited is
// rejected.
func (s *ArticleService) UnfavoriteArticle(userID, slug string) (*models.Article, error) {
	article, err := s.articleRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	favorited, err := s.articleRepo.IsFavorited(userID, article.ID)
	if err != nil {
		return nil, err
	}
	if !favorited {
		return nil, ErrNotFavorited
	}
	if err := s.articleRepo.Unfavorite(userID, article.ID); err != nil {
		return nil, err
	}

	article, err = s.articleRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	return s.withDerived(article)
}

// TogglePreference applies the like/dislike state machine for the
// caller on an article and returns the resulting state: invoking a
// sentiment the user already holds clears it, invoking the opposite
// one replaces it. The returned value is "like", "dislike" or "none".
func (s *ArticleService) TogglePreference(userID, slug string, value models.PreferenceValue) (string, error) {
	article, err := s.articleRepo.GetBySlug(slug)
	if err != nil {
		return "", err
	}
	current, err := s.articleRepo.GetPreference(userID, article.ID)
	if err != nil {
		return "", err
	}

	if current != nil && current.Value == value {
		if err := s.articleRepo.ClearPreference(userID, article.ID); err != nil {
			return "", err
		}
		return "none", nil
	}

	pref := models.Preference{
		UserID:    userID,
		ArticleID: article.ID,
		Value:     value,
	}
	if current != nil {
		pref.ID = current.ID
	}
	if err := s.articleRepo.SetPreference(&pref); err != nil {
		return "", err
	}
	return string(value), nil
}

// ReportArticle files a complaint about an article. The message must
// not be blank. Reports are never deduplicated.
func (s *ArticleService) ReportArticle(userID, slug, message string) (*models.ArticleReport, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrBlankReportMessage
	}
	article, err := s.articleRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	report := models.ArticleReport{
		UserID:    userID,
		ArticleID: article.ID,
		Message:   message,
	}
	if err := s.reportRepo.Create(&report); err != nil {
		return nil, err
	}
	s.publish("article.reported", article, userID, message)
	return &report, nil
}

// ListReports returns reports, globally or scoped to one article by
// slug. Only superusers may read reports; everyone else gets a
// permission error, never an empty list.
func (s *ArticleService) ListReports(superuser bool, slug string) ([]models.ArticleReport, error) {
	if !superuser {
		return nil, fmt.Errorf("reports are restricted to superusers: %w", repositories.ErrForbidden)
	}
	if slug == "" {
		return s.reportRepo.GetAll()
	}
	article, err := s.articleRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	return s.reportRepo.ListByArticle(article.ID)
}

// AddComment attaches a comment to an article.
func (s *ArticleService) AddComment(userID, slug, body string) (*models.Comment, error) {
	article, err := s.articleRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	author, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	comment := models.Comment{
		ArticleID: article.ID,
		AuthorID:  author.ID,
		Author:    author,
		Body:      body,
		CreatedAt: time.Now(),
	}
	if err := s.commentRepo.CreateComment(&comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListComments returns an article's comments newest first.
func (s *ArticleService) ListComments(slug string) ([]models.Comment, error) {
	article, err := s.articleRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	return s.commentRepo.ListByArticle(article.ID)
}

// AddReply attaches a reply to a comment.
func (s *ArticleService) AddReply(userID, commentID, content string) (*models.Reply, error) {
	comment, err := s.commentRepo.GetCommentByID(commentID)
	if err != nil {
		return nil, err
	}
	author, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	reply := models.Reply{
		CommentID: comment.ID,
		AuthorID:  author.ID,
		Author:    author,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.commentRepo.CreateReply(&reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// ListReplies returns a comment's replies newest first.
func (s *ArticleService) ListReplies(commentID string) ([]models.Reply, error) {
	if _, err := s.commentRepo.GetCommentByID(commentID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListReplies(commentID)
}
