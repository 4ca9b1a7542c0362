package handlers

import (
	"errors"
	"log"
	"strconv"

	"authorshaven/internal/middleware"
	"authorshaven/internal/models"
	"authorshaven/internal/repositories"
	"authorshaven/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ArticleHandler handles HTTP requests for articles and their
// engagement relations.
type ArticleHandler struct {
	articleService *services.ArticleService
	authService    *services.AuthService
	validate       *validator.Validate
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(articleService *services.ArticleService, authService *services.AuthService) *ArticleHandler {
	return &ArticleHandler{
		articleService: articleService,
		authService:    authService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers the article routes with the Fiber app.
// The /reports routes are registered before /:slug so the static
// segment wins the match.
func (h *ArticleHandler) RegisterRoutes(router fiber.Router) {
	auth := middleware.AuthRequired(h.authService)

	articleRoutes := router.Group("/articles")
	articleRoutes.Get("/", h.HandleListArticles)
	articleRoutes.Get("/reports", auth, h.HandleListReports)
	articleRoutes.Get("/reports/:slug", auth, h.HandleListReports)
	articleRoutes.Post("/", auth, h.HandleCreateArticle)
	articleRoutes.Get("/:slug", h.HandleGetArticle)
	articleRoutes.Put("/:slug", auth, h.HandleUpdateArticle)
	articleRoutes.Delete("/:slug", auth, h.HandleDeleteArticle)
	articleRoutes.Post("/:slug/favorite", auth, h.HandleFavorite)
	articleRoutes.Delete("/:slug/favorite", auth, h.HandleUnfavorite)
	articleRoutes.Post("/:slug/like", auth, h.HandlePreference(models.PreferenceLike))
	articleRoutes.Post("/:slug/dislike", auth, h.HandlePreference(models.PreferenceDislike))
	articleRoutes.Post("/:slug/rate", auth, h.HandleRateArticle)
	articleRoutes.Post("/:slug/report", auth, h.HandleReportArticle)
	articleRoutes.Post("/:slug/comments", auth, h.HandleAddComment)
	articleRoutes.Get("/:slug/comments", h.HandleListComments)

	commentRoutes := router.Group("/comments")
	commentRoutes.Post("/:id/replies", auth, h.HandleAddReply)
	commentRoutes.Get("/:id/replies", h.HandleListReplies)
}

// domainError maps sentinel domain errors onto the HTTP taxonomy:
// not-found 404, permission 403, rejected preconditions 400.
func domainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"detail": "An article with this slug was not found.",
		})
	case errors.Is(err, repositories.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"detail": "permission denied, you do not have access rights.",
		})
	case errors.Is(err, services.ErrSelfFavorite),
		errors.Is(err, services.ErrAlreadyFavorited),
		errors.Is(err, services.ErrNotFavorited),
		errors.Is(err, services.ErrBlankReportMessage):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": err.Error(),
		})
	}
	log.Printf("Unhandled article error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Something went wrong",
		"error":   err.Error(),
	})
}

// positiveQueryInt parses a pagination parameter; negative values are
// folded to their absolute value.
func positiveQueryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		v = -v
	}
	return v, nil
}

// HandleListArticles lists articles filtered by free text, tag and
// author, paginated with limit/offset.
func (h *ArticleHandler) HandleListArticles(c *fiber.Ctx) error {
	limit, err := positiveQueryInt(c, "limit", 20)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "limit must be an integer",
		})
	}
	offset, err := positiveQueryInt(c, "offset", 0)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "offset must be an integer",
		})
	}

	filter := repositories.ArticleFilter{
		Query:  c.Query("q"),
		Tag:    c.Query("tag"),
		Author: c.Query("author"),
	}

	articles, err := h.articleService.SearchArticles(filter)
	if err != nil {
		return domainError(c, err)
	}

	total := len(articles)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	page := articles[offset:end]

	return c.JSON(fiber.Map{
		"articles":      page,
		"articlesCount": total,
		"limit":         limit,
		"offset":        offset,
	})
}

// HandleGetArticle returns a single article by slug.
func (h *ArticleHandler) HandleGetArticle(c *fiber.Ctx) error {
	article, err := h.articleService.GetArticle(c.Params("slug"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(fiber.Map{"article": article})
}

// CreateArticleRequest represents the request body for creating an
// article.
type CreateArticleRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=255"`
	Description string   `json:"description" validate:"required,min=1"`
	Body        string   `json:"body" validate:"required,min=1"`
	PhotoURL    string   `json:"photo_url" validate:"omitempty,url"`
	Tags        []string `json:"tags"`
}

// HandleCreateArticle creates an article authored by the caller.
func (h *ArticleHandler) HandleCreateArticle(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req CreateArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationErrorMap(err),
		})
	}

	article := models.Article{
		Title:       req.Title,
		Description: req.Description,
		Body:        req.Body,
		PhotoURL:    req.PhotoURL,
	}
	created, err := h.articleService.CreateArticle(userID, &article, req.Tags)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"article": created})
}

// UpdateArticleRequest represents a partial article update. Omitted
// fields keep their stored values.
type UpdateArticleRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string  `json:"description" validate:"omitempty,min=1"`
	Body        *string  `json:"body" validate:"omitempty,min=1"`
	PhotoURL    *string  `json:"photo_url" validate:"omitempty,url"`
	Tags        []string `json:"tags"`
}

// HandleUpdateArticle updates an article owned by the caller. The slug
// stays the same even when the title changes.
func (h *ArticleHandler) HandleUpdateArticle(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req UpdateArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationErrorMap(err),
		})
	}

	article, err := h.articleService.UpdateArticle(userID, c.Params("slug"), services.ArticleUpdate{
		Title:       req.Title,
		Description: req.Description,
		Body:        req.Body,
		PhotoURL:    req.PhotoURL,
		Tags:        req.Tags,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"article": article})
}

// HandleDeleteArticle deletes an article owned by the caller.
func (h *ArticleHandler) HandleDeleteArticle(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if err := h.articleService.DeleteArticle(userID, c.Params("slug")); err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusNoContent).Send(nil)
}

// HandleFavorite marks an article as a favorite of the caller.
func (h *ArticleHandler) HandleFavorite(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	article, err := h.articleService.FavoriteArticle(userID, c.Params("slug"))
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"article": article})
}

// HandleUnfavorite removes an article from the caller's favorites.
func (h *ArticleHandler) HandleUnfavorite(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	article, err := h.articleService.UnfavoriteArticle(userID, c.Params("slug"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(fiber.Map{"article": article})
}

// HandlePreference returns a handler that applies the like or dislike
// toggle for the caller.
func (h *ArticleHandler) HandlePreference(value models.PreferenceValue) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		state, err := h.articleService.TogglePreference(userID, c.Params("slug"), value)
		if err != nil {
			return domainError(c, err)
		}
		return c.JSON(fiber.Map{"preference": state})
	}
}

// RateArticleRequest represents the request body for rating an article.
type RateArticleRequest struct {
	Score float64 `json:"score" validate:"required,gte=1,lte=5"`
}

// HandleRateArticle records the caller's score for an article.
func (h *ArticleHandler) HandleRateArticle(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req RateArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationErrorMap(err),
		})
	}

	article, err := h.articleService.RateArticle(userID, c.Params("slug"), req.Score)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(fiber.Map{"article": article})
}

// ReportArticleRequest represents the request body for reporting an
// article.
type ReportArticleRequest struct {
	ReportMessage string `json:"report_message"`
}

// HandleReportArticle files a complaint about an article.
func (h *ArticleHandler) HandleReportArticle(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req ReportArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	report, err := h.articleService.ReportArticle(userID, c.Params("slug"), req.ReportMessage)
	if err != nil {
		if errors.Is(err, services.ErrBlankReportMessage) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"detail": "A report message is required",
			})
		}
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"report": report})
}

// HandleListReports returns reports, globally or for one article.
// Superusers only; everyone else gets a 403, never an empty list.
func (h *ArticleHandler) HandleListReports(c *fiber.Ctx) error {
	superuser, _ := c.Locals("superuser").(bool)
	reports, err := h.articleService.ListReports(superuser, c.Params("slug"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(fiber.Map{"reports": reports})
}

// CommentRequest represents the request body for commenting on an
// article.
type CommentRequest struct {
	Body string `json:"body" validate:"required,min=1"`
}

// HandleAddComment attaches a comment to an article.
func (h *ArticleHandler) HandleAddComment(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationErrorMap(err),
		})
	}

	comment, err := h.articleService.AddComment(userID, c.Params("slug"), req.Body)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"comment": comment})
}

// HandleListComments returns an article's comments.
func (h *ArticleHandler) HandleListComments(c *fiber.Ctx) error {
	comments, err := h.articleService.ListComments(c.Params("slug"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments})
}

// ReplyRequest represents the request body for replying to a comment.
type ReplyRequest struct {
	Content string `json:"content" validate:"required,min=1"`
}

// HandleAddReply attaches a reply to a comment.
func (h *ArticleHandler) HandleAddReply(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req ReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationErrorMap(err),
		})
	}

	reply, err := h.articleService.AddReply(userID, c.Params("id"), req.Content)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"reply": reply})
}

// HandleListReplies returns a comment's replies.
func (h *ArticleHandler) HandleListReplies(c *fiber.Ctx) error {
	replies, err := h.articleService.ListReplies(c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(fiber.Map{"replies": replies})
}
