package handlers

import (
	"errors"
	"log"

	"authorshaven/internal/middleware"
	"authorshaven/internal/models"
	"authorshaven/internal/repositories"
	"authorshaven/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// TagHandler handles HTTP requests for tags. All tag routes are
// superuser-only.
type TagHandler struct {
	tagService  *services.TagService
	authService *services.AuthService
	validate    *validator.Validate
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(tagService *services.TagService, authService *services.AuthService) *TagHandler {
	return &TagHandler{
		tagService:  tagService,
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the tag routes with the Fiber app.
func (h *TagHandler) RegisterRoutes(router fiber.Router) {
	tagRoutes := router.Group("/tags",
		middleware.AuthRequired(h.authService),
		middleware.SuperuserRequired())
	tagRoutes.Get("/", h.HandleGetTags)
	tagRoutes.Post("/", h.HandleCreateTag)
	tagRoutes.Put("/:id", h.HandleUpdateTag)
	tagRoutes.Delete("/:id", h.HandleDeleteTag)
}

// HandleGetTags retrieves all tags.
func (h *TagHandler) HandleGetTags(c *fiber.Ctx) error {
	tags, err := h.tagService.GetAllTags()
	if err != nil {
		log.Printf("Error getting all tags: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve tags",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"tags": tags})
}

// TagRequest represents the request body for creating or renaming a
// tag. The name is normalized to snake_case on write.
type TagRequest struct {
	TagName string `json:"tag_name" validate:"required,min=1,max=64"`
}

// HandleCreateTag creates a new tag.
func (h *TagHandler) HandleCreateTag(c *fiber.Ctx) error {
	var req TagRequest
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

	tag := models.Tag{Name: req.TagName}
	if err := h.tagService.CreateTag(&tag); err != nil {
		log.Printf("Error creating tag: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create tag",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"tag": tag})
}

// HandleUpdateTag renames an existing tag.
func (h *TagHandler) HandleUpdateTag(c *fiber.Ctx) error {
	var req TagRequest
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

	tag, err := h.tagService.GetTagByID(c.Params("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"detail": "A tag with this ID was not found.",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve tag",
			"error":   err.Error(),
		})
	}

	tag.Name = req.TagName
	if err := h.tagService.UpdateTag(tag); err != nil {
		log.Printf("Error updating tag %s: %v", tag.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update tag",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"tag": tag})
}

// HandleDeleteTag removes a tag; articles lose only the association.
func (h *TagHandler) HandleDeleteTag(c *fiber.Ctx) error {
	if err := h.tagService.DeleteTag(c.Params("id")); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"detail": "A tag with this ID was not found.",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete tag",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusNoContent).Send(nil)
}
