package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"authorshaven/internal/middleware"
	"authorshaven/internal/models"
	"authorshaven/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for registration, login, social
// login and the caller's own profile.
type AuthHandler struct {
	authService   *services.AuthService
	socialService *services.SocialService
	validate      *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, socialService *services.SocialService) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		socialService: socialService,
		validate:      validator.New(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/social/:provider", h.HandleSocialLogin)

	userRoutes := router.Group("/user", middleware.AuthRequired(h.authService))
	userRoutes.Get("/", h.HandleGetProfile)
	userRoutes.Put("/", h.HandleUpdateProfile)
}

// validationErrorMap flattens validator errors into a field -> message
// map for 400 responses.
func validationErrorMap(err error) map[string]string {
	validationErrors := err.(validator.ValidationErrors)
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return errorMessages
}

// RegisterRequest represents the request body for registration. The
// user model hides its password field from JSON in both directions, so
// the credentials arrive through this struct and never the model.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Bio      string `json:"bio" validate:"omitempty,max=500"`
	Image    string `json:"image" validate:"omitempty,url"`
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing register request body: %v", err)
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

	// Clients cannot self-assign privileged flags; Superuser and
	// Verified stay at their zero values.
	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Bio:      req.Bio,
		Image:    req.Image,
	}

	if err := h.authService.RegisterUser(&user); err != nil {
		log.Printf("Error registering user: %v", err)
		if strings.Contains(err.Error(), "already taken") || strings.Contains(err.Error(), "already registered") {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Registration failed",
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not register user",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login request body: %v", err)
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

	token, err := h.authService.LoginUser(req.Email, req.Password)
	if err != nil {
		log.Printf("Error during login for %s: %v", req.Email, err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication failed",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
	})
}

// SocialLoginRequest represents the request body for social login.
type SocialLoginRequest struct {
	AuthToken string `json:"auth_token" validate:"required"`
}

// HandleSocialLogin verifies a provider token and issues a local JWT,
// creating the user on first login.
func (h *AuthHandler) HandleSocialLogin(c *fiber.Ctx) error {
	provider := c.Params("provider")

	var req SocialLoginRequest
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

	user, token, err := h.socialService.Login(provider, req.AuthToken)
	if err != nil {
		log.Printf("Social login via %s failed: %v", provider, err)
		if errors.Is(err, services.ErrInvalidSocialToken) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"detail": "The token is either invalid or expired. Please login again.",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Social login failed",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    user,
		"token":   token,
	})
}

// HandleGetProfile returns the authenticated user's profile.
func (h *AuthHandler) HandleGetProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	user, err := h.authService.GetUser(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"detail": "User not found.",
		})
	}
	return c.JSON(fiber.Map{"user": user})
}

// ProfileUpdateRequest represents the request body for a profile update.
type ProfileUpdateRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=100"`
	Bio      *string `json:"bio" validate:"omitempty,max=500"`
	Image    *string `json:"image" validate:"omitempty,url"`
	Password *string `json:"password" validate:"omitempty,min=8,max=128"`
}

// HandleUpdateProfile merges a partial profile update for the
// authenticated user.
func (h *AuthHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req ProfileUpdateRequest
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

	user, err := h.authService.UpdateProfile(userID, services.ProfileUpdate{
		Username: req.Username,
		Bio:      req.Bio,
		Image:    req.Image,
		Password: req.Password,
	})
	if err != nil {
		log.Printf("Error updating profile for user %s: %v", userID, err)
		if strings.Contains(err.Error(), "already taken") {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Profile update failed",
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update profile",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"user": user})
}
