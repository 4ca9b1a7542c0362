package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"authorshaven/internal/handlers"
	"authorshaven/internal/models"
	"authorshaven/internal/repositories"
	"authorshaven/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp builds a Fiber app over an in-memory SQLite database with
// all repositories, services and handlers wired. Each test gets its own
// database.
func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Article{},
		&models.Rating{},
		&models.Comment{},
		&models.Reply{},
		&models.Favorite{},
		&models.Preference{},
		&models.ArticleReport{},
	)
	if err != nil {
		t.Fatalf("failed to auto-migrate database: %v", err)
	}

	userRepo := repositories.NewGORMUserRepository(db)
	articleRepo := repositories.NewGORMArticleRepository(db)
	commentRepo := repositories.NewGORMCommentRepository(db)
	tagRepo := repositories.NewGORMTagRepository(db)
	reportRepo := repositories.NewGORMReportRepository(db)

	authService := services.NewAuthService(userRepo, jwtSecret)
	articleService := services.NewArticleService(articleRepo, commentRepo, tagRepo, reportRepo, userRepo, nil) // nil broker
	tagService := services.NewTagService(tagRepo)
	socialService := services.NewSocialService(userRepo, authService, &okVerifier{})

	authHandler := handlers.NewAuthHandler(authService, socialService)
	articleHandler := handlers.NewArticleHandler(articleService, authService)
	tagHandler := handlers.NewTagHandler(tagService, authService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)
	articleHandler.RegisterRoutes(apiV1)
	tagHandler.RegisterRoutes(apiV1)

	return app, db
}

// okVerifier accepts any social token, standing in for the provider.
type okVerifier struct{}

func (v *okVerifier) VerifyToken(provider, token string) (*services.SocialProfile, error) {
	if token == "fake_fb_twitter_or_google_token" {
		return nil, services.ErrInvalidSocialToken
	}
	return &services.SocialProfile{Email: "social@example.com", Name: "Social Person"}, nil
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1) // -1 for no timeout
	assert.NoError(t, err)

	var decoded map[string]interface{}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

// registerAndLogin registers a fresh user and returns their token.
func registerAndLogin(t *testing.T, app *fiber.App, username, email string) string {
	t.Helper()

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "password123",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, loginResp := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := loginResp["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

// createArticle posts an article and returns its slug.
func createArticle(t *testing.T, app *fiber.App, token, title string, tags []string) string {
	t.Helper()

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/articles/", token, map[string]interface{}{
		"title":       title,
		"description": "a description",
		"body":        "the full body",
		"tags":        tags,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	article, _ := body["article"].(map[string]interface{})
	slug, _ := article["slug"].(string)
	assert.NotEmpty(t, slug)
	return slug
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app, _ := setupApp(t)

	resp, registerResp := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "testauthor",
		"email":    "author@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "User registered successfully", registerResp["message"])
	registered, _ := registerResp["user"].(map[string]interface{})
	assert.Equal(t, "testauthor", registered["username"])
	assert.NotContains(t, registered, "password")

	// Duplicate registration is rejected
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "testauthor",
		"email":    "author@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Short password fails validation with a field-level error map
	resp, badResp := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "otheruser",
		"email":    "other@example.com",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, badResp, "errors")

	// Login issues a token
	resp, loginResp := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "author@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, loginResp["token"])

	// Wrong password is a 401
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "author@example.com",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSocialLogin(t *testing.T) {
	app, _ := setupApp(t)

	// Invalid provider token is rejected with a 400
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/social/facebook", "", map[string]string{
		"auth_token": "fake_fb_twitter_or_google_token",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["detail"], "invalid or expired")

	// A verified token creates the local user and issues a session
	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/auth/social/google", "", map[string]string{
		"auth_token": "good-token",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["token"])
	user, _ := body["user"].(map[string]interface{})
	assert.Equal(t, "social@example.com", user["email"])
	assert.Equal(t, true, user["verified"])
}

func TestArticleLifecycle(t *testing.T) {
	app, _ := setupApp(t)
	token := registerAndLogin(t, app, "jane", "jane@example.com")

	// Unauthenticated create is rejected
	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/articles/", "", map[string]string{
		"title": "nope", "description": "d", "body": "b",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Missing body fields fail validation
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/articles/", token, map[string]string{
		"title": "No Body Here",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	slug := createArticle(t, app, token, "A Day in the Life", nil)
	assert.Equal(t, "a-day-in-the-life", slug)

	// Identical titles produce distinct slugs
	slug2 := createArticle(t, app, token, "A Day in the Life", nil)
	assert.Equal(t, "a-day-in-the-life-2", slug2)

	// The article representation nests the author as a full user object
	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/articles/"+slug, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	article, _ := body["article"].(map[string]interface{})
	author, _ := article["author"].(map[string]interface{})
	assert.Equal(t, "jane", author["username"])
	assert.Equal(t, float64(0), article["favorites_count"])
	assert.Equal(t, float64(0), article["average_rating"])

	// Partial update keeps omitted fields and never changes the slug
	resp, body = doJSON(t, app, http.MethodPut, "/api/v1/articles/"+slug, token, map[string]string{
		"title": "A Night in the Life",
	})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	article, _ = body["article"].(map[string]interface{})
	assert.Equal(t, "A Night in the Life", article["title"])
	assert.Equal(t, "a description", article["description"])
	assert.Equal(t, slug, article["slug"])

	// Another user cannot update or delete it
	otherToken := registerAndLogin(t, app, "joe", "joe@example.com")
	resp, _ = doJSON(t, app, http.MethodPut, "/api/v1/articles/"+slug, otherToken, map[string]string{
		"title": "Hijacked",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/articles/"+slug, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// The author can delete it
	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/articles/"+slug, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/articles/"+slug, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Re-posting the original title skips both the deleted slug and the
	// still-live -2 one instead of colliding with the unique index
	slug3 := createArticle(t, app, token, "A Day in the Life", nil)
	assert.Equal(t, "a-day-in-the-life-3", slug3)
}

func TestFavoriteFlow(t *testing.T) {
	app, _ := setupApp(t)
	authorToken := registerAndLogin(t, app, "jane", "jane@example.com")
	readerToken := registerAndLogin(t, app, "joe", "joe@example.com")

	slug := createArticle(t, app, authorToken, "Favorites Please", nil)

	// Favoriting a missing article is a 404
	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/articles/no-such-slug/favorite", readerToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Self-favorite is rejected with no state change
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/articles/"+slug+"/favorite", authorToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/articles/"+slug+"/favorite", readerToken, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	article, _ := body["article"].(map[string]interface{})
	assert.Equal(t, float64(1), article["favorites_count"])

	// Duplicate favorite is rejected and the counter holds
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/articles/"+slug+"/favorite", readerToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/articles/"+slug, "", nil)
	article, _ = body["article"].(map[string]interface{})
	assert.Equal(t, float64(1), article["favorites_count"])

	// Unfavoriting restores the original count
	resp, body = doJSON(t, app, http.MethodDelete, "/api/v1/articles/"+slug+"/favorite", readerToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	article, _ = body["article"].(map[string]interface{})
	assert.Equal(t, float64(0), article["favorites_count"])

	// Unfavoriting an article not in the favorites list is rejected
	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/articles/"+slug+"/favorite", readerToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPreferenceToggle(t *testing.T) {
	app, _ := setupApp(t)
	authorToken := registerAndLogin(t, app, "jane", "jane@example.com")
	readerToken := registerAndLogin(t, app, "joe", "joe@example.com")

	slug := createArticle(t, app, authorToken, "Divisive Take", nil)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/articles/"+slug+"/like", readerToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "like", body["preference"])

	// Liking again toggles the like off
	_, body = doJSON(t, app, http.MethodPost, "/api/v1/articles/"+slug+"/like", readerToken, nil)
	assert.Equal(t, "none", body["preference"])

	// Disliking, then liking, clears the dislike and sets the like
	_, body = doJSON(t, app, http.MethodPost, "/api/v1/articles/"+slug+"/dislike", readerToken, nil)
	assert.Equal(t, "dislike", body["preference"])
	_, body = doJSON(t, app, http.MethodPost, "/api/v1/articles/"+slug+"/like", readerToken, nil)
	assert.Equal(t, "like", body["preference"])
}

func TestRatings(t *testing.T) {
	app, _ := setupApp(t)
	authorToken := registerAndLogin(t, app, "jane", "jane@example.com")
	readerToken := registerAndLogin(t, app, "joe", "joe@example.com")

	slug := createArticle(t, app, authorToken, "Rate Me", nil)

	// Out-of-range score fails validation
	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/articles/"+slug+"/rate", readerToken, map[string]float64{
		"score": 7,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/articles/"+slug+"/rate", readerToken, map[string]float64{
		"score": 4,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	article, _ := body["article"].(map[string]interface{})
	assert.Equal(t, float64(4), article["average_rating"])

	// Re-rating replaces the previous score rather than adding a row
	_, body = doJSON(t, app, http.MethodPost, "/api/v1/articles/"+slug+"/rate", readerToken, map[string]float64{
		"score": 5,
	})
	article, _ = body["article"].(map[string]interface{})
	assert.Equal(t, float64(5), article["average_rating"])
}

func TestReports(t *testing.T) {
	app, db := setupApp(t)
	authorToken := registerAndLogin(t, app, "jane", "jane@example.com")
	readerToken := registerAndLogin(t, app, "joe", "joe@example.com")

	slug := createArticle(t, app, authorToken, "Reportable", nil)

	// A whitespace-only message is rejected
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/articles/"+slug+"/report", readerToken, map[string]string{
		"report_message": "   ",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "A report message is required", body["detail"])

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/articles/"+slug+"/report", readerToken, map[string]string{
		"report_message": "this is plagiarized",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Non-superusers get a 403, not an empty list
	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/articles/reports", readerToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Promote the reader and log in again so the claims carry the flag
	err := db.Model(&models.User{}).Where("username = ?", "joe").Update("superuser", true).Error
	assert.NoError(t, err)
	resp, loginResp := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "joe@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	superToken, _ := loginResp["token"].(string)

	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/articles/reports", superToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	reports, _ := body["reports"].([]interface{})
	assert.Len(t, reports, 1)

	// Scoped by slug
	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/articles/reports/"+slug, superToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	reports, _ = body["reports"].([]interface{})
	assert.Len(t, reports, 1)
}

func TestTagsSuperuserOnly(t *testing.T) {
	app, db := setupApp(t)
	token := registerAndLogin(t, app, "jane", "jane@example.com")

	// Regular users cannot touch tags
	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/tags/", token, map[string]string{
		"tag_name": "Go Lang",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	err := db.Model(&models.User{}).Where("username = ?", "jane").Update("superuser", true).Error
	assert.NoError(t, err)
	resp, loginResp := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "jane@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	superToken, _ := loginResp["token"].(string)

	// Names are normalized to snake_case on write
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/tags/", superToken, map[string]string{
		"tag_name": "Go Lang",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	tag, _ := body["tag"].(map[string]interface{})
	assert.Equal(t, "go_lang", tag["name"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/tags/", superToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	tags, _ := body["tags"].([]interface{})
	assert.Len(t, tags, 1)

	// Deleting a tag answers 204 with an empty body
	tagID, _ := tag["id"].(string)
	resp, body = doJSON(t, app, http.MethodDelete, "/api/v1/tags/"+tagID, superToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, body)

	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/tags/", superToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	tags, _ = body["tags"].([]interface{})
	assert.Len(t, tags, 0)
}

func TestSearchAndPagination(t *testing.T) {
	app, _ := setupApp(t)
	token := registerAndLogin(t, app, "jane", "jane@example.com")

	createArticle(t, app, token, "Go Concurrency Patterns", []string{"Go Lang"})
	createArticle(t, app, token, "Go Generics in Practice", []string{"Go Lang"})
	createArticle(t, app, token, "Sourdough Basics", []string{"cooking"})

	// Tag filter returns only associated articles
	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/articles/?tag=go_lang", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["articlesCount"])

	// Free-text filter combines with AND semantics
	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/articles/?tag=go_lang&q=Generics", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["articlesCount"])

	// Author filter
	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/articles/?author=jane", "", nil)
	assert.Equal(t, float64(3), body["articlesCount"])
	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/articles/?author=nobody", "", nil)
	assert.Equal(t, float64(0), body["articlesCount"])

	// Pagination slices the stable-ordered result set
	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/articles/?limit=2&offset=0", "", nil)
	articles, _ := body["articles"].([]interface{})
	assert.Len(t, articles, 2)
	assert.Equal(t, float64(3), body["articlesCount"])
	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/articles/?limit=2&offset=2", "", nil)
	articles, _ = body["articles"].([]interface{})
	assert.Len(t, articles, 1)

	// Negative values fold to their absolute value instead of erroring
	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/articles/?limit=-2&offset=-1", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Non-numeric pagination is a 400
	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/articles/?limit=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCommentsAndReplies(t *testing.T) {
	app, _ := setupApp(t)
	authorToken := registerAndLogin(t, app, "jane", "jane@example.com")
	readerToken := registerAndLogin(t, app, "joe", "joe@example.com")

	slug := createArticle(t, app, authorToken, "Discussable", nil)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/articles/"+slug+"/comments", readerToken, map[string]string{
		"body": "great read",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	comment, _ := body["comment"].(map[string]interface{})
	commentID, _ := comment["id"].(string)
	assert.NotEmpty(t, commentID)

	// Empty comment body fails validation
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/articles/"+slug+"/comments", readerToken, map[string]string{
		"body": "",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/comments/"+commentID+"/replies", authorToken, map[string]string{
		"content": "thanks!",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/articles/"+slug+"/comments", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	comments, _ := body["comments"].([]interface{})
	assert.Len(t, comments, 1)

	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/comments/"+commentID+"/replies", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	replies, _ := body["replies"].([]interface{})
	assert.Len(t, replies, 1)
}
