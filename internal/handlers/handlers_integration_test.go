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
	"sync/atomic"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/005ishan/backend-jerseypasal/internal/handlers"
	"github.com/005ishan/backend-jerseypasal/internal/middleware"
	"github.com/005ishan/backend-jerseypasal/internal/models"
	"github.com/005ishan/backend-jerseypasal/internal/repositories"
	"github.com/005ishan/backend-jerseypasal/internal/services"
	"github.com/005ishan/backend-jerseypasal/pkg/mailer"
)

var dbCounter int64

// setupApp builds a Fiber app over a fresh in-memory SQLite database with
// the full handler/service/repository stack wired the way main does it.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:handlers_test_%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.FavouriteItem{}, &models.CartItem{}, &models.Product{}))

	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)

	tokens, err := services.NewTokenService("test_jwt_secret")
	require.NoError(t, err)
	hasher := services.NewPasswordHasher()
	authService := services.NewAuthService(userRepo, hasher, tokens, mailer.NewLogMailer(), "http://localhost:3000/reset-password")
	userService := services.NewUserService(userRepo)
	cartService := services.NewCartService(userRepo)
	productService := services.NewProductService(productRepo)

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(authService, userService, cartService)
	productHandler := handlers.NewProductHandler(productService)

	app := fiber.New()
	auth := middleware.AuthRequired(tokens)
	admin := middleware.AdminRequired()

	api := app.Group("/api")
	authHandler.RegisterRoutes(api, auth)
	userHandler.RegisterRoutes(api, auth)
	userHandler.RegisterAdminRoutes(api, auth, admin)
	productHandler.RegisterRoutes(api, auth, admin)

	return app
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// doJSON issues a request with an optional JSON body and bearer token and
// decodes the response envelope.
func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, token string) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp.StatusCode, envelope
}

func registerAndLogin(t *testing.T, app *fiber.App, email, password, role string) (userID, token string) {
	t.Helper()

	status, envelope := doJSON(t, app, http.MethodPost, "/api/auth/register", map[string]string{
		"email":           email,
		"password":        password,
		"confirmPassword": password,
		"role":            role,
	}, "")
	require.Equal(t, http.StatusCreated, status, "register: %v", envelope)
	userID = envelope["data"].(map[string]interface{})["id"].(string)

	status, envelope = doJSON(t, app, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, status, "login: %v", envelope)
	token = envelope["token"].(string)
	require.NotEmpty(t, token)
	return userID, token
}

func TestAuthEndpoints(t *testing.T) {
	app := setupApp(t)

	user := map[string]string{
		"email":           "testuser@example.com",
		"password":        "Password123!",
		"confirmPassword": "Password123!",
	}

	// Register.
	status, envelope := doJSON(t, app, http.MethodPost, "/api/auth/register", user, "")
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, envelope["success"])
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, "testuser@example.com", data["email"])
	assert.Equal(t, "user", data["role"])
	assert.NotContains(t, data, "password")

	// Duplicate email conflicts, case-insensitively.
	status, envelope = doJSON(t, app, http.MethodPost, "/api/auth/register", map[string]string{
		"email":           "TestUser@Example.com",
		"password":        "Password123!",
		"confirmPassword": "Password123!",
	}, "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, false, envelope["success"])

	// Mismatched confirmation is a validation failure.
	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/register", map[string]string{
		"email":           "other@example.com",
		"password":        "Password123!",
		"confirmPassword": "Different123!",
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)

	// Login.
	status, envelope = doJSON(t, app, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "testuser@example.com",
		"password": "Password123!",
	}, "")
	assert.Equal(t, http.StatusOK, status)
	token := envelope["token"].(string)
	assert.NotEmpty(t, token)

	// Wrong password.
	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "testuser@example.com",
		"password": "WrongPass123!",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	// Unknown email.
	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "nonexistent@example.com",
		"password": "Password123!",
	}, "")
	assert.Equal(t, http.StatusNotFound, status)

	// Logout needs a token.
	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/logout", nil, token)
	assert.Equal(t, http.StatusOK, status)
	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/logout", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestProfileEndpoints(t *testing.T) {
	app := setupApp(t)
	userID, token := registerAndLogin(t, app, "profile@example.com", "Password123!", "")

	// Own profile, password never serialized.
	status, envelope := doJSON(t, app, http.MethodGet, "/api/users/"+userID, nil, token)
	assert.Equal(t, http.StatusOK, status)
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, "profile@example.com", data["email"])
	assert.NotContains(t, data, "password")

	// No token.
	status, _ = doJSON(t, app, http.MethodGet, "/api/users/"+userID, nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	// Someone else's profile.
	otherID, _ := registerAndLogin(t, app, "other@example.com", "Password123!", "")
	status, _ = doJSON(t, app, http.MethodGet, "/api/users/"+otherID, nil, token)
	assert.Equal(t, http.StatusForbidden, status)

	// Update own email.
	status, envelope = doJSON(t, app, http.MethodPut, "/api/users/"+userID, map[string]string{
		"email": "renamed@example.com",
	}, token)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "renamed@example.com", envelope["data"].(map[string]interface{})["email"])

	// Email collision on update.
	status, _ = doJSON(t, app, http.MethodPut, "/api/users/"+userID, map[string]string{
		"email": "other@example.com",
	}, token)
	assert.Equal(t, http.StatusConflict, status)

	// Role escalation is admin-only.
	status, _ = doJSON(t, app, http.MethodPut, "/api/users/"+userID, map[string]string{
		"role": "admin",
	}, token)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestPasswordResetEndpoints(t *testing.T) {
	app := setupApp(t)
	registerAndLogin(t, app, "reset@example.com", "Password123!", "")

	status, envelope := doJSON(t, app, http.MethodPost, "/api/auth/request-password-reset", map[string]string{
		"email": "reset@example.com",
	}, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, envelope["success"])

	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/request-password-reset", map[string]string{
		"email": "fake@example.com",
	}, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/request-password-reset", map[string]string{}, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/reset-password/invalidtoken", map[string]string{
		"password": "NewPass123!",
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAdminEndpoints(t *testing.T) {
	app := setupApp(t)
	_, adminToken := registerAndLogin(t, app, "admin@example.com", "Admin123!!", "admin")
	userID, userToken := registerAndLogin(t, app, "plain@example.com", "Password123!", "")

	// Listing is admin-only.
	status, envelope := doJSON(t, app, http.MethodGet, "/api/admin/users/?page=1&size=10", nil, adminToken)
	assert.Equal(t, http.StatusOK, status)
	page := envelope["data"].(map[string]interface{})
	assert.EqualValues(t, 2, page["total"])

	status, _ = doJSON(t, app, http.MethodGet, "/api/admin/users/", nil, userToken)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = doJSON(t, app, http.MethodGet, "/api/admin/users/", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	// Search narrows the listing.
	status, envelope = doJSON(t, app, http.MethodGet, "/api/admin/users/?search=plain", nil, adminToken)
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, envelope["data"].(map[string]interface{})["total"])

	// Admin may promote a user.
	status, envelope = doJSON(t, app, http.MethodPut, "/api/admin/users/"+userID, map[string]string{
		"role": "admin",
	}, adminToken)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "admin", envelope["data"].(map[string]interface{})["role"])

	// Admin may delete; the user is gone afterwards.
	status, _ = doJSON(t, app, http.MethodDelete, "/api/admin/users/"+userID, nil, adminToken)
	assert.Equal(t, http.StatusOK, status)
	status, _ = doJSON(t, app, http.MethodGet, "/api/admin/users/"+userID, nil, adminToken)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCartAndFavouriteEndpoints(t *testing.T) {
	app := setupApp(t)
	userID, token := registerAndLogin(t, app, "shopper@example.com", "Password123!", "")

	base := "/api/users/" + userID

	// Toggle favourite on, then off.
	status, envelope := doJSON(t, app, http.MethodPost, base+"/favourite", map[string]string{"productId": "prod-1"}, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, envelope["data"].([]interface{}), 1)

	status, envelope = doJSON(t, app, http.MethodPost, base+"/favourite", map[string]string{"productId": "prod-1"}, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, envelope["data"].([]interface{}))

	// Adding to the cart requires a session token.
	addBody := map[string]interface{}{"productId": "prod-1", "size": "M", "quantity": 2}
	status, _ = doJSON(t, app, http.MethodPost, base+"/cart", addBody, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, envelope = doJSON(t, app, http.MethodPost, base+"/cart", addBody, token)
	assert.Equal(t, http.StatusOK, status)
	cart := envelope["data"].([]interface{})
	require.Len(t, cart, 1)

	// Same (product, size) merges.
	status, envelope = doJSON(t, app, http.MethodPost, base+"/cart", map[string]interface{}{
		"productId": "prod-1", "size": "M", "quantity": 3,
	}, token)
	assert.Equal(t, http.StatusOK, status)
	cart = envelope["data"].([]interface{})
	require.Len(t, cart, 1)
	assert.EqualValues(t, 5, cart[0].(map[string]interface{})["quantity"])

	// Invalid size is rejected at the boundary.
	status, _ = doJSON(t, app, http.MethodPost, base+"/cart", map[string]interface{}{
		"productId": "prod-1", "size": "XS", "quantity": 1,
	}, token)
	assert.Equal(t, http.StatusBadRequest, status)

	// Update sets the quantity.
	status, envelope = doJSON(t, app, http.MethodPut, base+"/cart", map[string]interface{}{
		"productId": "prod-1", "size": "M", "quantity": 1,
	}, "")
	assert.Equal(t, http.StatusOK, status)
	cart = envelope["data"].([]interface{})
	assert.EqualValues(t, 1, cart[0].(map[string]interface{})["quantity"])

	// Remove empties the cart.
	status, envelope = doJSON(t, app, http.MethodDelete, base+"/cart", map[string]interface{}{
		"productId": "prod-1", "size": "M",
	}, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, envelope["data"].([]interface{}))

	// Projections for an unknown user fail NotFound.
	status, _ = doJSON(t, app, http.MethodGet, "/api/users/no-such-user/cart", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = doJSON(t, app, http.MethodGet, "/api/users/no-such-user/favourite", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestProductEndpoints(t *testing.T) {
	app := setupApp(t)
	_, adminToken := registerAndLogin(t, app, "admin@example.com", "Admin123!!", "admin")
	_, userToken := registerAndLogin(t, app, "plain@example.com", "Password123!", "")

	// Writes are admin-only.
	jersey := map[string]interface{}{
		"name":        "Home Jersey 2026",
		"description": "Official home kit",
		"price":       89.99,
		"stock":       40,
	}
	status, _ := doJSON(t, app, http.MethodPost, "/api/products/", jersey, userToken)
	assert.Equal(t, http.StatusForbidden, status)

	status, envelope := doJSON(t, app, http.MethodPost, "/api/products/", jersey, adminToken)
	assert.Equal(t, http.StatusCreated, status)
	productID := envelope["data"].(map[string]interface{})["id"].(string)
	assert.NotEmpty(t, productID)

	// Reads are public.
	status, envelope = doJSON(t, app, http.MethodGet, "/api/products/"+productID, nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Home Jersey 2026", envelope["data"].(map[string]interface{})["name"])

	status, _ = doJSON(t, app, http.MethodGet, "/api/products/nonexistent", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
}
