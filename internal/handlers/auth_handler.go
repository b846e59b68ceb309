package handlers

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/005ishan/backend-jerseypasal/internal/apperrors"
	"github.com/005ishan/backend-jerseypasal/internal/middleware"
	"github.com/005ishan/backend-jerseypasal/internal/services"
)

const sessionCookieName = "session"

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
// Logout is the only protected route here; it needs a valid session so the
// client has something to clear.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", auth, h.HandleLogout)
	authRoutes.Post("/request-password-reset", h.HandleRequestPasswordReset)
	authRoutes.Post("/reset-password/:token", h.HandleResetPassword)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"omitempty,oneof=user admin"`
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperrors.Validation("Invalid request body"))
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	user, err := h.authService.Register(req.Email, req.Password, req.ConfirmPassword, req.Role)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusCreated, "Registered Successfully", user)
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// HandleLogin authenticates a user, returns a session token in the
// envelope and mirrors it into an httpOnly cookie.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperrors.Validation("Invalid request body"))
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	result, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    result.Token,
		Path:     "/",
		Expires:  time.Now().Add(services.SessionTokenTTL),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Login successfully",
		"data":    result.User,
		"token":   result.Token,
	})
}

// HandleLogout clears the client-held session cookie. Sessions are
// stateless so nothing is invalidated server-side.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return respondOK(c, fiber.StatusOK, "Logged out successfully", nil)
}

// ResetRequestBody represents the request body for a password-reset request.
type ResetRequestBody struct {
	Email string `json:"email" validate:"required,email"`
}

// HandleRequestPasswordReset issues a reset token and emails it as a link.
func (h *AuthHandler) HandleRequestPasswordReset(c *fiber.Ctx) error {
	var req ResetRequestBody
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperrors.Validation("Invalid request body"))
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	user, err := h.authService.RequestPasswordReset(req.Email)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Password reset email sent", user)
}

// ResetPasswordBody represents the request body for the reset confirmation.
type ResetPasswordBody struct {
	Password string `json:"password" validate:"required,min=8"`
}

// HandleResetPassword consumes the token from the URL path and sets the
// new password.
func (h *AuthHandler) HandleResetPassword(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return respondError(c, apperrors.Validation("Reset token is required"))
	}

	var req ResetPasswordBody
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperrors.Validation("Invalid request body"))
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	if err := h.authService.ResetPassword(token, req.Password); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Password reset successfully", nil)
}

// principalID returns the authenticated user id attached by the guard.
func principalID(c *fiber.Ctx) string {
	id, _ := c.Locals(middleware.LocalUserID).(string)
	return id
}
