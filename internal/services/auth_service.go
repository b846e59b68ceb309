package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/005ishan/backend-jerseypasal/internal/apperrors"
	"github.com/005ishan/backend-jerseypasal/internal/models"
	"github.com/005ishan/backend-jerseypasal/internal/repositories"
	"github.com/005ishan/backend-jerseypasal/pkg/mailer"
)

const minPasswordLength = 8

// AuthService handles registration, login, profile access and the
// password-reset flow. Sessions are stateless: logout is client-side
// cookie clearing and no token is tracked server-side.
type AuthService struct {
	userRepo      repositories.UserRepository
	hasher        *PasswordHasher
	tokens        *TokenService
	mailer        mailer.Mailer
	resetLinkBase string
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, hasher *PasswordHasher, tokens *TokenService, m mailer.Mailer, resetLinkBase string) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		hasher:        hasher,
		tokens:        tokens,
		mailer:        m,
		resetLinkBase: strings.TrimRight(resetLinkBase, "/"),
	}
}

// LoginResult is what a successful login returns.
type LoginResult struct {
	Token string
	User  models.User
}

// ProfileUpdate carries the optional fields of a profile patch. Empty
// strings mean "leave unchanged".
type ProfileUpdate struct {
	Email    string
	Password string
	Role     string
	ImageURL string
}

// Register creates a new user with a hashed password. The role defaults
// to "user" when empty.
func (s *AuthService) Register(email, password, confirmPassword, role string) (*models.User, error) {
	if len(password) < minPasswordLength {
		return nil, apperrors.Validation(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	if password != confirmPassword {
		return nil, apperrors.Validation("Those passwords didn't match. Try again.")
	}
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, apperrors.Validation("Role must be 'user' or 'admin'")
	}

	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, apperrors.Conflict("Email already in use")
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		log.Printf("Error checking email %s during registration: %v", email, err)
		return nil, apperrors.Internal("Internal Server Error")
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		log.Printf("Error hashing password during registration: %v", err)
		return nil, apperrors.Internal("Internal Server Error")
	}

	user := &models.User{
		Email:    strings.ToLower(email),
		Password: hashed,
		Role:     role,
	}
	if err := s.userRepo.Create(user); err != nil {
		log.Printf("Error creating user %s: %v", email, err)
		return nil, apperrors.Internal("Internal Server Error")
	}

	sanitized := user.Sanitized()
	return &sanitized, nil
}

// Login verifies credentials and issues a session token carrying the
// user's id, email and role.
func (s *AuthService) Login(email, password string) (*LoginResult, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		log.Printf("Error looking up user %s during login: %v", email, err)
		return nil, apperrors.Internal("Internal Server Error")
	}

	if !s.hasher.Verify(password, user.Password) {
		return nil, apperrors.Unauthorized("Invalid credentials")
	}

	token, err := s.tokens.Issue(user, TokenPurposeSession, SessionTokenTTL)
	if err != nil {
		log.Printf("Error issuing session token for user %s: %v", user.ID, err)
		return nil, apperrors.Internal("Internal Server Error")
	}

	return &LoginResult{Token: token, User: user.Sanitized()}, nil
}

// RequestPasswordReset issues a short-lived reset token and dispatches it
// as a link via the mailer. Dispatch is best-effort: a delivery failure is
// logged and the request still succeeds.
func (s *AuthService) RequestPasswordReset(email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		log.Printf("Error looking up user %s for password reset: %v", email, err)
		return nil, apperrors.Internal("Internal Server Error")
	}

	token, err := s.tokens.Issue(user, TokenPurposeReset, ResetTokenTTL)
	if err != nil {
		log.Printf("Error issuing reset token for user %s: %v", user.ID, err)
		return nil, apperrors.Internal("Internal Server Error")
	}

	link := fmt.Sprintf("%s/%s", s.resetLinkBase, token)
	body := fmt.Sprintf(`<p>We received a request to reset your password.</p>
<p><a href=%q>Click here to choose a new one.</a> The link expires in one hour.</p>
<p>If you did not ask for this, you can ignore this email.</p>`, link)

	if err := s.mailer.Send(user.Email, "Reset your password", body); err != nil {
		log.Printf("Warning: failed to dispatch reset email for user %s: %v", user.ID, err)
	}

	sanitized := user.Sanitized()
	return &sanitized, nil
}

// ResetPassword verifies a reset token and persists a new password hash.
// Every token failure collapses to one InvalidToken kind so callers learn
// nothing about which check rejected it.
func (s *AuthService) ResetPassword(token, newPassword string) error {
	claims, err := s.tokens.Verify(token)
	if err != nil || claims.Purpose != TokenPurposeReset {
		return apperrors.InvalidToken("Invalid or expired token")
	}
	if len(newPassword) < minPasswordLength {
		return apperrors.Validation(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}

	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.InvalidToken("Invalid or expired token")
		}
		log.Printf("Error looking up user %s during password reset: %v", claims.UserID, err)
		return apperrors.Internal("Internal Server Error")
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		log.Printf("Error hashing new password for user %s: %v", user.ID, err)
		return apperrors.Internal("Internal Server Error")
	}
	user.Password = hashed

	if err := s.userRepo.Update(user); err != nil {
		log.Printf("Error persisting new password for user %s: %v", user.ID, err)
		return apperrors.Internal("Internal Server Error")
	}
	return nil
}

// GetProfile returns a user with the password hash stripped.
func (s *AuthService) GetProfile(userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		log.Printf("Error getting profile %s: %v", userID, err)
		return nil, apperrors.Internal("Internal Server Error")
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}

// UpdateProfile applies a patch to a user. A password change is re-hashed,
// and email uniqueness is re-checked when the email changes.
func (s *AuthService) UpdateProfile(userID string, patch ProfileUpdate) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		log.Printf("Error loading user %s for update: %v", userID, err)
		return nil, apperrors.Internal("Internal Server Error")
	}

	if patch.Email != "" {
		newEmail := strings.ToLower(patch.Email)
		if newEmail != user.Email {
			if existing, err := s.userRepo.GetByEmail(newEmail); err == nil && existing.ID != userID {
				return nil, apperrors.Conflict("Email already in use")
			} else if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
				log.Printf("Error checking email %s during update: %v", newEmail, err)
				return nil, apperrors.Internal("Internal Server Error")
			}
			user.Email = newEmail
		}
	}
	if patch.Password != "" {
		if len(patch.Password) < minPasswordLength {
			return nil, apperrors.Validation(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
		}
		hashed, err := s.hasher.Hash(patch.Password)
		if err != nil {
			log.Printf("Error hashing password for user %s: %v", userID, err)
			return nil, apperrors.Internal("Internal Server Error")
		}
		user.Password = hashed
	}
	if patch.Role != "" {
		if patch.Role != models.RoleUser && patch.Role != models.RoleAdmin {
			return nil, apperrors.Validation("Role must be 'user' or 'admin'")
		}
		user.Role = patch.Role
	}
	if patch.ImageURL != "" {
		user.ImageURL = patch.ImageURL
	}

	if err := s.userRepo.Update(user); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		log.Printf("Error updating user %s: %v", userID, err)
		return nil, apperrors.Internal("Internal Server Error")
	}

	sanitized := user.Sanitized()
	return &sanitized, nil
}
