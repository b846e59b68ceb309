package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/005ishan/backend-jerseypasal/internal/models"
)

// Token purposes. A password-reset token is never accepted as a session
// token, and vice versa.
const (
	TokenPurposeSession = "session"
	TokenPurposeReset   = "password_reset"
)

// Token lifetimes.
const (
	SessionTokenTTL = 30 * 24 * time.Hour
	ResetTokenTTL   = time.Hour
)

var (
	// ErrTokenExpired means the token was well-formed and correctly
	// signed but its expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers every other verification failure.
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims is the verified principal carried by a token.
type Claims struct {
	UserID  string
	Email   string
	Role    string
	Purpose string
}

// TokenService issues and verifies signed HS256 tokens.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService. An empty secret is a
// configuration error and is rejected here so startup fails fast.
func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must be set")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Issue signs a token carrying the user's identity and the given purpose.
func (s *TokenService) Issue(user *models.User, purpose string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"purpose": purpose,
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims. Failures are
// ErrTokenExpired when only the expiry check failed, ErrTokenInvalid for
// everything else (bad signature, malformed structure, missing claims).
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors == jwt.ValidationErrorExpired {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims := &Claims{
		UserID:  stringClaim(mapClaims, "sub"),
		Email:   stringClaim(mapClaims, "email"),
		Role:    stringClaim(mapClaims, "role"),
		Purpose: stringClaim(mapClaims, "purpose"),
	}
	if claims.UserID == "" || claims.Purpose == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
