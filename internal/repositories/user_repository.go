package repositories

import (
	"errors"

	"github.com/005ishan/backend-jerseypasal/internal/models"
)

// ErrUserNotFound is returned by lookups and writes that match no user.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	GetAll(page, size int, search string) ([]models.User, int64, error)
	Update(user *models.User) error
	Delete(id string) error

	// ReplaceCart and ReplaceFavourites swap a user's whole embedded
	// collection in one call. Callers serialize per user around the
	// read-modify-write span; see services.CartService.
	ReplaceCart(userID string, items []models.CartItem) error
	ReplaceFavourites(userID string, items []models.FavouriteItem) error
}
