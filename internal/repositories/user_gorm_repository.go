package repositories

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/005ishan/backend-jerseypasal/internal/models"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Email = strings.ToLower(user.Email)
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByEmail retrieves a user by their email. Lookup is case-insensitive:
// emails are stored lowercased and the query lowercases its argument.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "email = ?", strings.ToLower(email)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// GetByID retrieves a user by ID with cart and favourites preloaded.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	err := r.db.Preload("Favourites").Preload("Cart").First(&user, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return &user, nil
}

// GetAll returns one page of users plus the total match count. When search
// is non-empty it filters on email or role, case-insensitively.
func (r *GORMUserRepository) GetAll(page, size int, search string) ([]models.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}

	query := r.db.Model(&models.User{})
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(role) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	err := query.Offset((page - 1) * size).Limit(size).Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// Update persists changes to an existing user.
func (r *GORMUserRepository) Update(user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	result := r.db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"email":     user.Email,
		"password":  user.Password,
		"role":      user.Role,
		"image_url": user.ImageURL,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update user %s: %w", user.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete hard-deletes a user and, via the FK constraints, their cart and
// favourite rows.
func (r *GORMUserRepository) Delete(id string) error {
	result := r.db.Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ReplaceCart swaps the user's cart rows inside one transaction.
func (r *GORMUserRepository) ReplaceCart(userID string, items []models.CartItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart for user %s: %w", userID, err)
		}
		for i := range items {
			items[i].ID = 0
			items[i].UserID = userID
		}
		if len(items) == 0 {
			return nil
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to write cart for user %s: %w", userID, err)
		}
		return nil
	})
}

// ReplaceFavourites swaps the user's favourite rows inside one transaction.
func (r *GORMUserRepository) ReplaceFavourites(userID string, items []models.FavouriteItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.FavouriteItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear favourites for user %s: %w", userID, err)
		}
		for i := range items {
			items[i].ID = 0
			items[i].UserID = userID
		}
		if len(items) == 0 {
			return nil
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to write favourites for user %s: %w", userID, err)
		}
		return nil
	})
}
