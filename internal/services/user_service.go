package services

import (
	"errors"
	"log"

	"github.com/005ishan/backend-jerseypasal/internal/apperrors"
	"github.com/005ishan/backend-jerseypasal/internal/models"
	"github.com/005ishan/backend-jerseypasal/internal/repositories"
)

// UserService covers the administrative user operations: paginated
// listing with search, lookup and hard deletion. Profile updates go
// through AuthService so password re-hashing lives in one place.
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// UserPage is one page of a user listing.
type UserPage struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Size  int           `json:"size"`
}

// List returns one page of users, password hashes stripped. search
// filters on email or role.
func (s *UserService) List(page, size int, search string) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}
	users, total, err := s.userRepo.GetAll(page, size, search)
	if err != nil {
		log.Printf("Error listing users: %v", err)
		return nil, apperrors.Internal("Internal Server Error")
	}
	for i := range users {
		users[i] = users[i].Sanitized()
	}
	return &UserPage{Users: users, Total: total, Page: page, Size: size}, nil
}

// Get returns one user, password hash stripped.
func (s *UserService) Get(id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		log.Printf("Error getting user %s: %v", id, err)
		return nil, apperrors.Internal("Internal Server Error")
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}

// Delete hard-deletes a user.
func (s *UserService) Delete(id string) error {
	if err := s.userRepo.Delete(id); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.NotFound("User not found")
		}
		log.Printf("Error deleting user %s: %v", id, err)
		return apperrors.Internal("Internal Server Error")
	}
	return nil
}
