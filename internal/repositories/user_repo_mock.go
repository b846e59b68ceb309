package repositories

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/005ishan/backend-jerseypasal/internal/models"
)

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	users map[string]models.User
	mu    sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]models.User),
	}
}

// Create adds a new user.
func (r *MockUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Email = strings.ToLower(user.Email)
	for _, u := range r.users {
		if u.Email == user.Email {
			return fmt.Errorf("email %s already exists", user.Email)
		}
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

// GetByEmail returns a user by email, case-insensitively.
func (r *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(email)
	for _, u := range r.users {
		if u.Email == email {
			user := cloneUser(u)
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}

// GetByID returns a user by ID.
func (r *MockUserRepository) GetByID(id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	user := cloneUser(u)
	return &user, nil
}

// GetAll returns one page of users and the total match count.
func (r *MockUserRepository) GetAll(page, size int, search string) ([]models.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}

	search = strings.ToLower(search)
	matched := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		if search == "" ||
			strings.Contains(strings.ToLower(u.Email), search) ||
			strings.Contains(strings.ToLower(u.Role), search) {
			matched = append(matched, cloneUser(u))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Email < matched[j].Email })

	total := int64(len(matched))
	start := (page - 1) * size
	if start >= len(matched) {
		return []models.User{}, total, nil
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// Update modifies an existing user.
func (r *MockUserRepository) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return ErrUserNotFound
	}
	existing.Email = strings.ToLower(user.Email)
	existing.Password = user.Password
	existing.Role = user.Role
	existing.ImageURL = user.ImageURL
	existing.UpdatedAt = time.Now()
	r.users[user.ID] = existing
	return nil
}

// Delete removes a user by ID.
func (r *MockUserRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// ReplaceCart swaps the user's cart collection.
func (r *MockUserRepository) ReplaceCart(userID string, items []models.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.Cart = append([]models.CartItem(nil), items...)
	for i := range u.Cart {
		u.Cart[i].UserID = userID
	}
	u.UpdatedAt = time.Now()
	r.users[userID] = u
	return nil
}

// ReplaceFavourites swaps the user's favourites collection.
func (r *MockUserRepository) ReplaceFavourites(userID string, items []models.FavouriteItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.Favourites = append([]models.FavouriteItem(nil), items...)
	for i := range u.Favourites {
		u.Favourites[i].UserID = userID
	}
	u.UpdatedAt = time.Now()
	r.users[userID] = u
	return nil
}

// cloneUser deep-copies the embedded slices so callers cannot mutate the
// stored value through a returned pointer.
func cloneUser(u models.User) models.User {
	u.Cart = append([]models.CartItem(nil), u.Cart...)
	u.Favourites = append([]models.FavouriteItem(nil), u.Favourites...)
	return u
}
