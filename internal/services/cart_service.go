package services

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/005ishan/backend-jerseypasal/internal/apperrors"
	"github.com/005ishan/backend-jerseypasal/internal/models"
	"github.com/005ishan/backend-jerseypasal/internal/repositories"
)

// CartService mutates a user's embedded cart and favourites collections.
//
// Every mutation is a read-modify-write over one user document, so two
// concurrent calls for the same user could otherwise lose an update. A
// keyed mutex held for the whole span serializes mutations per user:
// for a single user they observe a total order matching arrival order at
// this boundary. Different users never contend.
type CartService struct {
	userRepo repositories.UserRepository
	locks    sync.Map // userID -> *sync.Mutex
}

// NewCartService creates a new CartService.
func NewCartService(userRepo repositories.UserRepository) *CartService {
	return &CartService{userRepo: userRepo}
}

func (s *CartService) userLock(userID string) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (s *CartService) loadUser(userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		log.Printf("Error loading user %s: %v", userID, err)
		return nil, apperrors.Internal("Internal Server Error")
	}
	return user, nil
}

// ToggleFavourite adds the product to the user's favourites if absent and
// removes it if present. Applied twice it restores the original state.
func (s *CartService) ToggleFavourite(userID, productID string) ([]models.FavouriteItem, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	user, err := s.loadUser(userID)
	if err != nil {
		return nil, err
	}

	favourites := make([]models.FavouriteItem, 0, len(user.Favourites)+1)
	found := false
	for _, f := range user.Favourites {
		if f.ProductID == productID {
			found = true
			continue
		}
		favourites = append(favourites, f)
	}
	if !found {
		favourites = append(favourites, models.FavouriteItem{
			UserID:    userID,
			ProductID: productID,
			AddedAt:   time.Now(),
		})
	}

	if err := s.userRepo.ReplaceFavourites(userID, favourites); err != nil {
		log.Printf("Error saving favourites for user %s: %v", userID, err)
		return nil, apperrors.Internal("Internal Server Error")
	}
	return favourites, nil
}

// GetFavourites returns the user's favourites.
func (s *CartService) GetFavourites(userID string) ([]models.FavouriteItem, error) {
	user, err := s.loadUser(userID)
	if err != nil {
		return nil, err
	}
	if user.Favourites == nil {
		return []models.FavouriteItem{}, nil
	}
	return user.Favourites, nil
}

// AddToCart merges into an existing (product, size) entry by incrementing
// its quantity, or appends a new entry. Quantity is validated at the HTTP
// boundary and is at least 1 here.
func (s *CartService) AddToCart(userID, productID, size string, quantity int) ([]models.CartItem, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	user, err := s.loadUser(userID)
	if err != nil {
		return nil, err
	}

	cart := append([]models.CartItem(nil), user.Cart...)
	merged := false
	for i := range cart {
		if cart[i].ProductID == productID && cart[i].Size == size {
			cart[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		cart = append(cart, models.CartItem{
			UserID:    userID,
			ProductID: productID,
			Size:      size,
			Quantity:  quantity,
			AddedAt:   time.Now(),
		})
	}

	if err := s.userRepo.ReplaceCart(userID, cart); err != nil {
		log.Printf("Error saving cart for user %s: %v", userID, err)
		return nil, apperrors.Internal("Internal Server Error")
	}
	return cart, nil
}

// UpdateCartItem sets (not increments) the quantity of the matching entry.
// When no entry matches it silently returns the current cart.
func (s *CartService) UpdateCartItem(userID, productID, size string, quantity int) ([]models.CartItem, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	user, err := s.loadUser(userID)
	if err != nil {
		return nil, err
	}

	cart := append([]models.CartItem(nil), user.Cart...)
	for i := range cart {
		if cart[i].ProductID == productID && cart[i].Size == size {
			cart[i].Quantity = quantity
			if err := s.userRepo.ReplaceCart(userID, cart); err != nil {
				log.Printf("Error saving cart for user %s: %v", userID, err)
				return nil, apperrors.Internal("Internal Server Error")
			}
			break
		}
	}
	return cart, nil
}

// RemoveCartItem deletes the matching entry; no-op when absent.
func (s *CartService) RemoveCartItem(userID, productID, size string) ([]models.CartItem, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	user, err := s.loadUser(userID)
	if err != nil {
		return nil, err
	}

	cart := make([]models.CartItem, 0, len(user.Cart))
	removed := false
	for _, item := range user.Cart {
		if item.ProductID == productID && item.Size == size {
			removed = true
			continue
		}
		cart = append(cart, item)
	}
	if removed {
		if err := s.userRepo.ReplaceCart(userID, cart); err != nil {
			log.Printf("Error saving cart for user %s: %v", userID, err)
			return nil, apperrors.Internal("Internal Server Error")
		}
	}
	return cart, nil
}

// GetCart returns the user's cart.
func (s *CartService) GetCart(userID string) ([]models.CartItem, error) {
	user, err := s.loadUser(userID)
	if err != nil {
		return nil, err
	}
	if user.Cart == nil {
		return []models.CartItem{}, nil
	}
	return user.Cart, nil
}
