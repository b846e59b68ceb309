package services_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/005ishan/backend-jerseypasal/internal/apperrors"
	"github.com/005ishan/backend-jerseypasal/internal/models"
	"github.com/005ishan/backend-jerseypasal/internal/repositories"
	"github.com/005ishan/backend-jerseypasal/internal/services"
)

func newTestCartService(t *testing.T) (*services.CartService, *models.User) {
	t.Helper()
	repo := repositories.NewMockUserRepository()
	user := &models.User{Email: "cart@example.com", Password: "irrelevant", Role: models.RoleUser}
	require.NoError(t, repo.Create(user))
	return services.NewCartService(repo), user
}

func TestCartService_ToggleFavourite_Involution(t *testing.T) {
	cartService, user := newTestCartService(t)

	favourites, err := cartService.ToggleFavourite(user.ID, "prod-1")
	require.NoError(t, err)
	require.Len(t, favourites, 1)
	assert.Equal(t, "prod-1", favourites[0].ProductID)
	assert.False(t, favourites[0].AddedAt.IsZero())

	// Toggling twice restores the original state.
	favourites, err = cartService.ToggleFavourite(user.ID, "prod-1")
	require.NoError(t, err)
	assert.Empty(t, favourites)
}

func TestCartService_ToggleFavourite_KeepsOthers(t *testing.T) {
	cartService, user := newTestCartService(t)

	_, err := cartService.ToggleFavourite(user.ID, "prod-1")
	require.NoError(t, err)
	_, err = cartService.ToggleFavourite(user.ID, "prod-2")
	require.NoError(t, err)

	favourites, err := cartService.ToggleFavourite(user.ID, "prod-1")
	require.NoError(t, err)
	require.Len(t, favourites, 1)
	assert.Equal(t, "prod-2", favourites[0].ProductID)
}

func TestCartService_AddToCart_MergesQuantity(t *testing.T) {
	cartService, user := newTestCartService(t)

	cart, err := cartService.AddToCart(user.ID, "prod-1", "M", 2)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, 2, cart[0].Quantity)

	// Same (product, size) merges into one entry.
	cart, err = cartService.AddToCart(user.ID, "prod-1", "M", 3)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, 5, cart[0].Quantity)

	// A different size is a separate entry.
	cart, err = cartService.AddToCart(user.ID, "prod-1", "L", 1)
	require.NoError(t, err)
	assert.Len(t, cart, 2)
}

func TestCartService_UpdateCartItem_SetsNotIncrements(t *testing.T) {
	cartService, user := newTestCartService(t)

	_, err := cartService.AddToCart(user.ID, "prod-1", "M", 2)
	require.NoError(t, err)

	cart, err := cartService.UpdateCartItem(user.ID, "prod-1", "M", 7)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, 7, cart[0].Quantity)

	// No matching entry: silent no-op returning the current cart.
	cart, err = cartService.UpdateCartItem(user.ID, "prod-9", "XL", 4)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, "prod-1", cart[0].ProductID)
	assert.Equal(t, 7, cart[0].Quantity)
}

func TestCartService_RemoveCartItem(t *testing.T) {
	cartService, user := newTestCartService(t)

	_, err := cartService.AddToCart(user.ID, "prod-1", "M", 2)
	require.NoError(t, err)
	_, err = cartService.AddToCart(user.ID, "prod-1", "L", 1)
	require.NoError(t, err)

	cart, err := cartService.RemoveCartItem(user.ID, "prod-1", "M")
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, "L", cart[0].Size)

	// Removing an absent entry is a no-op.
	cart, err = cartService.RemoveCartItem(user.ID, "prod-1", "M")
	require.NoError(t, err)
	assert.Len(t, cart, 1)
}

func TestCartService_UnknownUser(t *testing.T) {
	cartService, _ := newTestCartService(t)

	_, err := cartService.GetCart("no-such-user")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	_, err = cartService.GetFavourites("no-such-user")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	_, err = cartService.AddToCart("no-such-user", "prod-1", "M", 1)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	_, err = cartService.ToggleFavourite("no-such-user", "prod-1")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

// Two concurrent increments for the same (product, size) must both land:
// the final quantity is the sum of all requested quantities.
func TestCartService_ConcurrentAddToCart(t *testing.T) {
	cartService, user := newTestCartService(t)

	const callers = 16
	const perCall = 3

	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			_, err := cartService.AddToCart(user.ID, "prod-1", "M", perCall)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	cart, err := cartService.GetCart(user.ID)
	require.NoError(t, err)
	require.Len(t, cart, 1, "exactly one entry for the (product, size) key")
	assert.Equal(t, callers*perCall, cart[0].Quantity)
}

// Concurrent toggles of distinct products must not clobber each other.
func TestCartService_ConcurrentToggleFavourite(t *testing.T) {
	cartService, user := newTestCartService(t)

	products := []string{"prod-1", "prod-2", "prod-3", "prod-4", "prod-5"}
	var wg sync.WaitGroup
	wg.Add(len(products))
	for _, p := range products {
		go func(productID string) {
			defer wg.Done()
			_, err := cartService.ToggleFavourite(user.ID, productID)
			assert.NoError(t, err)
		}(p)
	}
	wg.Wait()

	favourites, err := cartService.GetFavourites(user.ID)
	require.NoError(t, err)
	assert.Len(t, favourites, len(products))
}
