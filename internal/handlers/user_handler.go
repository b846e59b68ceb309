package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/005ishan/backend-jerseypasal/internal/apperrors"
	"github.com/005ishan/backend-jerseypasal/internal/middleware"
	"github.com/005ishan/backend-jerseypasal/internal/models"
	"github.com/005ishan/backend-jerseypasal/internal/services"
)

// UserHandler handles profile, favourites, cart and admin user routes.
type UserHandler struct {
	authService *services.AuthService
	userService *services.UserService
	cartService *services.CartService
	validate    *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *services.AuthService, userService *services.UserService, cartService *services.CartService) *UserHandler {
	return &UserHandler{
		authService: authService,
		userService: userService,
		cartService: cartService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers profile, favourite and cart routes. Mirroring
// the upstream API, only profile access and adding to the cart demand a
// session token; the remaining cart/favourite routes key off the path
// user id alone.
func (h *UserHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	users := router.Group("/users")

	users.Get("/:id", auth, h.HandleGetProfile)
	users.Put("/:id", auth, h.HandleUpdateProfile)

	users.Post("/:userId/favourite", h.HandleToggleFavourite)
	users.Get("/:userId/favourite", h.HandleGetFavourites)

	users.Post("/:userId/cart", auth, h.HandleAddToCart)
	users.Put("/:userId/cart", h.HandleUpdateCartItem)
	users.Delete("/:userId/cart", h.HandleRemoveCartItem)
	users.Get("/:userId/cart", h.HandleGetCart)
}

// RegisterAdminRoutes registers the administrative user CRUD behind the
// admin gate.
func (h *UserHandler) RegisterAdminRoutes(router fiber.Router, auth, admin fiber.Handler) {
	adminUsers := router.Group("/admin/users", auth, admin)
	adminUsers.Get("/", h.HandleListUsers)
	adminUsers.Get("/:id", h.HandleAdminGetUser)
	adminUsers.Put("/:id", h.HandleUpdateProfile)
	adminUsers.Delete("/:id", h.HandleDeleteUser)
}

// HandleGetProfile returns one user's profile. A user may read their own
// profile; admins may read anyone's.
func (h *UserHandler) HandleGetProfile(c *fiber.Ctx) error {
	targetID := c.Params("id")
	if !h.mayAccess(c, targetID) {
		return respondError(c, apperrors.Forbidden("You may only access your own profile"))
	}

	user, err := h.authService.GetProfile(targetID)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "", user)
}

// UpdateProfileRequest represents the request body for a profile update.
type UpdateProfileRequest struct {
	Email           string `json:"email" validate:"omitempty,email"`
	Password        string `json:"password" validate:"omitempty,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
	Role            string `json:"role" validate:"omitempty,oneof=user admin"`
	ImageURL        string `json:"imageUrl" validate:"omitempty,url"`
}

// HandleUpdateProfile applies a partial update to a user. Role changes are
// admin-only.
func (h *UserHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	targetID := c.Params("id")
	if !h.mayAccess(c, targetID) {
		return respondError(c, apperrors.Forbidden("You may only update your own profile"))
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperrors.Validation("Invalid request body"))
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	role, _ := c.Locals(middleware.LocalRole).(string)
	if req.Role != "" && role != models.RoleAdmin {
		return respondError(c, apperrors.Forbidden("Only admins may change roles"))
	}

	user, err := h.authService.UpdateProfile(targetID, services.ProfileUpdate{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "User updated successfully", user)
}

// ToggleFavouriteRequest represents the request body for a favourite toggle.
type ToggleFavouriteRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

// HandleToggleFavourite adds or removes a product from the user's
// favourites and returns the resulting collection.
func (h *UserHandler) HandleToggleFavourite(c *fiber.Ctx) error {
	var req ToggleFavouriteRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperrors.Validation("Invalid request body"))
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	favourites, err := h.cartService.ToggleFavourite(c.Params("userId"), req.ProductID)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Favourites updated", favourites)
}

// HandleGetFavourites returns the user's favourites.
func (h *UserHandler) HandleGetFavourites(c *fiber.Ctx) error {
	favourites, err := h.cartService.GetFavourites(c.Params("userId"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "", favourites)
}

// AddToCartRequest represents the request body for adding to the cart.
type AddToCartRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Size      string `json:"size" validate:"required,oneof=S M L XL XXL"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// HandleAddToCart merges the item into the user's cart.
func (h *UserHandler) HandleAddToCart(c *fiber.Ctx) error {
	var req AddToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperrors.Validation("Invalid request body"))
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	cart, err := h.cartService.AddToCart(c.Params("userId"), req.ProductID, req.Size, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Added to cart", cart)
}

// HandleUpdateCartItem sets the quantity of a cart entry.
func (h *UserHandler) HandleUpdateCartItem(c *fiber.Ctx) error {
	var req AddToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperrors.Validation("Invalid request body"))
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	cart, err := h.cartService.UpdateCartItem(c.Params("userId"), req.ProductID, req.Size, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Cart updated", cart)
}

// RemoveCartItemRequest represents the request body for a cart removal.
type RemoveCartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Size      string `json:"size" validate:"required,oneof=S M L XL XXL"`
}

// HandleRemoveCartItem deletes a cart entry.
func (h *UserHandler) HandleRemoveCartItem(c *fiber.Ctx) error {
	var req RemoveCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperrors.Validation("Invalid request body"))
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	cart, err := h.cartService.RemoveCartItem(c.Params("userId"), req.ProductID, req.Size)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Removed from cart", cart)
}

// HandleGetCart returns the user's cart.
func (h *UserHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.cartService.GetCart(c.Params("userId"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "", cart)
}

// HandleListUsers returns one page of users. Query params: page, size,
// search.
func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	size := c.QueryInt("size", 10)
	search := c.Query("search")

	result, err := h.userService.List(page, size, search)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "", result)
}

// HandleAdminGetUser returns one user for an admin.
func (h *UserHandler) HandleAdminGetUser(c *fiber.Ctx) error {
	user, err := h.userService.Get(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "", user)
}

// HandleDeleteUser hard-deletes a user.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	if err := h.userService.Delete(c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "User deleted successfully", nil)
}

// mayAccess reports whether the authenticated principal may act on the
// target user: themselves, or any user when they are an admin.
func (h *UserHandler) mayAccess(c *fiber.Ctx, targetID string) bool {
	role, _ := c.Locals(middleware.LocalRole).(string)
	return principalID(c) == targetID || role == models.RoleAdmin
}
