package handlers

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/005ishan/backend-jerseypasal/internal/apperrors"
	"github.com/005ishan/backend-jerseypasal/internal/models"
	"github.com/005ishan/backend-jerseypasal/internal/services"
)

// ProductHandler handles HTTP requests for the product catalog. Reads are
// public; writes sit behind the admin gate.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, auth, admin fiber.Handler) {
	products := router.Group("/products")
	products.Get("/", h.HandleGetProducts)
	products.Get("/:id", h.HandleGetProductByID)
	products.Post("/", auth, admin, h.HandleCreateProduct)
	products.Put("/:id", auth, admin, h.HandleUpdateProduct)
	products.Delete("/:id", auth, admin, h.HandleDeleteProduct)
}

// HandleGetProducts retrieves the catalog. Query param: search.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.Query("search"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "", products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.Params("id"))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return respondError(c, apperrors.NotFound("Product not found"))
		}
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "", product)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return respondError(c, apperrors.Validation("Invalid request body"))
	}
	if err := h.validate.Struct(product); err != nil {
		return respondValidation(c, err)
	}

	if err := h.service.CreateProduct(&product); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusCreated, "Product created successfully", product)
}

// HandleUpdateProduct updates an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return respondError(c, apperrors.Validation("Invalid request body"))
	}
	product.ID = c.Params("id")
	if err := h.validate.Struct(product); err != nil {
		return respondValidation(c, err)
	}

	if err := h.service.UpdateProduct(&product); err != nil {
		if strings.Contains(err.Error(), "not found") {
			return respondError(c, apperrors.NotFound("Product not found"))
		}
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Product updated successfully", product)
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.Params("id")); err != nil {
		if strings.Contains(err.Error(), "not found") {
			return respondError(c, apperrors.NotFound("Product not found"))
		}
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Product deleted successfully", nil)
}
