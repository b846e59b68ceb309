package repositories

import (
	"github.com/005ishan/backend-jerseypasal/internal/models"
)

// ProductRepository defines the interface for catalog data access.
// GetAll filters on name or description when search is non-empty.
type ProductRepository interface {
	GetAll(search string) ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
}
