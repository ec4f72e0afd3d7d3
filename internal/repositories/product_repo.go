package repositories

import (
	"context"

	"cafe/internal/models"
)

// ProductRepository defines data access for products.
type ProductRepository interface {
	Find(ctx context.Context, filter ProductFilter, opts FindOptions) ([]models.Producto, error)
	Count(ctx context.Context, filter ProductFilter) (int64, error)
	GetByID(ctx context.Context, id string, populate Populate) (*models.Producto, error)
	Create(ctx context.Context, producto *models.Producto) error
	Update(ctx context.Context, id string, patch models.ProductoPatch) (*models.Producto, error)
	// SetDisponible flips availability and returns the updated record.
	SetDisponible(ctx context.Context, id string, disponible bool) (*models.Producto, error)
}
