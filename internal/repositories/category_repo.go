package repositories

import (
	"context"

	"cafe/internal/models"
)

// CategoryRepository defines data access for categories.
type CategoryRepository interface {
	Find(ctx context.Context, opts FindOptions) ([]models.Categoria, error)
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id string, populate Populate) (*models.Categoria, error)
	Create(ctx context.Context, categoria *models.Categoria) error
	Update(ctx context.Context, id string, patch models.CategoriaPatch) (*models.Categoria, error)
	Delete(ctx context.Context, id string) (*models.Categoria, error)
}
