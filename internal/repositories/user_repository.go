package repositories

import (
	"context"

	"cafe/internal/models"
)

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.Usuario) error
	GetByEmail(ctx context.Context, email string) (*models.Usuario, error)
	GetByID(ctx context.Context, id string) (*models.Usuario, error)
}
