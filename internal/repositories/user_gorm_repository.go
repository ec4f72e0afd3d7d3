package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cafe/internal/models"
)

var _ UserRepository = (*GORMUserRepository)(nil)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{db: db}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.Usuario) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = models.UserRole
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return gormError(err, "create usuario")
	}
	return nil
}

// GetByEmail retrieves a user by their email.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.Usuario, error) {
	var user models.Usuario
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, gormError(err, "get usuario by email")
	}
	return &user, nil
}

// GetByID retrieves a user by their ID.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.Usuario, error) {
	var user models.Usuario
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, gormError(err, "get usuario")
	}
	return &user, nil
}
