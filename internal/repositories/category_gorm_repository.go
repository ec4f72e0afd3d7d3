package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cafe/internal/models"
)

var _ CategoryRepository = (*GORMCategoryRepository)(nil)

var categoryColumns = map[string]string{
	"_id":         "id",
	"descripcion": "descripcion",
	"usuario":     "usuario_id",
}

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

func (r *GORMCategoryRepository) preload(q *gorm.DB, populate Populate) *gorm.DB {
	if populate.Has(PopulateUsuario) {
		q = q.Preload("Usuario")
	}
	return q
}

// Find lists categories in the requested order.
func (r *GORMCategoryRepository) Find(ctx context.Context, opts FindOptions) ([]models.Categoria, error) {
	q, err := applyOrder(r.db.WithContext(ctx), opts.Sort, categoryColumns)
	if err != nil {
		return nil, err
	}
	q = applyPage(r.preload(q, opts.Populate), opts.Skip, opts.Limit)

	categorias := []models.Categoria{}
	if err := q.Find(&categorias).Error; err != nil {
		return nil, gormError(err, "find categorias")
	}
	for i := range categorias {
		clearDangling(opts.Populate.Has(PopulateUsuario), &categorias[i].UsuarioID, categorias[i].Usuario)
	}
	return categorias, nil
}

// Count returns the number of categories.
func (r *GORMCategoryRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Categoria{}).Count(&n).Error; err != nil {
		return 0, gormError(err, "count categorias")
	}
	return n, nil
}

// GetByID retrieves a single category by its ID.
func (r *GORMCategoryRepository) GetByID(ctx context.Context, id string, populate Populate) (*models.Categoria, error) {
	var categoria models.Categoria
	q := r.preload(r.db.WithContext(ctx), populate)
	if err := q.First(&categoria, "id = ?", id).Error; err != nil {
		return nil, gormError(err, "get categoria")
	}
	clearDangling(populate.Has(PopulateUsuario), &categoria.UsuarioID, categoria.Usuario)
	return &categoria, nil
}

// Create inserts a category; a repeated descripcion yields ErrDuplicate.
func (r *GORMCategoryRepository) Create(ctx context.Context, categoria *models.Categoria) error {
	if categoria.ID == "" {
		categoria.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(categoria).Error; err != nil {
		return gormError(err, "create categoria")
	}
	return nil
}

// Update replaces descripcion and returns the updated category.
func (r *GORMCategoryRepository) Update(ctx context.Context, id string, patch models.CategoriaPatch) (*models.Categoria, error) {
	res := r.db.WithContext(ctx).Model(&models.Categoria{}).
		Where("id = ?", id).
		Updates(map[string]any{"descripcion": patch.Descripcion})
	if res.Error != nil {
		return nil, gormError(res.Error, "update categoria")
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id, PopulateNone)
}

// Delete removes a category and returns the removed record.
func (r *GORMCategoryRepository) Delete(ctx context.Context, id string) (*models.Categoria, error) {
	categoria, err := r.GetByID(ctx, id, PopulateNone)
	if err != nil {
		return nil, err
	}
	res := r.db.WithContext(ctx).Delete(&models.Categoria{}, "id = ?", id)
	if res.Error != nil {
		return nil, gormError(res.Error, "delete categoria")
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return categoria, nil
}
