package repositories

import (
	"context"
	"regexp"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cafe/internal/models"
)

var _ ProductRepository = (*GORMProductRepository)(nil)

var productColumns = map[string]string{
	"_id":        "id",
	"nombre":     "nombre",
	"precioUni":  "precio_uni",
	"disponible": "disponible",
	"usuario":    "usuario_id",
	"categoria":  "categoria_id",
}

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{db: db}
}

// PostgreSQL evaluates the name regex itself; other dialects filter in Go.
func (r *GORMProductRepository) regexInDB() bool {
	return r.db.Dialector.Name() == "postgres"
}

func (r *GORMProductRepository) preload(q *gorm.DB, populate Populate) *gorm.DB {
	if populate.Has(PopulateUsuario) {
		q = q.Preload("Usuario")
	}
	if populate.Has(PopulateCategoria) {
		q = q.Preload("Categoria")
	}
	return q
}

func (r *GORMProductRepository) clearDangling(productos []models.Producto, populate Populate) {
	for i := range productos {
		p := &productos[i]
		clearDangling(populate.Has(PopulateUsuario), &p.UsuarioID, p.Usuario)
		clearDangling(populate.Has(PopulateCategoria), &p.CategoriaID, p.Categoria)
	}
}

func (r *GORMProductRepository) filtered(ctx context.Context, filter ProductFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Producto{})
	if filter.Disponible != nil {
		q = q.Where("disponible = ?", *filter.Disponible)
	}
	if filter.NombreRegex != "" && r.regexInDB() {
		q = q.Where("nombre ~* ?", filter.NombreRegex)
	}
	return q
}

func (r *GORMProductRepository) goRegex(filter ProductFilter) (*regexp.Regexp, error) {
	if filter.NombreRegex == "" || r.regexInDB() {
		return nil, nil
	}
	re, err := regexp.Compile("(?i)" + filter.NombreRegex)
	if err != nil {
		return nil, errors.Wrap(err, "compile nombre regex")
	}
	return re, nil
}

// Find lists products matching filter in the requested order.
func (r *GORMProductRepository) Find(ctx context.Context, filter ProductFilter, opts FindOptions) ([]models.Producto, error) {
	re, err := r.goRegex(filter)
	if err != nil {
		return nil, err
	}
	q, err := applyOrder(r.filtered(ctx, filter), opts.Sort, productColumns)
	if err != nil {
		return nil, err
	}
	q = r.preload(q, opts.Populate)

	productos := []models.Producto{}
	if re == nil {
		if err := applyPage(q, opts.Skip, opts.Limit).Find(&productos).Error; err != nil {
			return nil, gormError(err, "find productos")
		}
		r.clearDangling(productos, opts.Populate)
		return productos, nil
	}

	// Paging has to follow the in-memory filter.
	if err := q.Find(&productos).Error; err != nil {
		return nil, gormError(err, "find productos")
	}
	matched := productos[:0]
	for _, p := range productos {
		if re.MatchString(p.Nombre) {
			matched = append(matched, p)
		}
	}
	matched = pageSlice(matched, opts.Skip, opts.Limit)
	r.clearDangling(matched, opts.Populate)
	return matched, nil
}

// Count returns how many products match filter.
func (r *GORMProductRepository) Count(ctx context.Context, filter ProductFilter) (int64, error) {
	re, err := r.goRegex(filter)
	if err != nil {
		return 0, err
	}
	q := r.filtered(ctx, filter)

	if re == nil {
		var n int64
		if err := q.Count(&n).Error; err != nil {
			return 0, gormError(err, "count productos")
		}
		return n, nil
	}

	var nombres []string
	if err := q.Pluck("nombre", &nombres).Error; err != nil {
		return 0, gormError(err, "count productos")
	}
	var n int64
	for _, nombre := range nombres {
		if re.MatchString(nombre) {
			n++
		}
	}
	return n, nil
}

// GetByID retrieves a single product by its ID.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string, populate Populate) (*models.Producto, error) {
	productos := make([]models.Producto, 1)
	q := r.preload(r.db.WithContext(ctx), populate)
	if err := q.First(&productos[0], "id = ?", id).Error; err != nil {
		return nil, gormError(err, "get producto")
	}
	r.clearDangling(productos, populate)
	return &productos[0], nil
}

// Create inserts a product.
func (r *GORMProductRepository) Create(ctx context.Context, producto *models.Producto) error {
	if producto.ID == "" {
		producto.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(producto).Error; err != nil {
		return gormError(err, "create producto")
	}
	return nil
}

// Update replaces the editable fields and returns the updated product.
func (r *GORMProductRepository) Update(ctx context.Context, id string, patch models.ProductoPatch) (*models.Producto, error) {
	updates := map[string]any{
		"nombre":       patch.Nombre,
		"precio_uni":   patch.PrecioUni,
		"descripcion":  patch.Descripcion,
		"usuario_id":   patch.UsuarioID,
		"categoria_id": patch.CategoriaID,
	}
	if patch.Disponible != nil {
		updates["disponible"] = *patch.Disponible
	}
	return r.update(ctx, id, updates, "update producto")
}

// SetDisponible flips availability; used for soft deletes.
func (r *GORMProductRepository) SetDisponible(ctx context.Context, id string, disponible bool) (*models.Producto, error) {
	return r.update(ctx, id, map[string]any{"disponible": disponible}, "set producto disponible")
}

func (r *GORMProductRepository) update(ctx context.Context, id string, updates map[string]any, op string) (*models.Producto, error) {
	res := r.db.WithContext(ctx).Model(&models.Producto{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, gormError(res.Error, op)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id, PopulateNone)
}
