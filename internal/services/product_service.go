package services

import (
	"context"
	"errors"
	"regexp"

	"cafe/internal/apperror"
	"cafe/internal/models"
	"cafe/internal/repositories"
	"cafe/pkg/logger"
)

// MsgProductoBorrado accompanies a successful product delete.
const MsgProductoBorrado = "producto borrado satisfactoriamente"

// ProductInput carries the client supplied product fields.
type ProductInput struct {
	Nombre      string
	PrecioUni   float64
	Descripcion string
	CategoriaID string
	Disponible  *bool
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo       repositories.ProductRepository
	categorias repositories.CategoryRepository
	events     notifier
}

// NewProductService creates a new ProductService. events may be nil.
func NewProductService(repo repositories.ProductRepository, categorias repositories.CategoryRepository, events EventPublisher, log *logger.Logger) *ProductService {
	return &ProductService{repo: repo, categorias: categorias, events: newNotifier(events, log)}
}

func productNotFound(id string) *apperror.Error {
	return apperror.Newf(apperror.KindProductNotFound, "No product exists with id=%s", id).With("id", id)
}

func (s *ProductService) translate(err error, id, op string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return productNotFound(id)
	case errors.Is(err, repositories.ErrInvalidReference):
		return invalidUsuario()
	default:
		return apperror.Store(err, op)
	}
}

// requireCategory checks the referenced category exists before anything is written.
func (s *ProductService) requireCategory(ctx context.Context, id string) error {
	if id == "" {
		return apperror.Validation("category value missing").With("field", "categoria")
	}
	_, err := s.categorias.GetByID(ctx, id, repositories.PopulateNone)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return categoryNotFound(id)
	default:
		return apperror.Store(err, "verify categoria")
	}
}

// List returns a page of available products ordered by category and the
// number of available products. limite zero means no limit.
func (s *ProductService) List(ctx context.Context, desde, limite int) ([]models.Producto, int64, error) {
	if desde < 0 || limite < 0 {
		return nil, 0, apperror.Validation("desde and limite must not be negative")
	}
	disponible := true
	filter := repositories.ProductFilter{Disponible: &disponible}

	productos, err := s.repo.Find(ctx, filter, repositories.FindOptions{
		Sort:     []repositories.SortField{{Field: "categoria"}},
		Skip:     desde,
		Limit:    limite,
		Populate: repositories.PopulateUsuario | repositories.PopulateCategoria,
	})
	if err != nil {
		return nil, 0, apperror.Store(err, "list productos")
	}
	cantidad, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, apperror.Store(err, "count productos")
	}
	return productos, cantidad, nil
}

// Get returns a product with its user and category populated.
func (s *ProductService) Get(ctx context.Context, id string) (*models.Producto, error) {
	producto, err := s.repo.GetByID(ctx, id, repositories.PopulateUsuario|repositories.PopulateCategoria)
	if err != nil {
		return nil, s.translate(err, id, "get producto")
	}
	return producto, nil
}

// Search matches termino as a case-insensitive pattern against nombre,
// regardless of availability.
func (s *ProductService) Search(ctx context.Context, termino string) ([]models.Producto, error) {
	if termino == "" {
		return nil, apperror.Validation("termino is required").With("field", "termino")
	}
	if _, err := regexp.Compile(termino); err != nil {
		return nil, apperror.Validation("termino is not a valid pattern").With("field", "termino")
	}
	productos, err := s.repo.Find(ctx, repositories.ProductFilter{NombreRegex: termino}, repositories.FindOptions{
		Sort:     []repositories.SortField{{Field: "nombre"}},
		Populate: repositories.PopulateCategoria,
	})
	if err != nil {
		return nil, apperror.Store(err, "search productos")
	}
	return productos, nil
}

// Create stores an available product owned by the caller. The category is
// verified before the product is written.
func (s *ProductService) Create(ctx context.Context, caller models.Identity, in ProductInput) (*models.Producto, error) {
	if err := s.requireCategory(ctx, in.CategoriaID); err != nil {
		return nil, err
	}
	producto := &models.Producto{
		Nombre:      in.Nombre,
		PrecioUni:   in.PrecioUni,
		Descripcion: in.Descripcion,
		Disponible:  true,
		UsuarioID:   caller.ID,
		CategoriaID: in.CategoriaID,
	}
	if err := s.repo.Create(ctx, producto); err != nil {
		return nil, s.translate(err, "", "create producto")
	}
	s.events.notify(EventProductoCreado, caller.ID, producto)
	return producto, nil
}

// Update replaces the editable fields of a product. Availability is only
// touched when the input carries it, and may only be restored here.
func (s *ProductService) Update(ctx context.Context, caller models.Identity, id string, in ProductInput) (*models.Producto, error) {
	if in.Disponible != nil && !*in.Disponible {
		return nil, apperror.Validation("disponible can only be cleared with DELETE").With("field", "disponible")
	}
	if err := s.requireCategory(ctx, in.CategoriaID); err != nil {
		return nil, err
	}
	producto, err := s.repo.Update(ctx, id, models.ProductoPatch{
		Nombre:      in.Nombre,
		PrecioUni:   in.PrecioUni,
		Descripcion: in.Descripcion,
		UsuarioID:   caller.ID,
		CategoriaID: in.CategoriaID,
		Disponible:  in.Disponible,
	})
	if err != nil {
		return nil, s.translate(err, id, "update producto")
	}
	s.events.notify(EventProductoActualizado, caller.ID, producto)
	return producto, nil
}

// Delete marks a product unavailable. Repeating it is harmless.
func (s *ProductService) Delete(ctx context.Context, caller models.Identity, id string) (*models.Producto, error) {
	producto, err := s.repo.SetDisponible(ctx, id, false)
	if err != nil {
		return nil, s.translate(err, id, "delete producto")
	}
	s.events.notify(EventProductoBorrado, caller.ID, producto)
	return producto, nil
}
