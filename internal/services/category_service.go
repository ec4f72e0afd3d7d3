package services

import (
	"context"
	"errors"
	"strings"

	"cafe/internal/apperror"
	"cafe/internal/models"
	"cafe/internal/repositories"
	"cafe/pkg/logger"
)

// CategoryService handles business logic related to categories.
type CategoryService struct {
	repo   repositories.CategoryRepository
	events notifier
}

// NewCategoryService creates a new CategoryService. events may be nil.
func NewCategoryService(repo repositories.CategoryRepository, events EventPublisher, log *logger.Logger) *CategoryService {
	return &CategoryService{repo: repo, events: newNotifier(events, log)}
}

func categoryNotFound(id string) *apperror.Error {
	return apperror.Newf(apperror.KindCategoryNotFound, "No category exists with id=%s", id).With("id", id)
}

func (s *CategoryService) translate(err error, id, op string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return categoryNotFound(id)
	case errors.Is(err, repositories.ErrDuplicate):
		return apperror.Validation("descripcion must be unique").With("field", "descripcion")
	case errors.Is(err, repositories.ErrInvalidReference):
		return invalidUsuario()
	default:
		return apperror.Store(err, op)
	}
}

// invalidUsuario reports a caller id the store cannot reference.
func invalidUsuario() *apperror.Error {
	return apperror.Validation("usuario is not a valid id").With("field", "usuario")
}

func validDescripcion(descripcion string) (string, error) {
	descripcion = strings.TrimSpace(descripcion)
	if descripcion == "" {
		return "", apperror.Validation("descripcion is required").With("field", "descripcion")
	}
	return descripcion, nil
}

// List returns every category, descripcion descending, with the creating
// user populated, and the total count.
func (s *CategoryService) List(ctx context.Context) ([]models.Categoria, int64, error) {
	categorias, err := s.repo.Find(ctx, repositories.FindOptions{
		Sort:     []repositories.SortField{{Field: "descripcion", Desc: true}},
		Populate: repositories.PopulateUsuario,
	})
	if err != nil {
		return nil, 0, apperror.Store(err, "list categorias")
	}
	cuantos, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, apperror.Store(err, "count categorias")
	}
	return categorias, cuantos, nil
}

// Get returns a single category.
func (s *CategoryService) Get(ctx context.Context, id string) (*models.Categoria, error) {
	categoria, err := s.repo.GetByID(ctx, id, repositories.PopulateNone)
	if err != nil {
		return nil, s.translate(err, id, "get categoria")
	}
	return categoria, nil
}

// Create stores a category owned by the calling identity.
func (s *CategoryService) Create(ctx context.Context, caller models.Identity, descripcion string) (*models.Categoria, error) {
	descripcion, err := validDescripcion(descripcion)
	if err != nil {
		return nil, err
	}
	categoria := &models.Categoria{Descripcion: descripcion, UsuarioID: caller.ID}
	if err := s.repo.Create(ctx, categoria); err != nil {
		return nil, s.translate(err, "", "create categoria")
	}
	s.events.notify(EventCategoriaCreada, caller.ID, categoria)
	return categoria, nil
}

// Update replaces the descripcion of a category.
func (s *CategoryService) Update(ctx context.Context, caller models.Identity, id string, patch models.CategoriaPatch) (*models.Categoria, error) {
	descripcion, err := validDescripcion(patch.Descripcion)
	if err != nil {
		return nil, err
	}
	categoria, err := s.repo.Update(ctx, id, models.CategoriaPatch{Descripcion: descripcion})
	if err != nil {
		return nil, s.translate(err, id, "update categoria")
	}
	s.events.notify(EventCategoriaActualizada, caller.ID, categoria)
	return categoria, nil
}

// Delete removes a category and returns it.
func (s *CategoryService) Delete(ctx context.Context, caller models.Identity, id string) (*models.Categoria, error) {
	categoria, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "delete categoria")
	}
	s.events.notify(EventCategoriaBorrada, caller.ID, categoria)
	return categoria, nil
}
