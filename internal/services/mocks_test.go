package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"cafe/internal/models"
	"cafe/internal/repositories"
)

// MockCategoryRepository is a mock implementation of repositories.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Find(ctx context.Context, opts repositories.FindOptions) ([]models.Categoria, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Categoria), args.Error(1)
}

func (m *MockCategoryRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id string, populate repositories.Populate) (*models.Categoria, error) {
	args := m.Called(ctx, id, populate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Categoria), args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, categoria *models.Categoria) error {
	args := m.Called(ctx, categoria)
	return args.Error(0)
}

func (m *MockCategoryRepository) Update(ctx context.Context, id string, patch models.CategoriaPatch) (*models.Categoria, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Categoria), args.Error(1)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id string) (*models.Categoria, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Categoria), args.Error(1)
}

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Find(ctx context.Context, filter repositories.ProductFilter, opts repositories.FindOptions) ([]models.Producto, error) {
	args := m.Called(ctx, filter, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Producto), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter repositories.ProductFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string, populate repositories.Populate) (*models.Producto, error) {
	args := m.Called(ctx, id, populate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Producto), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, producto *models.Producto) error {
	args := m.Called(ctx, producto)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, id string, patch models.ProductoPatch) (*models.Producto, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Producto), args.Error(1)
}

func (m *MockProductRepository) SetDisponible(ctx context.Context, id string, disponible bool) (*models.Producto, error) {
	args := m.Called(ctx, id, disponible)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Producto), args.Error(1)
}

// MockPublisher records published events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(routingKey string, v any) error {
	args := m.Called(routingKey, v)
	return args.Error(0)
}
