package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cafe/internal/auth"
	"cafe/internal/database"
	"cafe/internal/models"
	"cafe/pkg/config"
	"cafe/pkg/logger"
)

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(routingKey string, v any) error {
	args := m.Called(routingKey, v)
	return args.Error(0)
}

func setupTestApp(t *testing.T, events *MockPublisher) (*config.Config, *auth.TokenCodec, *fiber.App) {
	t.Helper()

	v := viper.New()
	v.Set("APP_ENV", "test")
	v.Set("APP_NAME", "cafe")
	v.Set("APP_PORT", "8081")
	v.Set("SEED", "test_jwt_secret")
	v.Set("CADUCIDAD_TOKEN", "1h")
	v.Set("STORE_DRIVER", config.DriverSQLite)
	v.Set("DATABASE_DSN", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	store, err := database.Open(context.Background(), cfg.Store)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	codec, err := auth.NewTokenCodec(cfg.Token.Seed)
	require.NoError(t, err)

	return cfg, codec, newApp(cfg, store, codec, events, logger.Nop())
}

func TestHealthCheck(t *testing.T) {
	_, _, app := setupTestApp(t, new(MockPublisher))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"healthy"`)
}

func TestUnauthenticatedAccess(t *testing.T) {
	_, _, app := setupTestApp(t, new(MockPublisher))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/productos", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "Expected Unauthorized for /productos without token")
}

func TestCategoryCreatePublishesEvent(t *testing.T) {
	events := new(MockPublisher)
	events.On("PublishJSON", "categoria.creada", mock.Anything).Return(nil).Once()
	cfg, codec, app := setupTestApp(t, events)

	admin := models.Identity{ID: "u-1", Nombre: "Admin", Email: "admin@cafe.test", Role: models.AdminRole}
	tok, err := codec.Encode(admin, cfg.Token.Caducidad)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/categoria", strings.NewReader(`{"descripcion":"Bebidas"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("token", tok)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	events.AssertExpectations(t)
}
