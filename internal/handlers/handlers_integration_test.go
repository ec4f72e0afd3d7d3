package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafe/internal/auth"
	"cafe/internal/database"
	"cafe/internal/handlers"
	"cafe/internal/models"
	"cafe/internal/repositories"
	"cafe/internal/services"
	"cafe/pkg/config"
	"cafe/pkg/logger"
)

const testSecret = "test_jwt_secret"

type testEnv struct {
	app        *fiber.App
	store      *database.Store
	adminToken string
	userToken  string
	uploads    string
}

// setupApp builds the full HTTP surface over a private in-memory SQLite database.
func setupApp(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenGORM(config.StoreConfig{
		Driver: config.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	store := database.NewGORMStore(db)
	t.Cleanup(func() { _ = store.Close(ctx) })

	codec, err := auth.NewTokenCodec(testSecret)
	require.NoError(t, err)

	admin := &models.Usuario{Nombre: "Admin", Email: "admin@cafe.test", Password: "hash", Role: models.AdminRole, Estado: true}
	user := &models.Usuario{Nombre: "Ana", Email: "ana@cafe.test", Password: "hash", Role: models.UserRole, Estado: true}
	require.NoError(t, store.Usuarios.Create(ctx, admin))
	require.NoError(t, store.Usuarios.Create(ctx, user))

	adminToken, err := codec.Encode(models.IdentityOf(admin), time.Hour)
	require.NoError(t, err)
	userToken, err := codec.Encode(models.IdentityOf(user), time.Hour)
	require.NoError(t, err)

	uploads := t.TempDir()
	log := logger.Nop()

	app := fiber.New(handlers.FiberConfig("cafe-test", log))
	app.Use(recover.New())
	handlers.Register(app, handlers.Dependencies{
		Categorias: services.NewCategoryService(store.Categorias, nil, log),
		Productos:  services.NewProductService(store.Productos, store.Categorias, nil, log),
		Decoder:    codec,
		UploadsDir: uploads,
		Log:        log,
	})

	return &testEnv{app: app, store: store, adminToken: adminToken, userToken: userToken, uploads: uploads}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("token", token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func errOf(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	assert.Equal(t, false, body["ok"])
	errBody, ok := body["err"].(map[string]any)
	require.True(t, ok, "missing err object in %v", body)
	return errBody
}

func TestEndpointsWithoutToken(t *testing.T) {
	env := setupApp(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/categorias"},
		{http.MethodGet, "/categoria/abc"},
		{http.MethodPost, "/categoria"},
		{http.MethodPut, "/categoria/abc"},
		{http.MethodDelete, "/categoria/abc"},
		{http.MethodGet, "/productos"},
		{http.MethodGet, "/producto/abc"},
		{http.MethodGet, "/productos/buscar/mesa"},
		{http.MethodPost, "/producto"},
		{http.MethodPut, "/producto/abc"},
		{http.MethodDelete, "/producto/abc"},
		{http.MethodGet, "/imagen/productos/x.png"},
	}
	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			status, body := env.do(t, r.method, r.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, status)
			errBody := errOf(t, body)
			assert.Equal(t, "AuthTokenInvalid", errBody["kind"])
			assert.Equal(t, "MissingToken", errBody["reason"])
		})
	}

	status, body := env.do(t, http.MethodGet, "/categorias", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Malformed", errOf(t, body)["reason"])
}

func TestCategoryMutationsRequireAdmin(t *testing.T) {
	env := setupApp(t)

	status, body := env.do(t, http.MethodPost, "/categoria", env.userToken, map[string]string{"descripcion": "Bebidas"})
	assert.Equal(t, http.StatusUnauthorized, status)
	errBody := errOf(t, body)
	assert.Equal(t, "InsufficientRole", errBody["kind"])
	assert.Equal(t, "Ana", errBody["nombre_usuario"])
	assert.Equal(t, "USER_ROLE", errBody["role"])

	n, err := env.store.Categorias.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	status, _ = env.do(t, http.MethodGet, "/categorias", env.userToken, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestCategoryCRUD(t *testing.T) {
	env := setupApp(t)

	status, body := env.do(t, http.MethodPost, "/categoria", env.adminToken, map[string]string{"descripcion": "Bebidas"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["ok"])
	bebidas := body["categoria"].(map[string]any)
	id := bebidas["_id"].(string)
	assert.Equal(t, "Bebidas", bebidas["descripcion"])

	status, body = env.do(t, http.MethodPost, "/categoria", env.adminToken, map[string]string{"descripcion": "Bebidas"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ValidationError", errOf(t, body)["kind"])

	status, body = env.do(t, http.MethodPost, "/categoria", env.adminToken, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ValidationError", errOf(t, body)["kind"])

	status, _ = env.do(t, http.MethodPost, "/categoria", env.adminToken, map[string]string{"descripcion": "Postres"})
	require.Equal(t, http.StatusOK, status)

	status, body = env.do(t, http.MethodGet, "/categorias", env.userToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["cuantos"])
	categorias := body["categorias"].([]any)
	require.Len(t, categorias, 2)
	first := categorias[0].(map[string]any)
	assert.Equal(t, "Postres", first["descripcion"])
	usuario := first["usuario"].(map[string]any)
	assert.Equal(t, "Admin", usuario["nombre"])
	assert.Equal(t, "admin@cafe.test", usuario["email"])
	assert.NotContains(t, usuario, "password")

	status, body = env.do(t, http.MethodPut, "/categoria/"+id, env.adminToken, map[string]string{"descripcion": "Bebidas calientes"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Bebidas calientes", body["categoria"].(map[string]any)["descripcion"])

	status, body = env.do(t, http.MethodDelete, "/categoria/"+id, env.adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, id, body["categoria"].(map[string]any)["_id"])

	status, body = env.do(t, http.MethodGet, "/categoria/"+id, env.userToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	errBody := errOf(t, body)
	assert.Equal(t, "CategoryNotFound", errBody["kind"])
	assert.Contains(t, errBody["message"], id)

	status, body = env.do(t, http.MethodDelete, "/categoria/"+id, env.adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "CategoryNotFound", errOf(t, body)["kind"])
}

func createCategoria(t *testing.T, env *testEnv, descripcion string) string {
	t.Helper()
	status, body := env.do(t, http.MethodPost, "/categoria", env.adminToken, map[string]string{"descripcion": descripcion})
	require.Equal(t, http.StatusOK, status, body)
	return body["categoria"].(map[string]any)["_id"].(string)
}

func TestProductCreateValidatesCategoryBeforeWriting(t *testing.T) {
	env := setupApp(t)
	ctx := context.Background()

	status, body := env.do(t, http.MethodPost, "/producto", env.userToken, map[string]any{"nombre": "Cafe", "precioUni": 2})
	assert.Equal(t, http.StatusBadRequest, status)
	errBody := errOf(t, body)
	assert.Equal(t, "ValidationError", errBody["kind"])
	assert.Equal(t, "category value missing", errBody["message"])

	status, body = env.do(t, http.MethodPost, "/producto", env.userToken, map[string]any{"nombre": "Cafe", "precioUni": 2, "categoria": "no-existe"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "CategoryNotFound", errOf(t, body)["kind"])

	status, body = env.do(t, http.MethodPost, "/producto", env.userToken, map[string]any{"precioUni": 2, "categoria": "x"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, errOf(t, body)["errors"], "nombre")

	n, err := env.store.Productos.Count(ctx, repositories.ProductFilter{})
	require.NoError(t, err)
	assert.Zero(t, n, "rejected creates must not persist anything")
}

func TestProductLifecycle(t *testing.T) {
	env := setupApp(t)
	categoria := createCategoria(t, env, "Muebles")

	status, body := env.do(t, http.MethodPost, "/producto", env.userToken, map[string]any{
		"nombre": "Mesa Grande", "precioUni": 120.5, "descripcion": "Roble", "categoria": categoria, "disponible": false,
	})
	require.Equal(t, http.StatusOK, status, body)
	producto := body["producto"].(map[string]any)
	id := producto["_id"].(string)
	assert.Equal(t, true, producto["disponible"])
	assert.Equal(t, categoria, producto["categoria"])

	status, body = env.do(t, http.MethodGet, "/producto/"+id, env.userToken, nil)
	require.Equal(t, http.StatusOK, status)
	producto = body["producto"].(map[string]any)
	assert.Equal(t, "Muebles", producto["categoria"].(map[string]any)["descripcion"])
	assert.Equal(t, "Ana", producto["usuario"].(map[string]any)["nombre"])

	status, body = env.do(t, http.MethodPut, "/producto/"+id, env.adminToken, map[string]any{
		"nombre": "Mesa Grande XL", "precioUni": 150, "categoria": categoria,
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Mesa Grande XL", body["producto"].(map[string]any)["nombre"])

	status, body = env.do(t, http.MethodPut, "/producto/"+id, env.userToken, map[string]any{
		"nombre": "Mesa", "precioUni": 1, "categoria": categoria, "disponible": false,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ValidationError", errOf(t, body)["kind"])

	for i := 0; i < 2; i++ {
		status, body = env.do(t, http.MethodDelete, "/producto/"+id, env.userToken, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "producto borrado satisfactoriamente", body["msg"])
		assert.Equal(t, false, body["producto"].(map[string]any)["disponible"])
	}

	// soft deleted: gone from listings, still found by search and by id
	status, body = env.do(t, http.MethodGet, "/productos", env.userToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["cantidad"])
	assert.Empty(t, body["productos"])

	status, body = env.do(t, http.MethodGet, "/productos/buscar/MESA", env.userToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["productos"], 1)

	// an update without disponible leaves it deleted
	status, body = env.do(t, http.MethodPut, "/producto/"+id, env.userToken, map[string]any{
		"nombre": "Mesa Grande", "precioUni": 150, "categoria": categoria,
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["producto"].(map[string]any)["disponible"])

	status, body = env.do(t, http.MethodDelete, "/producto/no-existe", env.userToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ProductNotFound", errOf(t, body)["kind"])
}

func pageIDs(t *testing.T, body map[string]any) (ids, categorias []string) {
	t.Helper()
	productos, ok := body["productos"].([]any)
	require.True(t, ok, body)
	for _, raw := range productos {
		p := raw.(map[string]any)
		ids = append(ids, p["_id"].(string))
		categorias = append(categorias, p["categoria"].(map[string]any)["_id"].(string))
	}
	return ids, categorias
}

func TestProductPaginationAndSearch(t *testing.T) {
	env := setupApp(t)
	categorias := []string{
		createCategoria(t, env, "Varios"),
		createCategoria(t, env, "Bebidas"),
		createCategoria(t, env, "Postres"),
	}

	var ids []string
	for i := 0; i < 15; i++ {
		status, body := env.do(t, http.MethodPost, "/producto", env.userToken, map[string]any{
			"nombre": fmt.Sprintf("Producto %02d", i), "precioUni": i, "categoria": categorias[i%len(categorias)],
		})
		require.Equal(t, http.StatusOK, status, body)
		ids = append(ids, body["producto"].(map[string]any)["_id"].(string))
	}
	for _, id := range ids[12:] {
		status, _ := env.do(t, http.MethodDelete, "/producto/"+id, env.userToken, nil)
		require.Equal(t, http.StatusOK, status)
	}

	status, body := env.do(t, http.MethodGet, "/productos?desde=0&limite=100", env.userToken, nil)
	require.Equal(t, http.StatusOK, status)
	all, allCategorias := pageIDs(t, body)
	require.Len(t, all, 12)
	assert.True(t, sort.StringsAreSorted(allCategorias), "listing is ordered by categoria")

	status, body = env.do(t, http.MethodGet, "/productos?desde=5&limite=5", env.userToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(12), body["cantidad"])
	page, pageCategorias := pageIDs(t, body)
	assert.Equal(t, all[5:10], page)
	assert.True(t, sort.StringsAreSorted(pageCategorias), "page is ordered by categoria")
	assert.NotEqual(t, pageCategorias[0], pageCategorias[len(pageCategorias)-1], "the page crosses a category boundary")

	status, body = env.do(t, http.MethodGet, "/productos", env.userToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["productos"], 5, "limite defaults to 5")

	status, body = env.do(t, http.MethodGet, "/productos?desde=abc", env.userToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ValidationError", errOf(t, body)["kind"])

	status, body = env.do(t, http.MethodGet, "/productos/buscar/producto%201", env.userToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["productos"], 5, "Producto 10..14 match regardless of availability")

	status, body = env.do(t, http.MethodGet, "/productos/buscar/%28", env.userToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ValidationError", errOf(t, body)["kind"])
}

func TestImageGate(t *testing.T) {
	env := setupApp(t)
	require.NoError(t, os.MkdirAll(filepath.Join(env.uploads, "productos"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(env.uploads, "productos", "cafe.png"), []byte("png-bytes"), 0o644))

	req := httptest.NewRequest(http.MethodGet, "/imagen/productos/cafe.png?token="+env.userToken, nil)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(raw))

	status, body := env.do(t, http.MethodGet, "/imagen/productos/otra.png?token="+env.userToken, "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "NotFound", errOf(t, body)["kind"])

	status, body = env.do(t, http.MethodGet, "/imagen/facturas/cafe.png?token="+env.userToken, "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ValidationError", errOf(t, body)["kind"])
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	env := setupApp(t)

	status, body := env.do(t, http.MethodGet, "/nada", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NotFound", errOf(t, body)["kind"])
}
