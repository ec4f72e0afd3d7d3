package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"cafe/internal/middleware"
	"cafe/internal/models"
	"cafe/internal/services"
	"cafe/pkg/logger"
)

// CategoryHandler handles HTTP requests for categories.
type CategoryHandler struct {
	service  *services.CategoryService
	validate *validator.Validate
	log      *logger.Logger
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(service *services.CategoryService, log *logger.Logger) *CategoryHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &CategoryHandler{
		service:  service,
		validate: newValidator(),
		log:      log,
	}
}

// RegisterRoutes registers the category routes. Reads need a token, writes
// additionally need ADMIN_ROLE.
func (h *CategoryHandler) RegisterRoutes(router fiber.Router, verificaToken fiber.Handler) {
	admin := middleware.VerificaAdminRole()

	router.Get("/categorias", verificaToken, h.HandleGetCategorias)
	router.Get("/categoria/:id", verificaToken, h.HandleGetCategoria)
	router.Post("/categoria", verificaToken, admin, h.HandleCreateCategoria)
	router.Put("/categoria/:id", verificaToken, admin, h.HandleUpdateCategoria)
	router.Delete("/categoria/:id", verificaToken, admin, h.HandleDeleteCategoria)
}

// HandleGetCategorias lists every category with the total count.
func (h *CategoryHandler) HandleGetCategorias(c *fiber.Ctx) error {
	categorias, cuantos, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"categorias": categorias, "cuantos": cuantos})
}

// HandleGetCategoria returns one category.
func (h *CategoryHandler) HandleGetCategoria(c *fiber.Ctx) error {
	categoria, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"categoria": categoria})
}

// HandleCreateCategoria creates a category owned by the caller.
func (h *CategoryHandler) HandleCreateCategoria(c *fiber.Ctx) error {
	var req categoriaRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	identity, _ := middleware.IdentityFrom(c)

	categoria, err := h.service.Create(c.UserContext(), identity, req.Descripcion)
	if err != nil {
		return respondError(c, h.log, err)
	}
	h.log.Info().Str("categoria", categoria.ID).Str("usuario", identity.ID).Msg("categoria created")
	return ok(c, fiber.Map{"categoria": categoria})
}

// HandleUpdateCategoria replaces a category's descripcion.
func (h *CategoryHandler) HandleUpdateCategoria(c *fiber.Ctx) error {
	var req categoriaRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	identity, _ := middleware.IdentityFrom(c)

	categoria, err := h.service.Update(c.UserContext(), identity, c.Params("id"), models.CategoriaPatch{Descripcion: req.Descripcion})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"categoria": categoria})
}

// HandleDeleteCategoria removes a category.
func (h *CategoryHandler) HandleDeleteCategoria(c *fiber.Ctx) error {
	identity, _ := middleware.IdentityFrom(c)

	categoria, err := h.service.Delete(c.UserContext(), identity, c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	h.log.Info().Str("categoria", categoria.ID).Str("usuario", identity.ID).Msg("categoria deleted")
	return ok(c, fiber.Map{"categoria": categoria})
}
