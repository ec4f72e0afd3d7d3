package handlers

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"cafe/internal/apperror"
	"cafe/internal/middleware"
	"cafe/internal/services"
	"cafe/pkg/logger"
)

// Paging defaults of GET /productos.
const (
	defaultDesde  = 0
	defaultLimite = 5
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
	log      *logger.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, log *logger.Logger) *ProductHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ProductHandler{
		service:  service,
		validate: newValidator(),
		log:      log,
	}
}

// RegisterRoutes registers the product routes; all of them need a token.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, verificaToken fiber.Handler) {
	router.Get("/productos", verificaToken, h.HandleGetProductos)
	router.Get("/productos/buscar/:termino", verificaToken, h.HandleSearchProductos)
	router.Get("/producto/:id", verificaToken, h.HandleGetProducto)
	router.Post("/producto", verificaToken, h.HandleCreateProducto)
	router.Put("/producto/:id", verificaToken, h.HandleUpdateProducto)
	router.Delete("/producto/:id", verificaToken, h.HandleDeleteProducto)
}

func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperror.Newf(apperror.KindValidation, "%s must be a non-negative integer", key).With("field", key)
	}
	return n, nil
}

// HandleGetProductos lists a page of available products.
func (h *ProductHandler) HandleGetProductos(c *fiber.Ctx) error {
	desde, err := queryInt(c, "desde", defaultDesde)
	if err != nil {
		return respondError(c, h.log, err)
	}
	limite, err := queryInt(c, "limite", defaultLimite)
	if err != nil {
		return respondError(c, h.log, err)
	}

	productos, cantidad, err := h.service.List(c.UserContext(), desde, limite)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"productos": productos, "cantidad": cantidad})
}

// HandleGetProducto returns one product with its references populated.
func (h *ProductHandler) HandleGetProducto(c *fiber.Ctx) error {
	producto, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"producto": producto})
}

// HandleSearchProductos matches termino against product names.
func (h *ProductHandler) HandleSearchProductos(c *fiber.Ctx) error {
	productos, err := h.service.Search(c.UserContext(), c.Params("termino"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"productos": productos})
}

// HandleCreateProducto creates a product owned by the caller.
func (h *ProductHandler) HandleCreateProducto(c *fiber.Ctx) error {
	var req productoRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	identity, _ := middleware.IdentityFrom(c)

	producto, err := h.service.Create(c.UserContext(), identity, req.input())
	if err != nil {
		return respondError(c, h.log, err)
	}
	h.log.Info().Str("producto", producto.ID).Str("usuario", identity.ID).Msg("producto created")
	return ok(c, fiber.Map{"producto": producto})
}

// HandleUpdateProducto replaces a product's editable fields.
func (h *ProductHandler) HandleUpdateProducto(c *fiber.Ctx) error {
	var req productoRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	identity, _ := middleware.IdentityFrom(c)

	producto, err := h.service.Update(c.UserContext(), identity, c.Params("id"), req.input())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"producto": producto})
}

// HandleDeleteProducto marks a product unavailable.
func (h *ProductHandler) HandleDeleteProducto(c *fiber.Ctx) error {
	identity, _ := middleware.IdentityFrom(c)

	producto, err := h.service.Delete(c.UserContext(), identity, c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"producto": producto, "msg": services.MsgProductoBorrado})
}
