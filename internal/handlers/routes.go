package handlers

import (
	"github.com/gofiber/fiber/v2"

	"cafe/internal/middleware"
	"cafe/internal/services"
	"cafe/pkg/logger"
)

// Dependencies are the collaborators the HTTP surface is built from.
type Dependencies struct {
	Categorias *services.CategoryService
	Productos  *services.ProductService
	Decoder    middleware.TokenDecoder
	UploadsDir string
	Log        *logger.Logger
}

// Register mounts every resource route on router.
func Register(router fiber.Router, deps Dependencies) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	gateLog := log.Named("auth")
	verificaToken := middleware.VerificaToken(deps.Decoder, gateLog)
	verificaTokenImg := middleware.VerificaTokenImg(deps.Decoder, gateLog)

	NewCategoryHandler(deps.Categorias, log.Named("categorias")).RegisterRoutes(router, verificaToken)
	NewProductHandler(deps.Productos, log.Named("productos")).RegisterRoutes(router, verificaToken)
	NewImageHandler(deps.UploadsDir, log.Named("imagenes")).RegisterRoutes(router, verificaTokenImg)
}

// FiberConfig is the fiber configuration the routes expect: failure
// envelopes for every error and percent-decoded path parameters.
func FiberConfig(appName string, log *logger.Logger) fiber.Config {
	return fiber.Config{
		AppName:      appName,
		ErrorHandler: ErrorHandler(log),
		UnescapePath: true,
	}
}
