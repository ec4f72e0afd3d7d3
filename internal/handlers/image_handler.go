package handlers

import (
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"cafe/internal/apperror"
	"cafe/pkg/logger"
)

var imageTypes = map[string]bool{"usuarios": true, "productos": true}

// ImageHandler serves previously uploaded images.
type ImageHandler struct {
	dir string
	log *logger.Logger
}

// NewImageHandler serves files below dir/<tipo>/.
func NewImageHandler(dir string, log *logger.Logger) *ImageHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ImageHandler{dir: dir, log: log}
}

// RegisterRoutes registers GET /imagen/:tipo/:img behind the query-token gate.
func (h *ImageHandler) RegisterRoutes(router fiber.Router, verificaTokenImg fiber.Handler) {
	router.Get("/imagen/:tipo/:img", verificaTokenImg, h.HandleGetImagen)
}

// HandleGetImagen streams the requested image file.
func (h *ImageHandler) HandleGetImagen(c *fiber.Ctx) error {
	tipo := c.Params("tipo")
	if !imageTypes[tipo] {
		return respondError(c, h.log, apperror.Validation("tipo must be usuarios or productos").With("tipo", tipo))
	}
	img := filepath.Base(c.Params("img"))
	path := filepath.Join(h.dir, tipo, img)

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return respondError(c, h.log, apperror.Newf(apperror.KindNotFound, "image %s not found", img))
	}
	return c.SendFile(path)
}
