package handlers

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"cafe/internal/apperror"
	"cafe/pkg/logger"
)

// ok writes a success envelope: {"ok": true, ...fields}.
func ok(c *fiber.Ctx, fields fiber.Map) error {
	fields["ok"] = true
	return c.Status(fiber.StatusOK).JSON(fields)
}

// respondError writes the failure envelope for err. Store failures are
// logged with their cause; clients only get the generic message.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	appErr := apperror.As(err)
	if appErr.Kind == apperror.KindStore {
		log.Error().Err(appErr.Unwrap()).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("store failure")
	}
	return c.Status(appErr.Status()).JSON(fiber.Map{
		"ok":  false,
		"err": appErr.Body(),
	})
}

// ErrorHandler renders errors that escape the handlers, including fiber's
// own (unknown route, method not allowed) and recovered panics.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			kind := apperror.KindNotFound
			if fe.Code >= fiber.StatusInternalServerError {
				kind = apperror.KindStore
			}
			return c.Status(fe.Code).JSON(fiber.Map{
				"ok":  false,
				"err": apperror.New(kind, fe.Message).Body(),
			})
		}
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return respondError(c, log, appErr)
		}
		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"ok":  false,
			"err": apperror.New(apperror.KindStore, "internal server error").Body(),
		})
	}
}

// parseBody decodes and validates the request body into req.
func parseBody(c *fiber.Ctx, validate *validator.Validate, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperror.Validation("Invalid request body").With("error", err.Error())
	}
	if err := validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return apperror.Validation("Validation failed")
		}
		errorMessages := make(map[string]string, len(validationErrors))
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return apperror.Validation("Validation failed").With("errors", errorMessages)
	}
	return nil
}
