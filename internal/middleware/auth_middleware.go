package middleware

import (
	"github.com/gofiber/fiber/v2"

	"cafe/internal/apperror"
	"cafe/internal/auth"
	"cafe/internal/models"
	"cafe/pkg/logger"
)

// identityKey is the c.Locals key the authenticated identity is stored under.
const identityKey = "usuario"

// TokenDecoder verifies a token and returns the identity it carries.
// *auth.TokenCodec satisfies it.
type TokenDecoder interface {
	Decode(token string) (models.Identity, error)
}

// VerificaToken authenticates requests carrying the token in the "token" header.
func VerificaToken(decoder TokenDecoder, log *logger.Logger) fiber.Handler {
	return authGate(decoder, log, func(c *fiber.Ctx) string { return c.Get("token") })
}

// VerificaTokenImg authenticates requests carrying the token in the "token"
// query parameter, for resources loaded directly by browsers.
func VerificaTokenImg(decoder TokenDecoder, log *logger.Logger) fiber.Handler {
	return authGate(decoder, log, func(c *fiber.Ctx) string { return c.Query("token") })
}

func authGate(decoder TokenDecoder, log *logger.Logger, extract func(*fiber.Ctx) string) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		identity, err := decoder.Decode(extract(c))
		if err != nil {
			reason := auth.KindOf(err)
			log.Debug().Err(err).Str("reason", string(reason)).Str("path", c.Path()).Msg("token rejected")
			return deny(c, apperror.New(apperror.KindAuthTokenInvalid, "Invalid token").With("reason", reason))
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// IdentityFrom returns the identity attached by VerificaToken.
func IdentityFrom(c *fiber.Ctx) (models.Identity, bool) {
	identity, ok := c.Locals(identityKey).(models.Identity)
	return identity, ok
}

// RequireRole lets the request through only when the authenticated identity
// has the required role. It must be mounted after an auth gate.
func RequireRole(required models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFrom(c)
		if !ok {
			panic("middleware: RequireRole mounted without an auth gate")
		}
		if identity.Role != required {
			return deny(c, apperror.Newf(apperror.KindInsufficientRole, "The user is not %s", required).
				With("nombre_usuario", identity.Nombre).
				With("role", identity.Role))
		}
		return c.Next()
	}
}

// VerificaAdminRole restricts a route to ADMIN_ROLE identities.
func VerificaAdminRole() fiber.Handler {
	return RequireRole(models.AdminRole)
}

func deny(c *fiber.Ctx, e *apperror.Error) error {
	return c.Status(e.Status()).JSON(fiber.Map{
		"ok":  false,
		"err": e.Body(),
	})
}
