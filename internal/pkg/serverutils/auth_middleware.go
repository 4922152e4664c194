package serverutils

import (
	"crypto/subtle"
	"strings"

	"marimo-hub-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// BearerTokenMiddleware requires "Authorization: Bearer <token>" to match
// token exactly. An empty token disables the check.
func BearerTokenMiddleware(token string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if token == "" {
			return ctx.Next()
		}

		authHeader := ctx.Get(fiber.HeaderAuthorization)
		provided, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			return apperror.ErrUnauthorized
		}
		return ctx.Next()
	}
}
