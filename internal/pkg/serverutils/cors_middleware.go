package serverutils

import (
	"github.com/gofiber/fiber/v2"
)

// AllowAllOriginsMiddleware sets Access-Control-Allow-Origin: * on every
// response, including requests sent without an Origin header.
func AllowAllOriginsMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		ctx.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		return ctx.Next()
	}
}
