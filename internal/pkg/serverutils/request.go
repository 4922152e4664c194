package serverutils

import (
	"marimo-hub-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// ParseJSON decodes the request body as JSON regardless of Content-Type.
// Form and multipart bodies fail with ErrInvalidPayload.
func ParseJSON(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.App().Config().JSONDecoder(ctx.Body(), out); err != nil {
		return apperror.Wrap(apperror.ErrInvalidPayload, err)
	}
	return nil
}
