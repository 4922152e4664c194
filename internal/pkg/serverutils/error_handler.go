package serverutils

import (
	"errors"

	"marimo-hub-be/internal/pkg/apperror"
	"marimo-hub-be/internal/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns any error returned down the chain into a
// JSON error body. It must be registered before the routes.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return WriteError(ctx, log, err)
	}
}

// ErrorHandler is the fiber.Config hook for errors that bypass the
// middleware (body limit, panics recovered by the recover middleware).
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		return WriteError(ctx, log, err)
	}
}

func WriteError(ctx *fiber.Ctx, log logger.ILogger, err error) error {
	code, message := classify(err)

	details := map[string]interface{}{
		"method": ctx.Method(),
		"path":   ctx.Path(),
		"status": code,
		"error":  err,
	}
	if code >= fiber.StatusInternalServerError {
		log.Error("HTTP", message, details)
	} else {
		log.Debug("HTTP", message, details)
	}

	return ctx.Status(code).JSON(ErrorResponse(code, message))
}

func classify(err error) (int, string) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr.Code, appErr.Error()
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiberErr.Message
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return fiber.StatusBadRequest, validationMessage(validationErrs)
	}

	// Internal tool: surface the message instead of a generic one.
	return fiber.StatusInternalServerError, err.Error()
}
