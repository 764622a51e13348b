package engine

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"webtemplate-backend/internal/apperr"
	"webtemplate-backend/internal/logger"
)

// ErrorHandler is the fiber error handler: AppErrors are rendered with
// their own status, fiber errors keep theirs, anything else is a 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if appErr, ok := apperr.As(err); ok {
		return respondError(c, appErr)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return respondError(c, apperr.New(httpCode(fe.Code), fe.Code, fe.Message))
	}

	logger.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
	return respondError(c, apperr.New("INTERNAL_ERROR", fiber.StatusInternalServerError, "Internal server error"))
}

func respondError(c *fiber.Ctx, appErr *apperr.AppError) error {
	return c.Status(appErr.Status).JSON(apperr.ErrorResponse{Error: appErr})
}

func httpCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return "INVALID_PAYLOAD"
	default:
		if status >= 500 {
			return "INTERNAL_ERROR"
		}
		return "HTTP_ERROR"
	}
}
