package api

import (
	"github.com/gofiber/fiber/v2"
)

// Error codes used in the unified error envelope.
const (
	ErrCodeBadRequest  = "BAD_REQUEST"
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeUnavailable = "STORE_UNAVAILABLE"
	ErrCodeInternal    = "INTERNAL_ERROR"
)

// RespondSuccess sends a successful response with data.
func RespondSuccess(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// RespondMessage sends a successful response with a message only.
func RespondMessage(c *fiber.Ctx, message string) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}

// RespondError sends an error response with a custom status code.
func RespondError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// RespondNotFound sends a 404 Not Found error.
func RespondNotFound(c *fiber.Ctx, message string) error {
	return RespondError(c, fiber.StatusNotFound, ErrCodeNotFound, message)
}

// RespondStoreUnavailable sends a 503 for catalog store failures.
func RespondStoreUnavailable(c *fiber.Ctx, message string) error {
	return RespondError(c, fiber.StatusServiceUnavailable, ErrCodeUnavailable, message)
}

// RespondInternalError sends a 500 Internal Server Error.
func RespondInternalError(c *fiber.Ctx, message string) error {
	return RespondError(c, fiber.StatusInternalServerError, ErrCodeInternal, message)
}
