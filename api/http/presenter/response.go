package presenter

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the error body shared by every endpoint.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Details   string `json:"details,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, ErrorResponse{Error: message})
}

// ErrorDetails keeps the short error label stable and puts the cause into details.
func ErrorDetails(c *fiber.Ctx, status int, message, details string) error {
	return JSON(c, status, ErrorResponse{Error: message, Details: details})
}

// Timestamp formats t the way every response body carries it.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
