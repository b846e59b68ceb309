package handlers

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/005ishan/backend-jerseypasal/internal/apperrors"
)

// Every endpoint answers with the same envelope:
// {success, message?, data?, token?}.

func respondOK(c *fiber.Ctx, status int, message string, data interface{}) error {
	body := fiber.Map{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}

func respondError(c *fiber.Ctx, err error) error {
	appErr := apperrors.From(err)
	return c.Status(appErr.StatusCode()).JSON(fiber.Map{
		"success": false,
		"message": appErr.Message,
	})
}

// respondValidation collects field-level messages from a validator error
// into a single 400 response.
func respondValidation(c *fiber.Ctx, err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return respondError(c, apperrors.Validation("Validation failed"))
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}
