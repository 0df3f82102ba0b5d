package api

import (
	"errors"

	common_models "github.com/adevbeo/hr-management-platform/internal/common/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// Validate checks struct tags on a request body. Failures wrap ErrInvalidConfig.
func Validate(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return errors.Join(common_models.ErrInvalidConfig, err)
	}
	return nil
}

// StatusFor maps service errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, common_models.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, common_models.ErrInvalidConfig):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func Error(c *fiber.Ctx, err error) error {
	return c.Status(StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
}
