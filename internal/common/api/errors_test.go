package api

import (
	"errors"
	"fmt"
	"testing"

	common_models "github.com/adevbeo/hr-management-platform/internal/common/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("run abc: %w", common_models.ErrNotFound), fiber.StatusNotFound},
		{fmt.Errorf("%w: unknown field", common_models.ErrInvalidConfig), fiber.StatusBadRequest},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err))
	}
}

func TestValidateWrapsInvalidConfig(t *testing.T) {
	type body struct {
		Name string `validate:"required"`
	}
	err := Validate(body{})
	assert.ErrorIs(t, err, common_models.ErrInvalidConfig)
	assert.NoError(t, Validate(body{Name: "x"}))
}
