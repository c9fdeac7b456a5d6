package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("role %q not found", "editor")))
	assert.Equal(t, KindForbidden, KindOf(Forbidden("system role")))
	assert.Equal(t, Kind(0), KindOf(errors.New("connection reset")))

	// wrapped business errors keep their kind
	wrapped := fmt.Errorf("change user role: %w", Forbidden("insufficient hierarchy level"))
	assert.True(t, IsForbidden(wrapped))
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validation("bad key"), fiber.StatusBadRequest},
		{Conflict("duplicate"), fiber.StatusConflict},
		{NotFound("missing"), fiber.StatusNotFound},
		{Forbidden("no"), fiber.StatusForbidden},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusCode(tt.err), tt.err.Error())
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: KindConflict, Message: "permission exists", Cause: errors.New("dup key")}
	assert.Equal(t, "permission exists: dup key", err.Error())
	assert.Equal(t, "dup key", errors.Unwrap(err).Error())
}
