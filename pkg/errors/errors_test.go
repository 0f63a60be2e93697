package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorWrapping(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("Failed to persist booking", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "INTERNAL_ERROR")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestIsConflict(t *testing.T) {
	assert.True(t, IsConflict(Conflict("slot unavailable")))
	assert.True(t, IsConflict(fmt.Errorf("reserve: %w", Conflict("concurrent modification"))))
	assert.False(t, IsConflict(NotFound("Booking")))
	assert.False(t, IsConflict(errors.New("plain")))
	assert.False(t, IsConflict(nil))
}

func TestAsAppErrorCollapsesUnknown(t *testing.T) {
	appErr := AsAppError(errors.New("driver: bad connection"))
	assert.Equal(t, CodeInternal, appErr.Code)
	assert.Equal(t, "An unexpected error occurred", appErr.Message)

	conflict := Conflict("holiday")
	assert.Same(t, conflict, AsAppError(conflict))
}

func TestStatusCodes(t *testing.T) {
	assert.Equal(t, http.StatusConflict, Conflict("x").StatusCode())
	assert.Equal(t, http.StatusNotFound, NotFoundWithID("Booking", "abc").StatusCode())
	assert.Equal(t, http.StatusUnprocessableEntity, InsufficientBalance("x").StatusCode())
	assert.Equal(t, http.StatusBadGateway, ExternalService("payment gateway", nil).StatusCode())
}
