package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", Validation("bad %s", "id"), http.StatusBadRequest},
		{"unauthorized", Unauthorized("no token"), http.StatusUnauthorized},
		{"forbidden", Forbidden("wrong facility"), http.StatusForbidden},
		{"not found", NotFound("missing"), http.StatusNotFound},
		{"conflict", Conflict("duplicate"), http.StatusConflict},
		{"internal", Internal(errors.New("boom"), "failed"), http.StatusInternalServerError},
		{"untyped", errors.New("plain"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("outer: %w", NotFound("inner")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusOf(tt.err))
		})
	}
}

func TestPublicMessage_HidesInternalDetails(t *testing.T) {
	err := Internal(errors.New("connection refused to 10.0.0.3"), "Failed to create facility")

	assert.Equal(t, "Internal server error", PublicMessage(err))
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, "Checklist not found", PublicMessage(NotFound("Checklist not found")))
}

func TestIs(t *testing.T) {
	assert.True(t, Is(Conflict("x"), KindConflict))
	assert.False(t, Is(nil, KindConflict))
	assert.False(t, Is(Validation("x"), KindConflict))
}
