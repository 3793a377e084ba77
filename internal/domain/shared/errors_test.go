package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	err := NewDomainError("NOT_FOUND", "Simulation 7 not found")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(fmt.Errorf("load: %w", err), ErrNotFound))
	assert.False(t, errors.Is(err, ErrInvalidState))
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"generic not found", ErrNotFound, true},
		{"entity not found", NewDomainError("PRODUCT_NOT_FOUND", "Product not found"), true},
		{"wrapped", fmt.Errorf("lookup: %w", NewDomainError("SIMULATION_NOT_FOUND", "x")), true},
		{"other domain code", ErrConcurrencyConflict, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNotFound(tt.err))
		})
	}
}
