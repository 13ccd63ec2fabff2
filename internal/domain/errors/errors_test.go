package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifiers(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		notFound   bool
		validation bool
		conflict   bool
		database   bool
	}{
		{name: "coffee not found", err: ErrCoffeeNotFound, notFound: true},
		{name: "sold not found", err: ErrCoffeeSoldNotFound, notFound: true},
		{name: "wrapped not found", err: fmt.Errorf("find: %w", ErrCoffeeNotFound), notFound: true},
		{name: "invalid input", err: fmt.Errorf("%w: id", ErrInvalidInput), validation: true},
		{name: "conflict", err: ErrConflict, conflict: true},
		{name: "database", err: fmt.Errorf("%w: timeout", ErrDatabaseError), database: true},
		{name: "unrelated", err: fmt.Errorf("boom")},
		{name: "nil", err: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, IsNotFoundError(tt.err))
			assert.Equal(t, tt.validation, IsValidationError(tt.err))
			assert.Equal(t, tt.conflict, IsConflictError(tt.err))
			assert.Equal(t, tt.database, IsDatabaseError(tt.err))
		})
	}
}
