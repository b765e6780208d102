package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrappedCategories(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		msg    string
	}{
		{"not found", NotFoundError("consultation"), ErrNotFound, "consultation not found"},
		{"access denied", AccessDeniedError("wrong client"), ErrAccessDenied, "wrong client: access denied"},
		{"access denied bare", AccessDeniedError(""), ErrAccessDenied, "access denied"},
		{"invalid input", InvalidInputError("score", "out of range"), ErrInvalidInput, "score: out of range: invalid input"},
		{"conflict", ConflictError("rating exists"), ErrConflict, "rating exists: conflict"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, Is(tt.err, tt.target))
			assert.EqualError(t, tt.err, tt.msg)
		})
	}

	assert.False(t, Is(NotFoundError("rating"), ErrConflict))
}
