package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("matches outermost code", func(t *testing.T) {
		inner := New(CodeInvariantViolation, "order must be positive")
		outer := Wrap(inner, CodeValidation, "invalid section")

		assert.True(t, HasCode(outer, CodeValidation))
		assert.False(t, HasCode(outer, CodeInvariantViolation))
	})

	t.Run("sees through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("load: %w", New(CodeNotFound, "section not found"))
		assert.True(t, HasCode(err, CodeNotFound))
		assert.Equal(t, "section not found", MessageOf(err))
	})

	t.Run("plain errors have no code", func(t *testing.T) {
		err := errors.New("boom")
		assert.False(t, HasCode(err, CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(err))
		assert.False(t, HasCode(nil, CodeInternal))
	})
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, CodeInternal, "failed to load form")

	assert.Equal(t, "failed to load form: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
}
