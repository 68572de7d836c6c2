package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches outer code", func(t *testing.T) {
		err := New(CodeInvalidTransition, "shipment is not in transit")
		assert.True(t, HasCode(err, CodeInvalidTransition))
		assert.False(t, HasCode(err, CodeNotFound))
	})

	t.Run("matches inner code through wrapping", func(t *testing.T) {
		inner := New(CodeNotFound, "contract not found")
		outer := Wrap(inner, CodeInternal, "submit failed")
		assert.True(t, HasCode(outer, CodeNotFound))
		assert.True(t, HasCode(outer, CodeInternal))
	})

	t.Run("sees through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("dispatch: %w", New(CodeInvalidState, "delivered"))
		assert.True(t, HasCode(err, CodeInvalidState))
	})

	t.Run("uncoded error has no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.False(t, HasCode(nil, CodeInternal))
	})
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodePreconditionFailed, CodeOf(New(CodePreconditionFailed, "not approved")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestUnwrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, CodeInternal, "apply change set")
	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
	assert.True(t, Is(err, CodeInternal))
}
