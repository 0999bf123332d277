package circuitbreaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreaker_PassesThrough(t *testing.T) {
	b := New("test", DefaultSettings())

	require.NoError(t, b.Execute(func() error { return nil }))
	assert.ErrorIs(t, b.Execute(func() error { return assert.AnError }), assert.AnError)
	assert.Equal(t, "closed", b.State())
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b := New("test", Settings{
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             time.Minute,
		ConsecutiveFailures: 2,
	})

	_ = b.Execute(func() error { return assert.AnError })
	_ = b.Execute(func() error { return assert.AnError })

	called := false
	err := b.Execute(func() error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
	assert.Equal(t, "open", b.State())
}
