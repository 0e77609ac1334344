package fsterrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodecError, "should not happen"))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(cause, WriteError, "flush failed")

	require.Error(t, err)
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, cause, err.Unwrap())
}

func TestIsMatchesKind(t *testing.T) {
	err := New(BadRange, "fromRow positive").WithDetail("fromRow", -1)

	assert.True(t, Is(err, BadRange))
	assert.False(t, Is(err, ColumnNotFound))
	assert.Equal(t, -1, err.Details["fromRow"])
}

func TestErrorStringIncludesKindAndCause(t *testing.T) {
	cause := errors.New("xxhash mismatch")
	err := Wrap(cause, DamagedHeader, "chunkset header")

	msg := err.Error()
	assert.Contains(t, msg, string(DamagedHeader))
	assert.Contains(t, msg, "chunkset header")
	assert.Contains(t, msg, "xxhash mismatch")
}
