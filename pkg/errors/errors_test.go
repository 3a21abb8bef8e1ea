package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCapturesTypeAndStack(t *testing.T) {
	err := New(ErrorTypeConnection, "failed to connect")
	assert.Equal(t, "connection: failed to connect", err.Error())
	assert.NotEmpty(t, err.Stack)
	assert.True(t, IsType(err, ErrorTypeConnection))
	assert.False(t, IsType(err, ErrorTypeQuery))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("broken pipe")
	err := Wrap(cause, ErrorTypeQuery, "query failed")

	require.NotNil(t, err)
	assert.Equal(t, "query: query failed: broken pipe", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeInternal, "ignored"))
}

func TestWrapPreservesInnerStack(t *testing.T) {
	inner := New(ErrorTypeTimeout, "deadline exceeded")
	outer := Wrap(inner, ErrorTypeQuery, "query failed")

	assert.Equal(t, inner.Stack, outer.Stack)
	assert.True(t, IsType(outer, ErrorTypeQuery))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeConfig, "bad value").
		WithDetail("field", "max_inventory").
		WithDetail("value", -1)

	assert.Equal(t, "max_inventory", err.Details["field"])
	assert.Equal(t, -1, err.Details["value"])
}
