package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/reuse/pkg/errors"
)

func TestOpenRejectsMalformedDSN(t *testing.T) {
	_, err := Open(context.Background(), "=malformed")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConnection))
}

func TestFactoryUsesKeyAsDSN(t *testing.T) {
	factory := Factory(context.Background())

	_, err := factory("=malformed")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConnection))

	var e *errors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "=malformed", e.Details["dsn"])
}
