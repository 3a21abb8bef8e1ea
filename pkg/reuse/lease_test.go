package reuse

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaseReleaseIsExactlyOnce(t *testing.T) {
	var c counters
	p := newTestPool(t, 10, 10, newTestFactory(false, &c))

	lease, err := p.Checkout("x")
	require.NoError(t, err)

	lease.Release()
	lease.Release()
	lease.Release()

	assert.Equal(t, 1, p.Size())
	assert.Equal(t, int64(1), atomic.LoadInt64(&c.resets))
}

func TestLeaseValueAfterReleaseIsZero(t *testing.T) {
	var c counters
	p := newTestPool(t, 10, 10, newTestFactory(false, &c))

	lease, err := p.Checkout("x")
	require.NoError(t, err)
	require.NotNil(t, lease.Value())

	lease.Release()
	assert.Nil(t, lease.Value())
}

// Move transfers ownership without a Put/Get round trip: no reset runs and
// the instance never touches a bucket in between.
func TestLeaseMoveTransfersOwnership(t *testing.T) {
	var c counters
	p := newTestPool(t, 10, 10, newTestFactory(false, &c))

	lease, err := p.Checkout("x")
	require.NoError(t, err)
	r := lease.Value()
	r.process()

	moved := lease.Move()
	assert.Nil(t, lease.Value())
	assert.Same(t, r, moved.Value())
	assert.Equal(t, "914", moved.Value().data, "move must not reset the instance")
	assert.Equal(t, 0, p.Size())

	// Releasing the source lease after a move is a no-op.
	lease.Release()
	assert.Equal(t, 0, p.Size())

	moved.Release()
	assert.Equal(t, 1, p.Size())
	assert.Equal(t, int64(1), atomic.LoadInt64(&c.resets))
}

func TestLeaseMoveAfterReleaseYieldsEmptyLease(t *testing.T) {
	var c counters
	p := newTestPool(t, 10, 10, newTestFactory(false, &c))

	lease, err := p.Checkout("x")
	require.NoError(t, err)
	lease.Release()

	moved := lease.Move()
	assert.Nil(t, moved.Value())
	moved.Release()
	assert.Equal(t, 1, p.Size())
}
