package reuse_test

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ajitpratap0/reuse/pkg/config"
	"github.com/ajitpratap0/reuse/pkg/reuse"
)

// scratchBuffer is a reusable scratch area keyed by its originating source.
type scratchBuffer struct {
	source string
	data   []byte
}

func (b *scratchBuffer) Key() string             { return b.source }
func (b *scratchBuffer) ResetInBackground() bool { return false }

func (b *scratchBuffer) Reset() error {
	b.data = b.data[:0]
	return nil
}

// Example demonstrates the checkout/release round trip: the second checkout
// for the same key reuses the instance released by the first.
func Example() {
	pool := reuse.NewPool(
		func(key string) (*scratchBuffer, error) {
			return &scratchBuffer{source: key, data: make([]byte, 0, 1024)}, nil
		},
		config.DefaultPoolConfig("buffers"),
		zap.NewNop(),
	)
	defer pool.Close()

	lease, err := pool.Checkout("ingest")
	if err != nil {
		panic(err)
	}
	buf := lease.Value()
	buf.data = append(buf.data, "payload"...)
	fmt.Printf("in use: %d bytes\n", len(buf.data))
	lease.Release()

	// The released instance comes back reset.
	lease, err = pool.Checkout("ingest")
	if err != nil {
		panic(err)
	}
	defer lease.Release()
	fmt.Printf("recycled: %d bytes, same instance: %v\n",
		len(lease.Value().data), lease.Value() == buf)

	// Output:
	// in use: 7 bytes
	// recycled: 0 bytes, same instance: true
}
