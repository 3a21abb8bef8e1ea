package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/reuse/pkg/errors"
)

func TestDefaultPoolConfig(t *testing.T) {
	cfg := DefaultPoolConfig("sessions")
	assert.Equal(t, "sessions", cfg.Name)
	assert.Equal(t, DefaultMaxInventory, cfg.MaxInventory)
	assert.Equal(t, DefaultMaxToClean, cfg.MaxToClean)
	assert.NoError(t, cfg.Validate())
}

func TestPoolConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     PoolConfig
		wantErr bool
	}{
		{"defaults", DefaultPoolConfig("p"), false},
		{"zero caps fall back at pool construction", PoolConfig{Name: "p"}, false},
		{"negative inventory", PoolConfig{MaxInventory: -1}, true},
		{"negative clean queue", PoolConfig{MaxToClean: -5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBenchConfigValidate(t *testing.T) {
	valid := DefaultBenchConfig()
	valid.DSN = "postgres://localhost/bench"
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*BenchConfig)
	}{
		{"missing dsn", func(c *BenchConfig) { c.DSN = "" }},
		{"missing query", func(c *BenchConfig) { c.Query = "" }},
		{"zero iterations", func(c *BenchConfig) { c.Iterations = 0 }},
		{"zero runs", func(c *BenchConfig) { c.Runs = 0 }},
		{"zero workers", func(c *BenchConfig) { c.Workers = 0 }},
		{"bad pool config", func(c *BenchConfig) { c.Pool.MaxInventory = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadSubstitutesEnvVars(t *testing.T) {
	t.Setenv("BENCH_DSN", "postgres://cfg-test/db")

	path := filepath.Join(t.TempDir(), "bench.yaml")
	content := `
dsn: ${BENCH_DSN}
query: SELECT 1
iterations: 50
runs: 2
workers: 4
pool:
  name: loaded
  max_inventory: 16
  max_to_clean: 8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	var cfg BenchConfig
	require.NoError(t, Load(path, &cfg))

	assert.Equal(t, "postgres://cfg-test/db", cfg.DSN)
	assert.Equal(t, "SELECT 1", cfg.Query)
	assert.Equal(t, 50, cfg.Iterations)
	assert.Equal(t, 2, cfg.Runs)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "loaded", cfg.Pool.Name)
	assert.Equal(t, 16, cfg.Pool.MaxInventory)
	assert.Equal(t, 8, cfg.Pool.MaxToClean)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.yaml")
	cfg := DefaultPoolConfig("round_trip")
	cfg.MaxInventory = 42

	require.NoError(t, Save(path, &cfg))

	var loaded PoolConfig
	require.NoError(t, Load(path, &loaded))
	assert.Equal(t, cfg, loaded)
}
