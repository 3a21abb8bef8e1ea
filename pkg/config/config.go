// Package config provides the unified configuration system for reuse.
// It defines the pool capacity settings and the benchmark harness
// configuration, with YAML loading and environment variable substitution.
//
// Example usage:
//
//	cfg := config.DefaultPoolConfig("sessions")
//	cfg.MaxInventory = 500
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"runtime"
	"time"

	"github.com/ajitpratap0/reuse/pkg/errors"
)

// Default capacity bounds. Both are soft limits: a concurrent race may
// transiently admit one instance over the cap.
const (
	// DefaultMaxInventory caps the total idle instances across all buckets.
	DefaultMaxInventory = 1000
	// DefaultMaxToClean caps the instances pending background reset.
	DefaultMaxToClean = 1000
)

// PoolConfig holds the capacity settings for one pool instance.
type PoolConfig struct {
	// Name identifies the pool in logs and metrics
	Name string `yaml:"name" json:"name"`
	// MaxInventory caps the total idle instances across all buckets;
	// check-ins beyond the cap are dropped
	MaxInventory int `yaml:"max_inventory" json:"max_inventory"`
	// MaxToClean caps the instances queued for background reset;
	// check-ins beyond the cap are dropped
	MaxToClean int `yaml:"max_to_clean" json:"max_to_clean"`
}

// DefaultPoolConfig returns a pool configuration with the default capacity
// bounds.
func DefaultPoolConfig(name string) PoolConfig {
	return PoolConfig{
		Name:         name,
		MaxInventory: DefaultMaxInventory,
		MaxToClean:   DefaultMaxToClean,
	}
}

// Validate checks the pool configuration for invalid values.
func (c *PoolConfig) Validate() error {
	if c.MaxInventory < 0 {
		return errors.New(errors.ErrorTypeConfig, "max_inventory must not be negative").
			WithDetail("max_inventory", c.MaxInventory)
	}
	if c.MaxToClean < 0 {
		return errors.New(errors.ErrorTypeConfig, "max_to_clean must not be negative").
			WithDetail("max_to_clean", c.MaxToClean)
	}
	return nil
}

// BenchConfig configures the benchmark harness that exercises a pool of
// database sessions under load, comparing pooled against per-use
// construction.
type BenchConfig struct {
	// DSN is the database connection string used as the initializer key
	DSN string `yaml:"dsn" json:"dsn"`
	// Query is executed once per iteration
	Query string `yaml:"query" json:"query"`
	// Iterations is the number of query executions per run
	Iterations int `yaml:"iterations" json:"iterations"`
	// Runs repeats the whole comparison to expose warm-up effects
	Runs int `yaml:"runs" json:"runs"`
	// Workers is the number of concurrent goroutines issuing checkouts
	Workers int `yaml:"workers" json:"workers"`
	// Timeout bounds each individual query execution
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
	// Pool holds the capacity settings for the session pool under test
	Pool PoolConfig `yaml:"pool" json:"pool"`
	// LogLevel sets the logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// DefaultBenchConfig returns a benchmark configuration mirroring the
// defaults of the original profiling harness: ten runs of a thousand
// single-statement queries.
func DefaultBenchConfig() BenchConfig {
	return BenchConfig{
		Query:      "SELECT tablename FROM pg_tables WHERE schemaname = 'public'",
		Iterations: 1000,
		Runs:       10,
		Workers:    runtime.NumCPU(),
		Timeout:    30 * time.Second,
		Pool:       DefaultPoolConfig("bench_sessions"),
		LogLevel:   "info",
	}
}

// Validate checks the benchmark configuration for invalid values.
func (c *BenchConfig) Validate() error {
	if c.DSN == "" {
		return errors.New(errors.ErrorTypeConfig, "dsn is required")
	}
	if c.Query == "" {
		return errors.New(errors.ErrorTypeConfig, "query is required")
	}
	if c.Iterations <= 0 {
		return errors.New(errors.ErrorTypeConfig, "iterations must be positive").
			WithDetail("iterations", c.Iterations)
	}
	if c.Runs <= 0 {
		return errors.New(errors.ErrorTypeConfig, "runs must be positive").
			WithDetail("runs", c.Runs)
	}
	if c.Workers <= 0 {
		return errors.New(errors.ErrorTypeConfig, "workers must be positive").
			WithDetail("workers", c.Workers)
	}
	return c.Pool.Validate()
}
