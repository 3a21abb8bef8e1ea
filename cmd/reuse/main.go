package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/reuse/internal/bench"
	"github.com/ajitpratap0/reuse/pkg/config"
	"github.com/ajitpratap0/reuse/pkg/logger"
	"github.com/ajitpratap0/reuse/pkg/metrics"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	root := &cobra.Command{
		Use:   "reuse",
		Short: "reuse - initializer-keyed object pooling",
		Long: `reuse provides a concurrent, initializer-keyed object pool for expensive
reusable resources. This CLI benchmarks pooled database sessions against
the traditional connect/query/close cycle.`,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("reuse v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(newBenchCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newBenchCommand() *cobra.Command {
	var (
		configFile  string
		output      string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark pooled sessions against per-use construction",
		Long: `Runs the configured query repeatedly, first opening and closing a session
per iteration, then reusing sessions from a pool, and reports the timings
of both phases for each run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadBenchConfig(cmd, configFile)
			if err != nil {
				return err
			}

			if err := logger.Init(logger.Config{Level: cfg.LogLevel, Encoding: "console"}); err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck
			log := logger.Get()

			harness := bench.New(cfg, log)
			defer harness.Close()

			prometheus.MustRegister(metrics.NewPoolCollector(cfg.Pool.Name, harness.Pool().Stats))
			if metricsAddr != "" {
				go serveMetrics(metricsAddr, log)
			}

			report, err := harness.Run(context.Background())
			if err != nil {
				return err
			}

			printReport(report)

			if output != "" {
				if err := writeReport(output, report); err != nil {
					return err
				}
				log.Info("report written", zap.String("path", output))
			}
			return nil
		},
	}

	defaults := config.DefaultBenchConfig()
	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "Path to YAML config file")
	flags.StringVar(&output, "output", "", "Path to write the JSON report")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "Address to serve Prometheus metrics during the run")
	flags.String("dsn", "", "PostgreSQL connection string (initializer key)")
	flags.String("query", defaults.Query, "Query executed per iteration")
	flags.Int("iterations", defaults.Iterations, "Query executions per run")
	flags.Int("runs", defaults.Runs, "Number of comparison runs")
	flags.Int("workers", defaults.Workers, "Concurrent worker goroutines")
	flags.Duration("timeout", defaults.Timeout, "Per-query timeout")
	flags.Int("max-inventory", defaults.Pool.MaxInventory, "Idle instance cap across all buckets")
	flags.Int("max-to-clean", defaults.Pool.MaxToClean, "Pending background reset cap")
	flags.String("log-level", defaults.LogLevel, "Log level (debug, info, warn, error)")

	return cmd
}

// loadBenchConfig layers the configuration sources: defaults, then the YAML
// config file, then REUSE_* environment variables, then explicit flags.
func loadBenchConfig(cmd *cobra.Command, configFile string) (config.BenchConfig, error) {
	cfg := config.DefaultBenchConfig()

	if configFile != "" {
		if err := config.Load(configFile, &cfg); err != nil {
			return cfg, err
		}
	}

	v := viper.New()
	v.SetEnvPrefix("REUSE")
	for env, flag := range map[string]string{
		"DSN":           "dsn",
		"QUERY":         "query",
		"ITERATIONS":    "iterations",
		"RUNS":          "runs",
		"WORKERS":       "workers",
		"TIMEOUT":       "timeout",
		"MAX_INVENTORY": "max-inventory",
		"MAX_TO_CLEAN":  "max-to-clean",
		"LOG_LEVEL":     "log-level",
	} {
		if err := v.BindEnv(env); err != nil {
			return cfg, err
		}
		if v.IsSet(env) && !cmd.Flags().Changed(flag) {
			if err := cmd.Flags().Set(flag, v.GetString(env)); err != nil {
				return cfg, err
			}
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dsn") || cfg.DSN == "" {
		cfg.DSN, _ = flags.GetString("dsn")
	}
	if flags.Changed("query") {
		cfg.Query, _ = flags.GetString("query")
	}
	if flags.Changed("iterations") {
		cfg.Iterations, _ = flags.GetInt("iterations")
	}
	if flags.Changed("runs") {
		cfg.Runs, _ = flags.GetInt("runs")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("max-inventory") {
		cfg.Pool.MaxInventory, _ = flags.GetInt("max-inventory")
	}
	if flags.Changed("max-to-clean") {
		cfg.Pool.MaxToClean, _ = flags.GetInt("max-to-clean")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}

	return cfg, cfg.Validate()
}

func serveMetrics(addr string, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info("serving metrics", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Warn("metrics server stopped", zap.Error(err))
	}
}

func printReport(report *bench.Report) {
	for _, r := range report.Results {
		fmt.Printf("Run %d: traditional %s, pooled %s (%.2fx)\n",
			r.Run, r.Traditional, r.Pooled, r.Speedup)
	}
	fmt.Printf("Pool: size=%d hits=%d misses=%d destroyed=%d\n",
		report.PoolStats.Size, report.PoolStats.Hits,
		report.PoolStats.Misses, report.PoolStats.Destroyed)
}

func writeReport(path string, report *bench.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644) //nolint:gosec
}
