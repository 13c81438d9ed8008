// utiltrackd is the host utilization tracking daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/xtxerr/utiltrack/internal/config"
	"github.com/xtxerr/utiltrack/internal/logging"
	"github.com/xtxerr/utiltrack/internal/sampler"
	"github.com/xtxerr/utiltrack/internal/storage"
	"github.com/xtxerr/utiltrack/internal/tracker"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfgPath := flag.String("config", "", "config file path")
	dbPath := flag.String("db", "", "database path (overrides config)")
	interval := flag.Int("interval", 0, "collection interval seconds (overrides config)")
	retention := flag.Int("retention", 0, "retention days (overrides config)")
	logLevel := flag.String("log-level", "", "log level (overrides config)")
	flag.Parse()

	// Load config
	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "utiltrackd: load config: %v\n", err)
			return 1
		}
		cfg = loaded
	} else if path := os.Getenv("UTILTRACK_CONFIG"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "utiltrackd: load config: %v\n", err)
			return 1
		}
		cfg = loaded
	}

	// CLI overrides
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *interval != 0 {
		cfg.CollectionIntervalSec = *interval
	}
	if *retention != 0 {
		cfg.RetentionDays = *retention
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	// Validate after overrides; invalid configuration never enters Running.
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "utiltrackd: %v\n", err)
		return 1
	}

	logger, logCloser, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Path:   cfg.Logging.Path,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "utiltrackd: %v\n", err)
		return 1
	}
	defer logCloser.Close()

	logger.Info("utiltrackd starting", "version", Version,
		"interval_sec", cfg.CollectionIntervalSec,
		"retention_days", cfg.RetentionDays,
		"database", cfg.Database.Path)

	smp := sampler.New(logger)

	info := smp.HostInfo()
	logger.Info("host info",
		"hostname", info.Hostname,
		"cpus_logical", info.CPUCountLogical,
		"cpus_physical", info.CPUCountCores,
		"memory_total", info.MemoryTotal,
		"boot_time", info.BootTime,
		"gpus", info.GPUCount)

	store, err := storage.Open(cfg.Database.Path, logger)
	if err != nil {
		logger.Error("open storage", "error", err)
		return 1
	}

	// Shutdown via SIGINT/SIGTERM, observed at tick boundaries.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	trk := tracker.New(cfg, smp, store, logger)
	if err := trk.Run(ctx); err != nil {
		logger.Error("tracker", "error", err)
		return 1
	}
	return 0
}
