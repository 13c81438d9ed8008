// utiltrack is the query and export tool for the utilization tracker
// database. It reads the daemon's schema read-only.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/xtxerr/utiltrack/internal/config"
	"github.com/xtxerr/utiltrack/internal/export"
	"github.com/xtxerr/utiltrack/internal/logging"
	"github.com/xtxerr/utiltrack/internal/report"
	"github.com/xtxerr/utiltrack/internal/storage"
)

const usage = `Usage: utiltrack [-db PATH] COMMAND [args]

Commands:
  system  [-n N]                 recent system samples
  disk                           disk usage from the latest tick
  temp    [-n N]                 recent temperature samples
  gpu     [-n N]                 recent GPU samples
  summary [-window DUR]          CPU/memory statistics over a window
  status                         database location, row counts, time bounds
  export  -out DIR [-start T -end T]   parquet snapshot (RFC 3339 times)
  shell                          interactive prompt
`

func main() {
	dbPath := flag.String("db", config.DefaultDatabasePath, "database path")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	// The CLI logs warnings and errors only, to stderr.
	logger, closer, err := logging.New(logging.Options{Level: "warn"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "utiltrack: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	store, err := storage.OpenReadOnly(*dbPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "utiltrack: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	cli := &cli{store: store, logger: logger}

	if err := cli.dispatch(context.Background(), args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "utiltrack: %v\n", err)
		os.Exit(1)
	}
}

type cli struct {
	store  *storage.Store
	logger *slog.Logger
}

func (c *cli) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "system":
		return c.cmdSystem(ctx, args)
	case "disk":
		return c.cmdDisk(ctx)
	case "temp":
		return c.cmdTemp(ctx, args)
	case "gpu":
		return c.cmdGPU(ctx, args)
	case "summary":
		return c.cmdSummary(ctx, args)
	case "status":
		return c.cmdStatus(ctx)
	case "export":
		return c.cmdExport(ctx, args)
	case "shell":
		return c.cmdShell(ctx)
	case "help":
		fmt.Print(usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func parseLimit(name string, args []string) (int, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	n := fs.Int("n", 20, "number of rows")
	if err := fs.Parse(args); err != nil {
		return 0, err
	}
	if *n < 1 {
		return 0, fmt.Errorf("-n must be positive")
	}
	return *n, nil
}

func (c *cli) cmdSystem(ctx context.Context, args []string) error {
	n, err := parseLimit("system", args)
	if err != nil {
		return err
	}
	samples, err := c.store.LatestSystem(ctx, n)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		fmt.Println("no system samples")
		return nil
	}
	report.RenderSystem(os.Stdout, samples)
	return nil
}

func (c *cli) cmdDisk(ctx context.Context) error {
	samples, err := c.store.LatestDisks(ctx)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		fmt.Println("no disk samples")
		return nil
	}
	report.RenderDisks(os.Stdout, samples)
	return nil
}

func (c *cli) cmdTemp(ctx context.Context, args []string) error {
	n, err := parseLimit("temp", args)
	if err != nil {
		return err
	}
	samples, err := c.store.LatestTemperatures(ctx, n)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		fmt.Println("no temperature samples")
		return nil
	}
	report.RenderTemperatures(os.Stdout, samples)
	return nil
}

func (c *cli) cmdGPU(ctx context.Context, args []string) error {
	n, err := parseLimit("gpu", args)
	if err != nil {
		return err
	}
	samples, err := c.store.LatestGPUs(ctx, n)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		fmt.Println("no GPU samples")
		return nil
	}
	report.RenderGPUs(os.Stdout, samples)
	return nil
}

func (c *cli) cmdSummary(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	window := fs.Duration("window", 24*time.Hour, "summary window")
	if err := fs.Parse(args); err != nil {
		return err
	}

	end := time.Now().UTC()
	start := end.Add(-*window)
	samples, err := c.store.SystemRange(ctx, start, end)
	if err != nil {
		return err
	}

	cpu, memory, err := report.SystemSummaries(samples)
	if err != nil {
		return err
	}

	fmt.Printf("window: %s to %s (%d samples)\n",
		start.Format(time.RFC3339), end.Format(time.RFC3339), len(samples))
	report.RenderSummary(os.Stdout, map[string]*report.Summary{
		"cpu_percent":    cpu,
		"memory_percent": memory,
	}, []string{"cpu_percent", "memory_percent"})
	return nil
}

func (c *cli) cmdStatus(ctx context.Context) error {
	fmt.Printf("database: %s\n", c.store.Path())

	oldest, newest, ok, err := c.store.TimeBounds(ctx)
	if err != nil {
		return err
	}
	if ok {
		fmt.Printf("samples:  %s to %s\n",
			oldest.Format(time.RFC3339), newest.Format(time.RFC3339))
	} else {
		fmt.Println("samples:  none")
	}

	for _, table := range storage.Tables {
		n, err := c.store.CountRows(ctx, table)
		if err != nil {
			return err
		}
		fmt.Printf("%-20s %d rows\n", table, n)
	}
	return nil
}

func (c *cli) cmdExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("out", "", "output directory")
	startStr := fs.String("start", "", "range start (RFC 3339), default: oldest sample")
	endStr := fs.String("end", "", "range end (RFC 3339), default: now")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return fmt.Errorf("export: -out is required")
	}

	start, end, err := c.resolveRange(ctx, *startStr, *endStr)
	if err != nil {
		return err
	}

	exp := export.New(c.store, c.logger)
	results, err := exp.Export(ctx, *out, start, end)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("no samples in range, nothing exported")
		return nil
	}
	for _, r := range results {
		fmt.Printf("%-12s %8d rows  %s\n", r.Family, r.Rows, r.Path)
	}
	return nil
}

func (c *cli) resolveRange(ctx context.Context, startStr, endStr string) (time.Time, time.Time, error) {
	end := time.Now().UTC()
	if endStr != "" {
		t, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse -end: %w", err)
		}
		end = t
	}

	if startStr != "" {
		t, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse -start: %w", err)
		}
		return t, end, nil
	}

	oldest, _, ok, err := c.store.TimeBounds(ctx)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !ok {
		// Empty database; an empty range exports nothing.
		return end, end, nil
	}
	return oldest, end.Add(time.Second), nil
}
