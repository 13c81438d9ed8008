// Package export writes parquet snapshots of the sample tables.
//
// One zstd-compressed file is produced per metric family for a requested
// time range so the data can be pulled off the host for offline analysis.
// Files are written to a temp name and renamed into place; the four tables
// export concurrently.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"golang.org/x/sync/errgroup"

	"github.com/xtxerr/utiltrack/internal/logging"
	"github.com/xtxerr/utiltrack/internal/metrics"
)

// Source supplies the rows to export. *storage.Store satisfies this.
type Source interface {
	SystemRange(ctx context.Context, start, end time.Time) ([]metrics.SystemSample, error)
	DiskRange(ctx context.Context, start, end time.Time) ([]metrics.DiskSample, error)
	TemperatureRange(ctx context.Context, start, end time.Time) ([]metrics.TemperatureSample, error)
	GPURange(ctx context.Context, start, end time.Time) ([]metrics.GPUSample, error)
}

// Result describes one exported file.
type Result struct {
	Family metrics.Family
	Path   string
	Rows   int
}

// Exporter writes sample snapshots.
type Exporter struct {
	source Source
	log    *slog.Logger
}

// New constructs an Exporter.
func New(source Source, logger *slog.Logger) *Exporter {
	return &Exporter{
		source: source,
		log:    logging.Component(logger, "export"),
	}
}

// Export writes one parquet file per family covering start <= ts < end
// into dir. Families with zero rows in the range produce no file. The
// tables are exported concurrently; the first failure cancels the rest.
func (e *Exporter) Export(ctx context.Context, dir string, start, end time.Time) ([]Result, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	results := make([]Result, 4)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		samples, err := e.source.SystemRange(ctx, start, end)
		if err != nil {
			return fmt.Errorf("system range: %w", err)
		}
		r, err := writeFile(dir, metrics.FamilySystem, start, end, systemRows(samples))
		results[0] = r
		return err
	})
	g.Go(func() error {
		samples, err := e.source.DiskRange(ctx, start, end)
		if err != nil {
			return fmt.Errorf("disk range: %w", err)
		}
		r, err := writeFile(dir, metrics.FamilyDisk, start, end, diskRows(samples))
		results[1] = r
		return err
	})
	g.Go(func() error {
		samples, err := e.source.TemperatureRange(ctx, start, end)
		if err != nil {
			return fmt.Errorf("temperature range: %w", err)
		}
		r, err := writeFile(dir, metrics.FamilyTemperature, start, end, temperatureRows(samples))
		results[2] = r
		return err
	})
	g.Go(func() error {
		samples, err := e.source.GPURange(ctx, start, end)
		if err != nil {
			return fmt.Errorf("gpu range: %w", err)
		}
		r, err := writeFile(dir, metrics.FamilyGPU, start, end, gpuRows(samples))
		results[3] = r
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := results[:0]
	for _, r := range results {
		if r.Rows > 0 {
			e.log.Info("exported", "family", string(r.Family), "rows", r.Rows, "path", r.Path)
			out = append(out, r)
		}
	}
	return out, nil
}

// writeFile writes rows to <family>_<start>_<end>.parquet via a temp file.
func writeFile[T any](dir string, family metrics.Family, start, end time.Time, rows []T) (Result, error) {
	result := Result{Family: family, Rows: len(rows)}
	if len(rows) == 0 {
		return result, nil
	}

	name := fmt.Sprintf("%s_%d_%d.parquet", family, start.Unix(), end.Unix())
	result.Path = filepath.Join(dir, name)
	tmp := result.Path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return result, fmt.Errorf("create %s: %w", tmp, err)
	}

	writer := parquet.NewGenericWriter[T](f, parquet.Compression(&parquet.Zstd))
	if _, err := writer.Write(rows); err != nil {
		f.Close()
		os.Remove(tmp)
		return result, fmt.Errorf("write %s: %w", name, err)
	}
	if err := writer.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return result, fmt.Errorf("close writer %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return result, fmt.Errorf("close %s: %w", name, err)
	}

	if err := os.Rename(tmp, result.Path); err != nil {
		os.Remove(tmp)
		return result, fmt.Errorf("rename %s: %w", name, err)
	}
	return result, nil
}
