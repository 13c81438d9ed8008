// Package report computes windowed summaries and renders query results as
// tables for the utiltrack CLI. It consumes the storage schema read-only
// and never runs inside the daemon.
package report

import (
	"math"

	"github.com/DataDog/sketches-go/ddsketch"

	"github.com/xtxerr/utiltrack/internal/errors"
	"github.com/xtxerr/utiltrack/internal/metrics"
)

// sketchAccuracy is the DDSketch relative accuracy used for percentiles.
const sketchAccuracy = 0.01

// Summary holds running statistics plus percentiles for one series.
type Summary struct {
	Count int64
	Avg   float64
	Min   float64
	Max   float64
	P50   float64
	P90   float64
	P95   float64
	P99   float64
}

// Summarize computes a Summary over values. An empty input returns
// ErrNotFound so callers can distinguish "no data in window".
func Summarize(values []float64) (*Summary, error) {
	if len(values) == 0 {
		return nil, errors.Wrap(errors.ErrNotFound, "no samples in window")
	}

	sketch, err := ddsketch.NewDefaultDDSketch(sketchAccuracy)
	if err != nil {
		return nil, errors.Wrap(err, "create sketch")
	}

	s := &Summary{
		Min: math.MaxFloat64,
		Max: -math.MaxFloat64,
	}

	var sum float64
	for _, v := range values {
		s.Count++
		sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		if err := sketch.Add(v); err != nil {
			return nil, errors.Wrap(err, "add to sketch")
		}
	}
	s.Avg = sum / float64(s.Count)

	quantiles, err := sketch.GetValuesAtQuantiles([]float64{0.5, 0.9, 0.95, 0.99})
	if err != nil {
		return nil, errors.Wrap(err, "quantiles")
	}
	s.P50, s.P90, s.P95, s.P99 = quantiles[0], quantiles[1], quantiles[2], quantiles[3]

	return s, nil
}

// SystemSummaries computes CPU and memory percent summaries over a window
// of system samples.
func SystemSummaries(samples []metrics.SystemSample) (cpu, memory *Summary, err error) {
	cpuVals := make([]float64, 0, len(samples))
	memVals := make([]float64, 0, len(samples))
	for _, s := range samples {
		cpuVals = append(cpuVals, s.CPUPercent)
		memVals = append(memVals, s.MemoryPercent)
	}

	cpu, err = Summarize(cpuVals)
	if err != nil {
		return nil, nil, err
	}
	memory, err = Summarize(memVals)
	if err != nil {
		return nil, nil, err
	}
	return cpu, memory, nil
}
