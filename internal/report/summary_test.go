package report

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/xtxerr/utiltrack/internal/errors"
	"github.com/xtxerr/utiltrack/internal/metrics"
)

func TestSummarize(t *testing.T) {
	// 1..100: exact stats are known, percentiles within sketch accuracy.
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i + 1)
	}

	s, err := Summarize(values)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if s.Count != 100 {
		t.Errorf("count = %d, want 100", s.Count)
	}
	if math.Abs(s.Avg-50.5) > 1e-9 {
		t.Errorf("avg = %v, want 50.5", s.Avg)
	}
	if s.Min != 1 || s.Max != 100 {
		t.Errorf("min/max = %v/%v, want 1/100", s.Min, s.Max)
	}

	// DDSketch guarantees 1% relative accuracy; allow 2% head room.
	within := func(got, want float64) bool {
		return math.Abs(got-want) <= want*0.02
	}
	if !within(s.P50, 50) {
		t.Errorf("p50 = %v, want ~50", s.P50)
	}
	if !within(s.P90, 90) {
		t.Errorf("p90 = %v, want ~90", s.P90)
	}
	if !within(s.P99, 99) {
		t.Errorf("p99 = %v, want ~99", s.P99)
	}
	if s.P50 > s.P90 || s.P90 > s.P95 || s.P95 > s.P99 {
		t.Errorf("percentiles not monotonic: %+v", s)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	_, err := Summarize(nil)
	if err == nil {
		t.Fatal("expected error for empty input")
	}
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSummarizeSingleValue(t *testing.T) {
	s, err := Summarize([]float64{42.5})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.Count != 1 || s.Min != 42.5 || s.Max != 42.5 || s.Avg != 42.5 {
		t.Errorf("single-value summary wrong: %+v", s)
	}
}

func TestSystemSummaries(t *testing.T) {
	samples := []metrics.SystemSample{
		{CPUPercent: 10, MemoryPercent: 50},
		{CPUPercent: 20, MemoryPercent: 60},
		{CPUPercent: 30, MemoryPercent: 70},
	}

	cpu, memory, err := SystemSummaries(samples)
	if err != nil {
		t.Fatalf("SystemSummaries: %v", err)
	}
	if math.Abs(cpu.Avg-20) > 1e-9 {
		t.Errorf("cpu avg = %v, want 20", cpu.Avg)
	}
	if math.Abs(memory.Avg-60) > 1e-9 {
		t.Errorf("memory avg = %v, want 60", memory.Avg)
	}
}

func TestRenderSystem(t *testing.T) {
	var buf bytes.Buffer
	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	RenderSystem(&buf, []metrics.SystemSample{
		{
			Timestamp:     ts,
			CPUPercent:    12.5,
			CPUCount:      8,
			LoadAvg1:      metrics.Float64Ptr(0.42),
			MemoryUsed:    8 << 30,
			MemoryPercent: 50,
		},
		{
			// No load average support.
			Timestamp:     ts.Add(time.Minute),
			CPUPercent:    15.0,
			CPUCount:      8,
			MemoryUsed:    9 << 30,
			MemoryPercent: 56.3,
		},
	})

	out := buf.String()
	for _, want := range []string{"2026-08-30 12:00:00", "12.5", "0.42", "8.0 GiB"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// Absent load average renders as a dash, not a zero.
	if !strings.Contains(out, "-") {
		t.Errorf("absent value not rendered as dash:\n%s", out)
	}
}

func TestRenderGPUsOptionalFields(t *testing.T) {
	var buf bytes.Buffer
	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	RenderGPUs(&buf, []metrics.GPUSample{
		{
			Timestamp: ts, Index: 0, Name: "NVIDIA T4",
			Utilization: 25, MemoryUsed: 1 << 30, MemoryTotal: 15 << 30,
		},
	})

	out := buf.String()
	if !strings.Contains(out, "NVIDIA T4") {
		t.Errorf("output missing GPU name:\n%s", out)
	}
	if !strings.Contains(out, "-") {
		t.Errorf("absent temperature/power/fan not rendered as dash:\n%s", out)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{100 << 30, "100.0 GiB"},
		{3 << 40, "3.0 TiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
