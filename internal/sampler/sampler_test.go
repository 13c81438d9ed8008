package sampler

import (
	"testing"
	"time"

	"github.com/xtxerr/utiltrack/internal/errors"
	"github.com/xtxerr/utiltrack/internal/metrics"
)

// failingGPU simulates a host without a usable GPU subsystem.
type failingGPU struct{}

func (failingGPU) Probe() (int, error) { return 0, errors.ErrUnavailable }
func (failingGPU) Query(time.Time) ([]metrics.GPUSample, error) {
	panic("query must not be called after a failed probe")
}

// staticGPU returns canned samples.
type staticGPU struct {
	count   int
	samples []metrics.GPUSample
	queries int
}

func (s *staticGPU) Probe() (int, error) { return s.count, nil }
func (s *staticGPU) Query(ts time.Time) ([]metrics.GPUSample, error) {
	s.queries++
	return s.samples, nil
}

func TestGPUsUnavailable(t *testing.T) {
	s := New(nil, WithGPUQuerier(failingGPU{}))

	if s.GPUAvailable() {
		t.Error("GPUAvailable() = true after failed probe")
	}
	// Multiple calls: always empty, never a reprobe, never a panic.
	for i := 0; i < 3; i++ {
		if got := s.GPUs(); len(got) != 0 {
			t.Errorf("GPUs() = %d samples, want 0", len(got))
		}
	}
}

func TestGPUsAvailable(t *testing.T) {
	backend := &staticGPU{
		count: 1,
		samples: []metrics.GPUSample{
			{Index: 0, Name: "NVIDIA T4", Utilization: 25},
		},
	}
	s := New(nil, WithGPUQuerier(backend))

	if !s.GPUAvailable() {
		t.Fatal("GPUAvailable() = false")
	}
	got := s.GPUs()
	if len(got) != 1 || got[0].Name != "NVIDIA T4" {
		t.Errorf("GPUs() = %+v", got)
	}
	if backend.queries != 1 {
		t.Errorf("backend queried %d times, want 1", backend.queries)
	}
}

func TestParseGPUCSV(t *testing.T) {
	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		out  string
		want int
		chk  func(t *testing.T, samples []metrics.GPUSample)
	}{
		{
			name: "single GPU all fields",
			out:  "0, NVIDIA RTX A4000, 63, 41, 16384, 6144, 66, 98.50, 140.00, 30\n",
			want: 1,
			chk: func(t *testing.T, samples []metrics.GPUSample) {
				g := samples[0]
				if g.Index != 0 || g.Name != "NVIDIA RTX A4000" {
					t.Errorf("identity: %+v", g)
				}
				if g.Utilization != 63 || g.MemoryUtilization != 41 {
					t.Errorf("utilization: %+v", g)
				}
				if g.MemoryTotal != 16384*1024*1024 || g.MemoryUsed != 6144*1024*1024 {
					t.Errorf("memory not converted from MiB: %+v", g)
				}
				if g.Temperature == nil || *g.Temperature != 66 {
					t.Errorf("temperature: %v", g.Temperature)
				}
				if g.PowerDraw == nil || *g.PowerDraw != 98.5 {
					t.Errorf("power draw: %v", g.PowerDraw)
				}
				if g.FanSpeed == nil || *g.FanSpeed != 30 {
					t.Errorf("fan speed: %v", g.FanSpeed)
				}
				if !g.Timestamp.Equal(ts) {
					t.Errorf("timestamp: %v", g.Timestamp)
				}
			},
		},
		{
			name: "unsupported fields recorded absent",
			out:  "0, NVIDIA T4, 10, 5, 15360, 1024, 45, [N/A], [Not Supported], [N/A]\n",
			want: 1,
			chk: func(t *testing.T, samples []metrics.GPUSample) {
				g := samples[0]
				if g.PowerDraw != nil || g.PowerLimit != nil || g.FanSpeed != nil {
					t.Errorf("unsupported fields should be absent: %+v", g)
				}
				if g.Temperature == nil || *g.Temperature != 45 {
					t.Errorf("temperature: %v", g.Temperature)
				}
			},
		},
		{
			name: "two GPUs",
			out: "0, NVIDIA A100, 90, 80, 40960, 32768, 70, 250, 400, [N/A]\n" +
				"1, NVIDIA A100, 10, 5, 40960, 2048, 40, 60, 400, [N/A]\n",
			want: 2,
			chk: func(t *testing.T, samples []metrics.GPUSample) {
				if samples[0].Index != 0 || samples[1].Index != 1 {
					t.Errorf("indexes: %d, %d", samples[0].Index, samples[1].Index)
				}
			},
		},
		{
			name: "malformed line skipped",
			out:  "garbage\n0, NVIDIA T4, 10, 5, 15360, 1024, 45, 30, 70, 0\n",
			want: 1,
		},
		{
			name: "empty output",
			out:  "",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseGPUCSV(tt.out, ts)
			if len(got) != tt.want {
				t.Fatalf("parsed %d samples, want %d", len(got), tt.want)
			}
			if tt.chk != nil {
				tt.chk(t, got)
			}
		})
	}
}

func TestSensorLabel(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"coretemp_core_0", "core_0"},
		{"acpitz", "unknown"},
		{"nvme_composite", "composite"},
		{"_leading", "leading"},
		{"trailing_", "unknown"},
	}
	for _, tt := range tests {
		if got := sensorLabel(tt.key); got != tt.want {
			t.Errorf("sensorLabel(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestSystemSample(t *testing.T) {
	s := New(nil, WithGPUQuerier(failingGPU{}))

	sample, err := s.System(true)
	if err != nil {
		t.Fatalf("System: %v", err)
	}
	if sample.CPUCount <= 0 {
		t.Errorf("cpu_count = %d, want > 0", sample.CPUCount)
	}
	if sample.CPUPercent < 0 || sample.CPUPercent > 100 {
		t.Errorf("cpu_percent = %v, want [0,100]", sample.CPUPercent)
	}
	if sample.MemoryTotal == 0 {
		t.Error("memory_total = 0")
	}
	if sample.MemoryPercent < 0 || sample.MemoryPercent > 100 {
		t.Errorf("memory_percent = %v, want [0,100]", sample.MemoryPercent)
	}
	if sample.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestSystemSampleWithoutLoad(t *testing.T) {
	s := New(nil, WithGPUQuerier(failingGPU{}))

	sample, err := s.System(false)
	if err != nil {
		t.Fatalf("System: %v", err)
	}
	if sample.LoadAvg1 != nil || sample.LoadAvg5 != nil || sample.LoadAvg15 != nil {
		t.Error("load averages populated with withLoad=false")
	}
}

func TestDisks(t *testing.T) {
	s := New(nil, WithGPUQuerier(failingGPU{}))

	samples, err := s.Disks()
	if err != nil {
		t.Fatalf("Disks: %v", err)
	}
	for _, d := range samples {
		if d.Mountpoint == "" || d.Device == "" {
			t.Errorf("incomplete disk sample: %+v", d)
		}
		if d.Percent < 0 || d.Percent > 100 {
			t.Errorf("percent out of range: %+v", d)
		}
	}
}
