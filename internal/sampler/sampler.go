// Package sampler gathers best-effort metric snapshots from the host.
//
// One method exists per metric family: System, Disks, Temperatures, GPUs.
// Each call reads current host state and returns fully typed records. A
// failure scoped to a single unit (one partition, one sensor, one GPU) is
// logged and that unit skipped; a failure covering a whole family yields an
// empty result. A sampler call never panics and never aborts a tick.
//
// System, disk and temperature metrics come from gopsutil. GPU metrics come
// from nvidia-smi, probed once at construction; when the probe fails, GPUs
// returns an empty slice without retrying.
package sampler

import (
	"log/slog"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/xtxerr/utiltrack/internal/errors"
	"github.com/xtxerr/utiltrack/internal/logging"
	"github.com/xtxerr/utiltrack/internal/metrics"
)

// Sampler collects metric snapshots. Construct with New; the zero value is
// not usable.
type Sampler struct {
	log *slog.Logger

	// GPU probe result, fixed at construction.
	gpu      gpuQuerier
	gpuCount int
}

// Option customizes a Sampler.
type Option func(*Sampler)

// WithGPUQuerier replaces the nvidia-smi backend. Used by tests and by
// hosts with a nonstandard smi location.
func WithGPUQuerier(q gpuQuerier) Option {
	return func(s *Sampler) { s.gpu = q }
}

// New constructs a Sampler and probes GPU availability once. A failed
// probe is logged at warning level; it does not fail construction.
func New(logger *slog.Logger, opts ...Option) *Sampler {
	s := &Sampler{
		log: logging.Component(logger, "sampler"),
		gpu: nvidiaSMI{},
	}
	for _, opt := range opts {
		opt(s)
	}

	count, err := s.gpu.Probe()
	if err != nil {
		if !errors.IsUnavailable(err) {
			s.log.Warn("GPU probe failed", "error", err)
		}
		s.gpu = nil
		return s
	}

	s.gpuCount = count
	s.log.Info("GPU monitoring initialized", "gpus", count)
	return s
}

// GPUAvailable reports whether the GPU subsystem answered the startup probe.
func (s *Sampler) GPUAvailable() bool { return s.gpu != nil }

// System collects one CPU/memory/load snapshot. withLoad controls whether
// the load-average fields are populated. The returned sample carries the
// collection instant in UTC.
func (s *Sampler) System(withLoad bool) (*metrics.SystemSample, error) {
	sample := &metrics.SystemSample{Timestamp: time.Now().UTC()}

	pct, err := cpu.Percent(0, false)
	if err != nil {
		return nil, errors.Wrap(err, "cpu percent")
	}
	if len(pct) > 0 {
		sample.CPUPercent = pct[0]
	}

	count, err := cpu.Counts(true)
	if err != nil {
		return nil, errors.Wrap(err, "cpu count")
	}
	sample.CPUCount = count

	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil, errors.Wrap(err, "virtual memory")
	}
	sample.MemoryTotal = vm.Total
	sample.MemoryUsed = vm.Used
	sample.MemoryAvailable = vm.Available
	sample.MemoryPercent = vm.UsedPercent

	// Swap may legitimately be absent; zero totals are valid data.
	if sw, err := mem.SwapMemory(); err == nil {
		sample.SwapTotal = sw.Total
		sample.SwapUsed = sw.Used
		sample.SwapPercent = sw.UsedPercent
	} else {
		s.log.Warn("swap metrics unavailable", "error", err)
	}

	if withLoad {
		// Unsupported on some platforms; the fields stay absent.
		if avg, err := load.Avg(); err == nil {
			sample.LoadAvg1 = metrics.Float64Ptr(avg.Load1)
			sample.LoadAvg5 = metrics.Float64Ptr(avg.Load5)
			sample.LoadAvg15 = metrics.Float64Ptr(avg.Load15)
		} else {
			s.log.Debug("load average unavailable", "error", err)
		}
	}

	s.log.Debug("collected system metrics",
		"cpu_percent", sample.CPUPercent, "memory_percent", sample.MemoryPercent)
	return sample, nil
}

// Disks collects usage for every real mounted partition. Pseudo-filesystems
// and loop devices are excluded. A partition that cannot be statted (for
// example, permission denied) is logged and skipped.
func (s *Sampler) Disks() ([]metrics.DiskSample, error) {
	now := time.Now().UTC()

	parts, err := disk.Partitions(false)
	if err != nil {
		return nil, errors.Wrap(err, "disk partitions")
	}

	samples := make([]metrics.DiskSample, 0, len(parts))
	for _, part := range parts {
		if part.Fstype == "" || strings.Contains(part.Device, "loop") {
			continue
		}

		usage, err := disk.Usage(part.Mountpoint)
		if err != nil {
			s.log.Warn("skipping partition", "mountpoint", part.Mountpoint, "error", err)
			continue
		}

		samples = append(samples, metrics.DiskSample{
			Timestamp:  now,
			Device:     part.Device,
			Mountpoint: part.Mountpoint,
			Total:      usage.Total,
			Used:       usage.Used,
			Free:       usage.Free,
			Percent:    usage.UsedPercent,
		})
		s.log.Debug("collected disk metrics",
			"mountpoint", part.Mountpoint, "percent", usage.UsedPercent)
	}

	return samples, nil
}

// Temperatures collects readings from every available thermal sensor.
// On platforms without sensor support the result is empty, not an error.
func (s *Sampler) Temperatures() []metrics.TemperatureSample {
	now := time.Now().UTC()

	stats, err := host.SensorsTemperatures()
	if err != nil {
		// gopsutil returns a partial list plus a warning-type error when
		// some sensors fail; keep whatever was read.
		if len(stats) == 0 {
			s.log.Debug("temperature sensors unavailable", "error", err)
			return nil
		}
		s.log.Warn("some temperature sensors failed", "error", err)
	}

	samples := make([]metrics.TemperatureSample, 0, len(stats))
	for _, st := range stats {
		if st.SensorKey == "" {
			continue
		}
		sample := metrics.TemperatureSample{
			Timestamp: now,
			Sensor:    st.SensorKey,
			Label:     sensorLabel(st.SensorKey),
			Current:   st.Temperature,
		}
		if st.High > 0 {
			sample.High = metrics.Float64Ptr(st.High)
		}
		if st.Critical > 0 {
			sample.Critical = metrics.Float64Ptr(st.Critical)
		}
		samples = append(samples, sample)
		s.log.Debug("collected temperature", "sensor", st.SensorKey, "celsius", st.Temperature)
	}

	return samples
}

// sensorLabel derives a human label from a gopsutil sensor key such as
// "coretemp_core_0". The prefix before the first underscore may be empty.
// The key itself is kept as the sensor name.
func sensorLabel(key string) string {
	if i := strings.IndexByte(key, '_'); i >= 0 && i+1 < len(key) {
		return key[i+1:]
	}
	return "unknown"
}

// GPUs collects one sample per GPU. When the startup probe failed this
// returns an empty slice; a query failure for a single GPU line skips only
// that GPU.
func (s *Sampler) GPUs() []metrics.GPUSample {
	if s.gpu == nil {
		return nil
	}

	samples, err := s.gpu.Query(time.Now().UTC())
	if err != nil {
		s.log.Warn("GPU query failed", "error", err)
		return nil
	}

	for _, g := range samples {
		s.log.Debug("collected GPU metrics",
			"index", g.Index, "name", g.Name, "utilization", g.Utilization)
	}
	return samples
}

// HostInfo returns static host facts for the startup banner.
func (s *Sampler) HostInfo() metrics.HostInfo {
	info := metrics.HostInfo{GPUCount: s.gpuCount}

	if hi, err := host.Info(); err == nil {
		info.Hostname = hi.Hostname
		info.BootTime = time.Unix(int64(hi.BootTime), 0).UTC()
	}
	if n, err := cpu.Counts(true); err == nil {
		info.CPUCountLogical = n
	}
	if n, err := cpu.Counts(false); err == nil {
		info.CPUCountCores = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.MemoryTotal = vm.Total
	}

	return info
}
