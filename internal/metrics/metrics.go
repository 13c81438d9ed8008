// Package metrics defines the sample records produced by the sampler and
// persisted by the storage engine.
//
// Each record type corresponds to one metric family. Records are immutable
// once produced: the sampler creates them, the storage engine writes them,
// and the retention sweep eventually deletes the persisted rows. Values that
// a host may not provide (load averages, GPU temperature, fan speed) are
// pointer fields so that "absent" is distinguishable from zero.
package metrics

import "time"

// Family identifies a metric family collected and stored as a unit per tick.
type Family string

const (
	FamilySystem      Family = "system"
	FamilyDisk        Family = "disk"
	FamilyTemperature Family = "temperature"
	FamilyGPU         Family = "gpu"
)

// SystemSample holds one CPU/memory/load snapshot.
type SystemSample struct {
	Timestamp time.Time

	CPUPercent float64
	CPUCount   int

	// Load averages are absent on platforms without load-average support.
	LoadAvg1  *float64
	LoadAvg5  *float64
	LoadAvg15 *float64

	MemoryTotal     uint64
	MemoryUsed      uint64
	MemoryAvailable uint64
	MemoryPercent   float64

	SwapTotal   uint64
	SwapUsed    uint64
	SwapPercent float64
}

// DiskSample holds usage for one mounted partition.
type DiskSample struct {
	Timestamp  time.Time
	Device     string
	Mountpoint string
	Total      uint64
	Used       uint64
	Free       uint64
	Percent    float64
}

// TemperatureSample holds one sensor reading.
type TemperatureSample struct {
	Timestamp time.Time
	Sensor    string
	Label     string
	Current   float64

	// High and Critical thresholds are absent when the sensor does not
	// report them.
	High     *float64
	Critical *float64
}

// GPUSample holds one GPU snapshot. Utilization and memory figures are
// always present when a sample exists; the remaining fields depend on what
// the driver exposes and are absent rather than zero when unavailable.
type GPUSample struct {
	Timestamp time.Time
	Index     int
	Name      string

	Utilization       float64
	MemoryUtilization float64
	MemoryUsed        uint64
	MemoryTotal       uint64

	Temperature *float64
	PowerDraw   *float64
	PowerLimit  *float64
	FanSpeed    *float64
}

// HostInfo holds static host facts logged once at startup.
type HostInfo struct {
	Hostname        string
	CPUCountLogical int
	CPUCountCores   int
	MemoryTotal     uint64
	BootTime        time.Time
	GPUCount        int
}

// Float64Ptr returns a pointer to v. Convenience for optional fields.
func Float64Ptr(v float64) *float64 { return &v }
