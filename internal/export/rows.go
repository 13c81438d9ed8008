package export

import "github.com/xtxerr/utiltrack/internal/metrics"

// Parquet row shapes. Timestamps are Unix milliseconds; optional fields are
// pointers so that absent values stay absent in the file.

// SystemRow is a system sample in parquet format.
type SystemRow struct {
	TimestampMs     int64    `parquet:"timestamp_ms"`
	CPUPercent      float64  `parquet:"cpu_percent"`
	CPUCount        int32    `parquet:"cpu_count"`
	LoadAvg1        *float64 `parquet:"load_avg_1,optional"`
	LoadAvg5        *float64 `parquet:"load_avg_5,optional"`
	LoadAvg15       *float64 `parquet:"load_avg_15,optional"`
	MemoryTotal     int64    `parquet:"memory_total"`
	MemoryUsed      int64    `parquet:"memory_used"`
	MemoryAvailable int64    `parquet:"memory_available"`
	MemoryPercent   float64  `parquet:"memory_percent"`
	SwapTotal       int64    `parquet:"swap_total"`
	SwapUsed        int64    `parquet:"swap_used"`
	SwapPercent     float64  `parquet:"swap_percent"`
}

// DiskRow is a disk sample in parquet format.
type DiskRow struct {
	TimestampMs int64   `parquet:"timestamp_ms"`
	Device      string  `parquet:"device,zstd"`
	Mountpoint  string  `parquet:"mountpoint,zstd"`
	Total       int64   `parquet:"total"`
	Used        int64   `parquet:"used"`
	Free        int64   `parquet:"free"`
	Percent     float64 `parquet:"percent"`
}

// TemperatureRow is a temperature sample in parquet format.
type TemperatureRow struct {
	TimestampMs int64    `parquet:"timestamp_ms"`
	Sensor      string   `parquet:"sensor,zstd"`
	Label       string   `parquet:"label,zstd"`
	Current     float64  `parquet:"current"`
	High        *float64 `parquet:"high,optional"`
	Critical    *float64 `parquet:"critical,optional"`
}

// GPURow is a GPU sample in parquet format.
type GPURow struct {
	TimestampMs       int64    `parquet:"timestamp_ms"`
	Index             int32    `parquet:"gpu_index"`
	Name              string   `parquet:"name,zstd"`
	Utilization       float64  `parquet:"utilization"`
	MemoryUtilization float64  `parquet:"memory_utilization"`
	MemoryUsed        int64    `parquet:"memory_used"`
	MemoryTotal       int64    `parquet:"memory_total"`
	Temperature       *float64 `parquet:"temperature,optional"`
	PowerDraw         *float64 `parquet:"power_draw,optional"`
	PowerLimit        *float64 `parquet:"power_limit,optional"`
	FanSpeed          *float64 `parquet:"fan_speed,optional"`
}

func systemRows(samples []metrics.SystemSample) []SystemRow {
	rows := make([]SystemRow, len(samples))
	for i, s := range samples {
		rows[i] = SystemRow{
			TimestampMs:     s.Timestamp.UnixMilli(),
			CPUPercent:      s.CPUPercent,
			CPUCount:        int32(s.CPUCount),
			LoadAvg1:        s.LoadAvg1,
			LoadAvg5:        s.LoadAvg5,
			LoadAvg15:       s.LoadAvg15,
			MemoryTotal:     int64(s.MemoryTotal),
			MemoryUsed:      int64(s.MemoryUsed),
			MemoryAvailable: int64(s.MemoryAvailable),
			MemoryPercent:   s.MemoryPercent,
			SwapTotal:       int64(s.SwapTotal),
			SwapUsed:        int64(s.SwapUsed),
			SwapPercent:     s.SwapPercent,
		}
	}
	return rows
}

func diskRows(samples []metrics.DiskSample) []DiskRow {
	rows := make([]DiskRow, len(samples))
	for i, d := range samples {
		rows[i] = DiskRow{
			TimestampMs: d.Timestamp.UnixMilli(),
			Device:      d.Device,
			Mountpoint:  d.Mountpoint,
			Total:       int64(d.Total),
			Used:        int64(d.Used),
			Free:        int64(d.Free),
			Percent:     d.Percent,
		}
	}
	return rows
}

func temperatureRows(samples []metrics.TemperatureSample) []TemperatureRow {
	rows := make([]TemperatureRow, len(samples))
	for i, t := range samples {
		rows[i] = TemperatureRow{
			TimestampMs: t.Timestamp.UnixMilli(),
			Sensor:      t.Sensor,
			Label:       t.Label,
			Current:     t.Current,
			High:        t.High,
			Critical:    t.Critical,
		}
	}
	return rows
}

func gpuRows(samples []metrics.GPUSample) []GPURow {
	rows := make([]GPURow, len(samples))
	for i, g := range samples {
		rows[i] = GPURow{
			TimestampMs:       g.Timestamp.UnixMilli(),
			Index:             int32(g.Index),
			Name:              g.Name,
			Utilization:       g.Utilization,
			MemoryUtilization: g.MemoryUtilization,
			MemoryUsed:        int64(g.MemoryUsed),
			MemoryTotal:       int64(g.MemoryTotal),
			Temperature:       g.Temperature,
			PowerDraw:         g.PowerDraw,
			PowerLimit:        g.PowerLimit,
			FanSpeed:          g.FanSpeed,
		}
	}
	return rows
}
