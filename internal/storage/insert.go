package storage

import (
	"database/sql"

	"github.com/xtxerr/utiltrack/internal/metrics"
)

// InsertSystem inserts one system sample.
func (s *Store) InsertSystem(sample *metrics.SystemSample) error {
	if sample == nil {
		return nil
	}
	return s.transaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO system_samples (
				ts, cpu_percent, cpu_count,
				load_avg_1, load_avg_5, load_avg_15,
				memory_total, memory_used, memory_available, memory_percent,
				swap_total, swap_used, swap_percent
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sample.Timestamp, sample.CPUPercent, sample.CPUCount,
			sample.LoadAvg1, sample.LoadAvg5, sample.LoadAvg15,
			sample.MemoryTotal, sample.MemoryUsed, sample.MemoryAvailable, sample.MemoryPercent,
			sample.SwapTotal, sample.SwapUsed, sample.SwapPercent)
		return err
	})
}

// InsertDisks inserts a batch of disk samples in a single transaction.
// All rows commit together or none do.
func (s *Store) InsertDisks(samples []metrics.DiskSample) error {
	if len(samples) == 0 {
		return nil
	}
	return s.transaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO disk_samples (ts, device, mountpoint, total, used, free, percent)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, d := range samples {
			if _, err := stmt.Exec(d.Timestamp, d.Device, d.Mountpoint,
				d.Total, d.Used, d.Free, d.Percent); err != nil {
				return err
			}
		}
		return nil
	})
}

// InsertTemperatures inserts a batch of temperature samples in a single
// transaction.
func (s *Store) InsertTemperatures(samples []metrics.TemperatureSample) error {
	if len(samples) == 0 {
		return nil
	}
	return s.transaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO temperature_samples (ts, sensor, label, current, high, critical)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, t := range samples {
			if _, err := stmt.Exec(t.Timestamp, t.Sensor, t.Label,
				t.Current, t.High, t.Critical); err != nil {
				return err
			}
		}
		return nil
	})
}

// InsertGPUs inserts a batch of GPU samples in a single transaction.
func (s *Store) InsertGPUs(samples []metrics.GPUSample) error {
	if len(samples) == 0 {
		return nil
	}
	return s.transaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO gpu_samples (
				ts, gpu_index, name, utilization, memory_utilization,
				memory_used, memory_total, temperature, power_draw, power_limit, fan_speed
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, g := range samples {
			if _, err := stmt.Exec(g.Timestamp, g.Index, g.Name,
				g.Utilization, g.MemoryUtilization, g.MemoryUsed, g.MemoryTotal,
				g.Temperature, g.PowerDraw, g.PowerLimit, g.FanSpeed); err != nil {
				return err
			}
		}
		return nil
	})
}
