package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/xtxerr/utiltrack/internal/metrics"
)

// The queries below serve the report and export tools, which consume the
// persisted schema read-only. The daemon itself never reads samples back.

const systemColumns = `ts, cpu_percent, cpu_count,
	load_avg_1, load_avg_5, load_avg_15,
	memory_total, memory_used, memory_available, memory_percent,
	swap_total, swap_used, swap_percent`

func scanSystem(rows *sql.Rows) (metrics.SystemSample, error) {
	var s metrics.SystemSample
	var l1, l5, l15 sql.NullFloat64
	err := rows.Scan(&s.Timestamp, &s.CPUPercent, &s.CPUCount,
		&l1, &l5, &l15,
		&s.MemoryTotal, &s.MemoryUsed, &s.MemoryAvailable, &s.MemoryPercent,
		&s.SwapTotal, &s.SwapUsed, &s.SwapPercent)
	if err != nil {
		return s, err
	}
	if l1.Valid {
		s.LoadAvg1 = metrics.Float64Ptr(l1.Float64)
	}
	if l5.Valid {
		s.LoadAvg5 = metrics.Float64Ptr(l5.Float64)
	}
	if l15.Valid {
		s.LoadAvg15 = metrics.Float64Ptr(l15.Float64)
	}
	return s, nil
}

// LatestSystem returns the most recent n system samples, newest first.
func (s *Store) LatestSystem(ctx context.Context, n int) ([]metrics.SystemSample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+systemColumns+` FROM system_samples ORDER BY ts DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []metrics.SystemSample
	for rows.Next() {
		sample, err := scanSystem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sample)
	}
	return out, rows.Err()
}

// SystemRange returns system samples with start <= ts < end, oldest first.
func (s *Store) SystemRange(ctx context.Context, start, end time.Time) ([]metrics.SystemSample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+systemColumns+` FROM system_samples
		 WHERE ts >= ? AND ts < ? ORDER BY ts`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []metrics.SystemSample
	for rows.Next() {
		sample, err := scanSystem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sample)
	}
	return out, rows.Err()
}

// LatestDisks returns the disk samples from the most recent tick that
// observed any partition.
func (s *Store) LatestDisks(ctx context.Context) ([]metrics.DiskSample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, device, mountpoint, total, used, free, percent
		 FROM disk_samples
		 WHERE ts = (SELECT max(ts) FROM disk_samples)
		 ORDER BY mountpoint`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []metrics.DiskSample
	for rows.Next() {
		var d metrics.DiskSample
		if err := rows.Scan(&d.Timestamp, &d.Device, &d.Mountpoint,
			&d.Total, &d.Used, &d.Free, &d.Percent); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DiskRange returns disk samples with start <= ts < end, oldest first.
func (s *Store) DiskRange(ctx context.Context, start, end time.Time) ([]metrics.DiskSample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, device, mountpoint, total, used, free, percent
		 FROM disk_samples WHERE ts >= ? AND ts < ? ORDER BY ts`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []metrics.DiskSample
	for rows.Next() {
		var d metrics.DiskSample
		if err := rows.Scan(&d.Timestamp, &d.Device, &d.Mountpoint,
			&d.Total, &d.Used, &d.Free, &d.Percent); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanTemperature(rows *sql.Rows) (metrics.TemperatureSample, error) {
	var t metrics.TemperatureSample
	var high, critical sql.NullFloat64
	err := rows.Scan(&t.Timestamp, &t.Sensor, &t.Label, &t.Current, &high, &critical)
	if err != nil {
		return t, err
	}
	if high.Valid {
		t.High = metrics.Float64Ptr(high.Float64)
	}
	if critical.Valid {
		t.Critical = metrics.Float64Ptr(critical.Float64)
	}
	return t, nil
}

// LatestTemperatures returns the most recent n temperature samples, newest
// first.
func (s *Store) LatestTemperatures(ctx context.Context, n int) ([]metrics.TemperatureSample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, sensor, label, current, high, critical
		 FROM temperature_samples ORDER BY ts DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []metrics.TemperatureSample
	for rows.Next() {
		t, err := scanTemperature(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// TemperatureRange returns temperature samples with start <= ts < end,
// oldest first.
func (s *Store) TemperatureRange(ctx context.Context, start, end time.Time) ([]metrics.TemperatureSample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, sensor, label, current, high, critical
		 FROM temperature_samples WHERE ts >= ? AND ts < ? ORDER BY ts`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []metrics.TemperatureSample
	for rows.Next() {
		t, err := scanTemperature(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanGPU(rows *sql.Rows) (metrics.GPUSample, error) {
	var g metrics.GPUSample
	var temp, draw, limit, fan sql.NullFloat64
	err := rows.Scan(&g.Timestamp, &g.Index, &g.Name,
		&g.Utilization, &g.MemoryUtilization, &g.MemoryUsed, &g.MemoryTotal,
		&temp, &draw, &limit, &fan)
	if err != nil {
		return g, err
	}
	if temp.Valid {
		g.Temperature = metrics.Float64Ptr(temp.Float64)
	}
	if draw.Valid {
		g.PowerDraw = metrics.Float64Ptr(draw.Float64)
	}
	if limit.Valid {
		g.PowerLimit = metrics.Float64Ptr(limit.Float64)
	}
	if fan.Valid {
		g.FanSpeed = metrics.Float64Ptr(fan.Float64)
	}
	return g, nil
}

const gpuColumns = `ts, gpu_index, name, utilization, memory_utilization,
	memory_used, memory_total, temperature, power_draw, power_limit, fan_speed`

// LatestGPUs returns the most recent n GPU samples, newest first.
func (s *Store) LatestGPUs(ctx context.Context, n int) ([]metrics.GPUSample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+gpuColumns+` FROM gpu_samples ORDER BY ts DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []metrics.GPUSample
	for rows.Next() {
		g, err := scanGPU(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// GPURange returns GPU samples with start <= ts < end, oldest first.
func (s *Store) GPURange(ctx context.Context, start, end time.Time) ([]metrics.GPUSample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+gpuColumns+` FROM gpu_samples
		 WHERE ts >= ? AND ts < ? ORDER BY ts`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []metrics.GPUSample
	for rows.Next() {
		g, err := scanGPU(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// TimeBounds returns the oldest and newest system sample timestamps.
// ok is false when the table is empty.
func (s *Store) TimeBounds(ctx context.Context) (oldest, newest time.Time, ok bool, err error) {
	var minTs, maxTs sql.NullTime
	err = s.db.QueryRowContext(ctx,
		`SELECT min(ts), max(ts) FROM system_samples`).Scan(&minTs, &maxTs)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	if !minTs.Valid || !maxTs.Valid {
		return time.Time{}, time.Time{}, false, nil
	}
	return minTs.Time, maxTs.Time, true, nil
}

// CountRows returns the row count of one sample table. Used by tests and
// the report tool's status output.
func (s *Store) CountRows(ctx context.Context, table string) (int64, error) {
	for _, t := range Tables {
		if t == table {
			var n int64
			err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM `+table).Scan(&n)
			return n, err
		}
	}
	return 0, sql.ErrNoRows
}
