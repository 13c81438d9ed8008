package storage

import "github.com/xtxerr/utiltrack/internal/errors"

// Tables lists the sample tables in schema order. The prune sweep and the
// export tool iterate over this set.
var Tables = []string{
	"system_samples",
	"disk_samples",
	"temperature_samples",
	"gpu_samples",
}

// schemaStatements is the idempotent DDL executed at open. Byte counts are
// UBIGINT, percentages DOUBLE; ids come from per-table sequences so rows
// carry a monotonic identity. Each table has a secondary index on ts to
// support the range scans the readers issue.
var schemaStatements = []struct {
	name string
	sql  string
}{
	{
		name: "seq_system_samples",
		sql:  `CREATE SEQUENCE IF NOT EXISTS seq_system_samples`,
	},
	{
		name: "system_samples",
		sql: `CREATE TABLE IF NOT EXISTS system_samples (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_system_samples'),
			ts TIMESTAMP NOT NULL,
			cpu_percent DOUBLE NOT NULL CHECK (cpu_percent >= 0 AND cpu_percent <= 100),
			cpu_count INTEGER NOT NULL CHECK (cpu_count > 0),
			load_avg_1 DOUBLE,
			load_avg_5 DOUBLE,
			load_avg_15 DOUBLE,
			memory_total UBIGINT NOT NULL,
			memory_used UBIGINT NOT NULL,
			memory_available UBIGINT NOT NULL,
			memory_percent DOUBLE NOT NULL,
			swap_total UBIGINT NOT NULL,
			swap_used UBIGINT NOT NULL,
			swap_percent DOUBLE NOT NULL
		)`,
	},
	{
		name: "idx_system_ts",
		sql:  `CREATE INDEX IF NOT EXISTS idx_system_ts ON system_samples(ts)`,
	},
	{
		name: "seq_disk_samples",
		sql:  `CREATE SEQUENCE IF NOT EXISTS seq_disk_samples`,
	},
	{
		name: "disk_samples",
		sql: `CREATE TABLE IF NOT EXISTS disk_samples (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_disk_samples'),
			ts TIMESTAMP NOT NULL,
			device VARCHAR NOT NULL,
			mountpoint VARCHAR NOT NULL,
			total UBIGINT NOT NULL,
			used UBIGINT NOT NULL,
			free UBIGINT NOT NULL,
			percent DOUBLE NOT NULL CHECK (percent >= 0 AND percent <= 100)
		)`,
	},
	{
		name: "idx_disk_ts",
		sql:  `CREATE INDEX IF NOT EXISTS idx_disk_ts ON disk_samples(ts)`,
	},
	{
		name: "seq_temperature_samples",
		sql:  `CREATE SEQUENCE IF NOT EXISTS seq_temperature_samples`,
	},
	{
		name: "temperature_samples",
		sql: `CREATE TABLE IF NOT EXISTS temperature_samples (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_temperature_samples'),
			ts TIMESTAMP NOT NULL,
			sensor VARCHAR NOT NULL,
			label VARCHAR NOT NULL,
			current DOUBLE NOT NULL,
			high DOUBLE,
			critical DOUBLE
		)`,
	},
	{
		name: "idx_temperature_ts",
		sql:  `CREATE INDEX IF NOT EXISTS idx_temperature_ts ON temperature_samples(ts)`,
	},
	{
		name: "seq_gpu_samples",
		sql:  `CREATE SEQUENCE IF NOT EXISTS seq_gpu_samples`,
	},
	{
		name: "gpu_samples",
		sql: `CREATE TABLE IF NOT EXISTS gpu_samples (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_gpu_samples'),
			ts TIMESTAMP NOT NULL,
			gpu_index INTEGER NOT NULL,
			name VARCHAR NOT NULL,
			utilization DOUBLE NOT NULL,
			memory_utilization DOUBLE NOT NULL,
			memory_used UBIGINT NOT NULL,
			memory_total UBIGINT NOT NULL,
			temperature DOUBLE,
			power_draw DOUBLE,
			power_limit DOUBLE,
			fan_speed DOUBLE
		)`,
	},
	{
		name: "idx_gpu_ts",
		sql:  `CREATE INDEX IF NOT EXISTS idx_gpu_ts ON gpu_samples(ts)`,
	},
}

// ensureSchema creates sequences, tables and indexes if absent.
func (s *Store) ensureSchema() error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.Exec(stmt.sql); err != nil {
			return errors.NewStorage("create "+stmt.name, err)
		}
	}
	s.log.Debug("schema verified", "tables", len(Tables))
	return nil
}
