package storage

import (
	"database/sql"
	"time"
)

// PruneResult holds per-table deletion counts from one retention sweep.
type PruneResult struct {
	System      int64
	Disk        int64
	Temperature int64
	GPU         int64
}

// Total returns the number of rows deleted across all tables.
func (r PruneResult) Total() int64 {
	return r.System + r.Disk + r.Temperature + r.GPU
}

// PruneOlderThan deletes all rows in all tables whose timestamp precedes
// cutoff. Rows at or after the cutoff are never touched. The whole sweep
// runs in one transaction so a failure leaves every table intact.
func (s *Store) PruneOlderThan(cutoff time.Time) (PruneResult, error) {
	var result PruneResult

	err := s.transaction(func(tx *sql.Tx) error {
		counts := []struct {
			table string
			dst   *int64
		}{
			{"system_samples", &result.System},
			{"disk_samples", &result.Disk},
			{"temperature_samples", &result.Temperature},
			{"gpu_samples", &result.GPU},
		}

		for _, c := range counts {
			res, err := tx.Exec(`DELETE FROM `+c.table+` WHERE ts < ?`, cutoff)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			*c.dst = n
		}
		return nil
	})
	if err != nil {
		return PruneResult{}, err
	}

	if result.Total() > 0 {
		s.log.Info("pruned old samples",
			"cutoff", cutoff.Format(time.RFC3339),
			"system", result.System, "disk", result.Disk,
			"temperature", result.Temperature, "gpu", result.GPU)
	}
	return result, nil
}
