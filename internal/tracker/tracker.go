// Package tracker drives the collection loop.
//
// The tracker ticks at a fixed period, asks the sampler for one snapshot
// per enabled metric family, hands each snapshot to the storage engine, and
// periodically triggers the retention sweep. The loop is strictly
// sequential: one writer, no concurrent ticks, no per-call timeouts.
// Shutdown is cooperative and observed only at tick boundaries; a call
// already in progress always finishes.
package tracker

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/xtxerr/utiltrack/internal/config"
	"github.com/xtxerr/utiltrack/internal/logging"
	"github.com/xtxerr/utiltrack/internal/metrics"
	"github.com/xtxerr/utiltrack/internal/storage"
)

// State is the tracker lifecycle state.
type State int32

const (
	StateStopped State = iota
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// SampleSource produces one snapshot per metric family.
// *sampler.Sampler satisfies this.
type SampleSource interface {
	System(withLoad bool) (*metrics.SystemSample, error)
	Disks() ([]metrics.DiskSample, error)
	Temperatures() []metrics.TemperatureSample
	GPUs() []metrics.GPUSample
}

// SampleSink persists snapshots and owns retention.
// *storage.Store satisfies this.
type SampleSink interface {
	InsertSystem(*metrics.SystemSample) error
	InsertDisks([]metrics.DiskSample) error
	InsertTemperatures([]metrics.TemperatureSample) error
	InsertGPUs([]metrics.GPUSample) error
	PruneOlderThan(cutoff time.Time) (storage.PruneResult, error)
	Close() error
}

// Stats holds loop counters, readable while the tracker runs.
type Stats struct {
	Ticks         atomic.Int64
	Overruns      atomic.Int64
	FamilyErrors  atomic.Int64
	RowsPruned    atomic.Int64
	PruneFailures atomic.Int64
}

// Tracker owns the collection loop lifecycle.
type Tracker struct {
	cfg    *config.Config
	source SampleSource
	sink   SampleSink
	log    *slog.Logger

	state atomic.Int32
	stats Stats

	// pruneInterval is how often the retention sweep runs. The timer is
	// process-local: it restarts from zero on daemon restart. One sweep
	// also runs right after the first tick so retention is enforced even
	// on a frequently restarted daemon.
	pruneInterval time.Duration
	lastPrune     time.Time

	// now and sleep are swappable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

// New constructs a Tracker. The sink is closed by Run on the way out.
func New(cfg *config.Config, source SampleSource, sink SampleSink, logger *slog.Logger) *Tracker {
	return &Tracker{
		cfg:           cfg,
		source:        source,
		sink:          sink,
		log:           logging.Component(logger, "tracker"),
		pruneInterval: config.DefaultPruneInterval,
		now:           time.Now,
		sleep:         sleepCtx,
	}
}

// State returns the current lifecycle state.
func (t *Tracker) State() State {
	return State(t.state.Load())
}

// Stats returns the loop counters.
func (t *Tracker) Stats() *Stats {
	return &t.stats
}

// sleepCtx sleeps for d or until ctx is cancelled. An early wake only
// moves the loop to its next boundary check; it never interrupts work.
func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// Run executes the collection loop until ctx is cancelled. It transitions
// Stopped -> Running -> Stopping -> Stopped and closes the sink before
// returning. Run returns nil on graceful shutdown.
func (t *Tracker) Run(ctx context.Context) error {
	interval := t.cfg.CollectionInterval()

	t.state.Store(int32(StateRunning))
	t.log.Info("tracker started",
		"interval", interval, "retention_days", t.cfg.RetentionDays)

	defer func() {
		if err := t.sink.Close(); err != nil {
			t.log.Error("closing storage", "error", err)
		}
		t.state.Store(int32(StateStopped))
		t.log.Info("tracker stopped", "ticks", t.stats.Ticks.Load())
	}()

	firstTick := true

	for {
		if ctx.Err() != nil {
			t.state.Store(int32(StateStopping))
			t.log.Info("shutdown requested, finishing")
			return nil
		}

		tickStart := t.now()
		t.tick()
		t.stats.Ticks.Add(1)

		if firstTick || tickStart.Sub(t.lastPrune) >= t.pruneInterval {
			t.prune(tickStart)
			t.lastPrune = tickStart
			firstTick = false
		}

		elapsed := t.now().Sub(tickStart)
		if elapsed >= interval {
			t.stats.Overruns.Add(1)
			t.log.Warn("collection exceeded interval",
				"elapsed", elapsed, "interval", interval)
			continue
		}
		t.sleep(ctx, interval-elapsed)
	}
}

// tick collects and stores every enabled family. A failure in one family
// is logged and does not prevent the remaining families from being
// attempted in the same tick.
func (t *Tracker) tick() {
	if t.cfg.SystemEnabled() {
		t.collectSystem()
	}
	if t.cfg.Metrics.Disk {
		t.collectDisks()
	}
	if t.cfg.Metrics.Temperature {
		t.collectTemperatures()
	}
	if t.cfg.Metrics.GPU {
		t.collectGPUs()
	}
}

func (t *Tracker) collectSystem() {
	sample, err := t.source.System(t.cfg.Metrics.LoadAverage)
	if err != nil {
		t.familyError(metrics.FamilySystem, err)
		return
	}
	if err := t.sink.InsertSystem(sample); err != nil {
		t.familyError(metrics.FamilySystem, err)
	}
}

func (t *Tracker) collectDisks() {
	samples, err := t.source.Disks()
	if err != nil {
		t.familyError(metrics.FamilyDisk, err)
		return
	}
	if err := t.sink.InsertDisks(samples); err != nil {
		t.familyError(metrics.FamilyDisk, err)
	}
}

func (t *Tracker) collectTemperatures() {
	if err := t.sink.InsertTemperatures(t.source.Temperatures()); err != nil {
		t.familyError(metrics.FamilyTemperature, err)
	}
}

func (t *Tracker) collectGPUs() {
	if err := t.sink.InsertGPUs(t.source.GPUs()); err != nil {
		t.familyError(metrics.FamilyGPU, err)
	}
}

func (t *Tracker) familyError(family metrics.Family, err error) {
	t.stats.FamilyErrors.Add(1)
	t.log.Error("family collection failed", "family", string(family), "error", err)
}

// prune runs the retention sweep. Failures are logged and retried at the
// next prune interval; they never stop the loop.
func (t *Tracker) prune(now time.Time) {
	cutoff := now.Add(-t.cfg.Retention())
	result, err := t.sink.PruneOlderThan(cutoff)
	if err != nil {
		t.stats.PruneFailures.Add(1)
		t.log.Error("retention sweep failed", "error", err)
		return
	}
	t.stats.RowsPruned.Add(result.Total())
}
