package annotate

import (
	"expvar"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-annotate/internal/draw"
)

// Metrics counts overlay activity. It is safe for concurrent use.
//
// Call RegisterExpvar to publish the counters under /debug/vars:
//
//	m := annotate.NewMetrics()
//	m.RegisterExpvar()
//	o, _ := annotate.New(path, &annotate.Options{Metrics: m})
type Metrics struct {
	starts        atomic.Int64
	stops         atomic.Int64
	configReloads atomic.Int64
	errorsTotal   atomic.Int64
	eventsEmitted atomic.Int64
	gestures      atomic.Int64
	drawCalls     atomic.Int64
	skippedDraws  atomic.Int64
	clears        atomic.Int64
	undoSteps     atomic.Int64

	reloadLatencyNs    atomic.Int64
	reloadLatencyCount atomic.Int64

	running atomic.Int32

	registered atomic.Bool
}

// NewMetrics creates a zeroed Metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RegisterExpvar publishes the metrics with the expvar package. Only the
// first call on a Metrics has an effect; expvar names are process-wide, so
// at most one Metrics per process may be registered.
func (m *Metrics) RegisterExpvar() {
	if m.registered.Swap(true) {
		return
	}

	counters := map[string]*atomic.Int64{
		"annotate_starts_total":         &m.starts,
		"annotate_stops_total":          &m.stops,
		"annotate_config_reloads_total": &m.configReloads,
		"annotate_errors_total":         &m.errorsTotal,
		"annotate_events_emitted_total": &m.eventsEmitted,
		"annotate_gestures_total":       &m.gestures,
		"annotate_draw_calls_total":     &m.drawCalls,
		"annotate_skipped_draws_total":  &m.skippedDraws,
		"annotate_clears_total":         &m.clears,
		"annotate_undo_steps_total":     &m.undoSteps,
	}
	for name, c := range counters {
		expvar.Publish(name, expvar.Func(func() any { return c.Load() }))
	}
	expvar.Publish("annotate_running", expvar.Func(func() any { return m.running.Load() }))
	expvar.Publish("annotate_reload_latency_avg_ms", expvar.Func(func() any {
		return float64(safeDivide(m.reloadLatencyNs.Load(), m.reloadLatencyCount.Load())) / 1e6
	}))
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Starts:           m.starts.Load(),
		Stops:            m.stops.Load(),
		ConfigReloads:    m.configReloads.Load(),
		ErrorsTotal:      m.errorsTotal.Load(),
		EventsEmitted:    m.eventsEmitted.Load(),
		Gestures:         m.gestures.Load(),
		DrawCalls:        m.drawCalls.Load(),
		SkippedDraws:     m.skippedDraws.Load(),
		Clears:           m.clears.Load(),
		UndoSteps:        m.undoSteps.Load(),
		Running:          m.running.Load() > 0,
		ReloadLatencyAvg: safeDivide(m.reloadLatencyNs.Load(), m.reloadLatencyCount.Load()),
	}
}

// MetricsSnapshot is a point-in-time copy of all metrics.
type MetricsSnapshot struct {
	Starts        int64
	Stops         int64
	ConfigReloads int64
	ErrorsTotal   int64
	EventsEmitted int64
	// Gestures counts button presses that started a stroke or shape.
	Gestures int64
	// DrawCalls counts drawing primitives, previews included.
	DrawCalls int64
	// SkippedDraws counts primitives that had no surface to draw on.
	SkippedDraws int64
	Clears       int64
	// UndoSteps counts undo and redo steps that changed the canvas.
	UndoSteps int64

	Running bool

	ReloadLatencyAvg time.Duration
}

// IncrementStarts records a start operation.
func (m *Metrics) IncrementStarts() { m.starts.Add(1) }

// IncrementStops records a stop operation.
func (m *Metrics) IncrementStops() { m.stops.Add(1) }

// IncrementConfigReloads records a configuration reload.
func (m *Metrics) IncrementConfigReloads() { m.configReloads.Add(1) }

// IncrementErrors records an error occurrence.
func (m *Metrics) IncrementErrors() { m.errorsTotal.Add(1) }

// IncrementEventsEmitted records an event emission.
func (m *Metrics) IncrementEventsEmitted() { m.eventsEmitted.Add(1) }

// IncrementGestures records a press.
func (m *Metrics) IncrementGestures() { m.gestures.Add(1) }

// IncrementClears records a canvas clear.
func (m *Metrics) IncrementClears() { m.clears.Add(1) }

// IncrementUndoSteps records an undo or redo that changed the canvas.
func (m *Metrics) IncrementUndoSteps() { m.undoSteps.Add(1) }

// SetRunning updates the running state gauge.
func (m *Metrics) SetRunning(running bool) {
	if running {
		m.running.Store(1)
	} else {
		m.running.Store(0)
	}
}

// RecordReloadLatency records the time taken to load a configuration.
func (m *Metrics) RecordReloadLatency(d time.Duration) {
	m.reloadLatencyNs.Add(d.Nanoseconds())
	m.reloadLatencyCount.Add(1)
}

// recordDraw is a draw.Observer.
func (m *Metrics) recordDraw(ev draw.Event) {
	m.drawCalls.Add(1)
	if !ev.Drawn {
		m.skippedDraws.Add(1)
	}
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	for _, c := range []*atomic.Int64{
		&m.starts, &m.stops, &m.configReloads, &m.errorsTotal, &m.eventsEmitted,
		&m.gestures, &m.drawCalls, &m.skippedDraws, &m.clears, &m.undoSteps,
		&m.reloadLatencyNs, &m.reloadLatencyCount,
	} {
		c.Store(0)
	}
	m.running.Store(0)
}

func safeDivide(total, count int64) time.Duration {
	if count == 0 {
		return 0
	}
	return time.Duration(total / count)
}
