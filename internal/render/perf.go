// Package render provides the Ebiten overlay window of go-annotate.
// This file implements frame timing, draw option pooling and drawing
// statistics used for debug output.
package render

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/opd-ai/go-annotate/internal/draw"
)

// FrameMetrics tracks the duration of overlay ticks and the resulting rate.
type FrameMetrics struct {
	periodFrames  atomic.Int64
	totalFrames   atomic.Int64
	totalTime     atomic.Int64 // nanoseconds
	lastFrameTime atomic.Int64 // nanoseconds
	minFrameTime  atomic.Int64
	maxFrameTime  atomic.Int64
	lastRate      atomic.Int64 // ticks per second * 1000
	periodStart   atomic.Int64 // Unix nanoseconds
	period        time.Duration
}

// NewFrameMetrics creates metrics that recompute the rate every period.
// A non-positive period means one second.
func NewFrameMetrics(period time.Duration) *FrameMetrics {
	if period <= 0 {
		period = time.Second
	}
	fm := &FrameMetrics{period: period}
	fm.Reset()
	return fm
}

// RecordFrame records one tick that took frameTime.
func (fm *FrameMetrics) RecordFrame(frameTime time.Duration) {
	n := frameTime.Nanoseconds()
	fm.periodFrames.Add(1)
	fm.totalFrames.Add(1)
	fm.totalTime.Add(n)
	fm.lastFrameTime.Store(n)

	for {
		cur := fm.minFrameTime.Load()
		if n >= cur || fm.minFrameTime.CompareAndSwap(cur, n) {
			break
		}
	}
	for {
		cur := fm.maxFrameTime.Load()
		if n <= cur || fm.maxFrameTime.CompareAndSwap(cur, n) {
			break
		}
	}

	now := time.Now().UnixNano()
	start := fm.periodStart.Load()
	elapsed := time.Duration(now - start)
	if elapsed >= fm.period && fm.periodStart.CompareAndSwap(start, now) {
		frames := fm.periodFrames.Swap(0)
		fm.lastRate.Store(int64(float64(frames) / elapsed.Seconds() * 1000))
	}
}

// FPS returns the tick rate measured over the last complete period.
func (fm *FrameMetrics) FPS() float64 {
	return float64(fm.lastRate.Load()) / 1000
}

// LastFrameTime returns the duration of the last tick.
func (fm *FrameMetrics) LastFrameTime() time.Duration {
	return time.Duration(fm.lastFrameTime.Load())
}

// MinFrameTime returns the shortest tick recorded, or zero before the first.
func (fm *FrameMetrics) MinFrameTime() time.Duration {
	if fm.totalFrames.Load() == 0 {
		return 0
	}
	return time.Duration(fm.minFrameTime.Load())
}

// MaxFrameTime returns the longest tick recorded.
func (fm *FrameMetrics) MaxFrameTime() time.Duration {
	return time.Duration(fm.maxFrameTime.Load())
}

// AverageFrameTime returns the mean tick duration since the last reset.
func (fm *FrameMetrics) AverageFrameTime() time.Duration {
	count := fm.totalFrames.Load()
	if count == 0 {
		return 0
	}
	return time.Duration(fm.totalTime.Load() / count)
}

// Reset clears all metrics.
func (fm *FrameMetrics) Reset() {
	fm.periodFrames.Store(0)
	fm.totalFrames.Store(0)
	fm.totalTime.Store(0)
	fm.lastFrameTime.Store(0)
	fm.minFrameTime.Store(int64(time.Hour))
	fm.maxFrameTime.Store(0)
	fm.lastRate.Store(0)
	fm.periodStart.Store(time.Now().UnixNano())
}

// DrawOptionsPool recycles ebiten.DrawImageOptions between frames.
type DrawOptionsPool struct {
	pool sync.Pool
}

// NewDrawOptionsPool creates a new DrawOptionsPool.
func NewDrawOptionsPool() *DrawOptionsPool {
	return &DrawOptionsPool{
		pool: sync.Pool{
			New: func() any {
				return &ebiten.DrawImageOptions{}
			},
		},
	}
}

// Get returns options reset to their zero state.
func (p *DrawOptionsPool) Get() *ebiten.DrawImageOptions {
	op := p.pool.Get().(*ebiten.DrawImageOptions)
	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.Blend = ebiten.BlendSourceOver
	op.Filter = ebiten.FilterNearest
	return op
}

// Put returns options to the pool.
func (p *DrawOptionsPool) Put(op *ebiten.DrawImageOptions) {
	if op != nil {
		p.pool.Put(op)
	}
}

// EventStats counts drawing events by kind. Record is a draw.Observer.
type EventStats struct {
	counts  [draw.EventPreview + 1]atomic.Int64
	skipped atomic.Int64
}

// NewEventStats creates an empty counter set.
func NewEventStats() *EventStats {
	return &EventStats{}
}

// Record counts ev.
func (s *EventStats) Record(ev draw.Event) {
	if ev.Kind < 0 || int(ev.Kind) >= len(s.counts) {
		return
	}
	s.counts[ev.Kind].Add(1)
	if !ev.Drawn {
		s.skipped.Add(1)
	}
}

// Count returns the number of events of kind k.
func (s *EventStats) Count(k draw.EventKind) int64 {
	if k < 0 || int(k) >= len(s.counts) {
		return 0
	}
	return s.counts[k].Load()
}

// Skipped returns the number of events that rendered nothing.
func (s *EventStats) Skipped() int64 {
	return s.skipped.Load()
}

// Reset zeroes every counter.
func (s *EventStats) Reset() {
	for i := range s.counts {
		s.counts[i].Store(0)
	}
	s.skipped.Store(0)
}
