// Package undo keeps a bounded history of canvas snapshots.
package undo

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/opd-ai/go-annotate/internal/surface"
)

// DefaultDepth is the number of snapshots kept when none is configured.
const DefaultDepth = 4

// ErrNoCanvas is returned when a Ring is used without a canvas.
var ErrNoCanvas = errors.New("undo: no canvas")

// Allocator creates an empty surface the size of the canvas.
type Allocator func() surface.Surface

// Ring stores up to depth snapshots of a canvas in a circular buffer.
// Snap saves the canvas before a gesture; Undo and Redo swap the canvas with
// the neighbouring snapshot, so an undone state can be redone until the next
// Snap.
//
// Ring is not safe for concurrent use.
type Ring struct {
	canvas surface.Surface
	alloc  Allocator

	slots []surface.Surface
	// gestures[i] is the gesture that followed the snapshot in slots[i].
	gestures []uuid.UUID
	spare    surface.Surface

	head      int
	undoDepth int
	redoDepth int
}

// New creates a ring of the given depth over canvas. Snapshot surfaces are
// allocated lazily with alloc. A depth below 1 selects DefaultDepth.
func New(canvas surface.Surface, depth int, alloc Allocator) *Ring {
	if depth < 1 {
		depth = DefaultDepth
	}
	return &Ring{
		canvas: canvas,
		alloc:  alloc,
		slots:    make([]surface.Surface, depth),
		gestures: make([]uuid.UUID, depth),
	}
}

// Depth returns the capacity of the ring.
func (r *Ring) Depth() int { return len(r.slots) }

// CanUndo reports whether Undo would change the canvas.
func (r *Ring) CanUndo() bool { return r.undoDepth > 0 }

// CanRedo reports whether Redo would change the canvas.
func (r *Ring) CanRedo() bool { return r.redoDepth > 0 }

// Levels returns the number of undo and redo steps available.
func (r *Ring) Levels() (undo, redo int) { return r.undoDepth, r.redoDepth }

// Snap saves the canvas without naming the change that follows. Once the
// ring is full the oldest snapshot is overwritten. Any redo history is
// discarded.
func (r *Ring) Snap() error {
	return r.SnapGesture(uuid.Nil)
}

// SnapGesture is Snap for the canvas as it was before gesture.
func (r *Ring) SnapGesture(gesture uuid.UUID) error {
	if r.canvas == nil {
		return ErrNoCanvas
	}
	slot, err := r.slot(r.head)
	if err != nil {
		return err
	}
	if err := slot.CopyFrom(r.canvas); err != nil {
		return fmt.Errorf("snapshot canvas: %w", err)
	}
	r.gestures[r.head] = gesture

	r.head = (r.head + 1) % len(r.slots)
	r.undoDepth = min(r.undoDepth+1, len(r.slots))
	r.redoDepth = 0
	return nil
}

// Undo restores the canvas saved by the most recent Snap and reports whether
// there was anything to undo.
func (r *Ring) Undo() (bool, error) {
	if r.undoDepth == 0 {
		return false, nil
	}
	prev := (r.head - 1 + len(r.slots)) % len(r.slots)
	if err := r.swap(prev); err != nil {
		return false, fmt.Errorf("undo: %w", err)
	}
	r.head = prev
	r.undoDepth--
	r.redoDepth++
	return true, nil
}

// Redo reverts the last Undo and reports whether there was anything to redo.
func (r *Ring) Redo() (bool, error) {
	if r.redoDepth == 0 {
		return false, nil
	}
	if err := r.swap(r.head); err != nil {
		return false, fmt.Errorf("redo: %w", err)
	}
	r.head = (r.head + 1) % len(r.slots)
	r.undoDepth++
	r.redoDepth--
	return true, nil
}

// UndoGesture returns the gesture recorded for the step Undo would revert.
func (r *Ring) UndoGesture() (uuid.UUID, bool) {
	if r.undoDepth == 0 {
		return uuid.Nil, false
	}
	return r.gestures[(r.head-1+len(r.slots))%len(r.slots)], true
}

// RedoGesture returns the gesture recorded for the step Redo would reapply.
func (r *Ring) RedoGesture() (uuid.UUID, bool) {
	if r.redoDepth == 0 {
		return uuid.Nil, false
	}
	return r.gestures[r.head], true
}

// Reset forgets every snapshot without touching the canvas.
func (r *Ring) Reset() {
	r.head = 0
	r.undoDepth = 0
	r.redoDepth = 0
}

func (r *Ring) slot(i int) (surface.Surface, error) {
	if r.slots[i] == nil {
		s, err := r.allocate()
		if err != nil {
			return nil, err
		}
		r.slots[i] = s
	}
	return r.slots[i], nil
}

func (r *Ring) allocate() (surface.Surface, error) {
	if r.alloc == nil {
		return nil, errors.New("undo: no allocator")
	}
	s := r.alloc()
	if s == nil {
		return nil, errors.New("undo: allocator returned no surface")
	}
	return s, nil
}

// swap exchanges the canvas with slot i through the spare surface.
func (r *Ring) swap(i int) error {
	if r.canvas == nil {
		return ErrNoCanvas
	}
	if r.spare == nil {
		s, err := r.allocate()
		if err != nil {
			return err
		}
		r.spare = s
	}
	slot, err := r.slot(i)
	if err != nil {
		return err
	}
	if err := r.spare.CopyFrom(r.canvas); err != nil {
		return err
	}
	if err := r.canvas.CopyFrom(slot); err != nil {
		return err
	}
	return slot.CopyFrom(r.spare)
}
