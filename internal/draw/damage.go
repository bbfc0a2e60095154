package draw

import "image"

// Invalidator receives repaint requests for the display.
type Invalidator interface {
	InvalidateRect(r image.Rectangle)
	InvalidateAll()
}

// DamageTracker accumulates repaint requests between two frames.
type DamageTracker struct {
	bounds image.Rectangle
	dirty  image.Rectangle
	full   bool
}

// NewDamageTracker tracks damage on a width x height display.
func NewDamageTracker(width, height int) *DamageTracker {
	return &DamageTracker{bounds: image.Rect(0, 0, width, height)}
}

// InvalidateRect marks r for repaint. Parts outside the display are dropped.
func (d *DamageTracker) InvalidateRect(r image.Rectangle) {
	r = r.Intersect(d.bounds)
	if r.Empty() {
		return
	}
	d.dirty = d.dirty.Union(r)
}

// InvalidateAll marks the whole display for repaint.
func (d *DamageTracker) InvalidateAll() {
	d.full = true
}

// Pending reports whether anything needs repainting.
func (d *DamageTracker) Pending() bool {
	return d.full || !d.dirty.Empty()
}

// Take returns the area to repaint and resets the tracker.
func (d *DamageTracker) Take() (image.Rectangle, bool) {
	defer func() {
		d.dirty = image.Rectangle{}
		d.full = false
	}()
	if d.full {
		return d.bounds, true
	}
	if d.dirty.Empty() {
		return image.Rectangle{}, false
	}
	return d.dirty, true
}

// Resize changes the display size and marks all of it dirty.
func (d *DamageTracker) Resize(width, height int) {
	d.bounds = image.Rect(0, 0, width, height)
	d.dirty = image.Rectangle{}
	d.full = true
}
