package draw

import (
	"errors"
	"image"
	"testing"

	"github.com/opd-ai/go-annotate/internal/paint"
	"github.com/opd-ai/go-annotate/internal/session"
	"github.com/opd-ai/go-annotate/internal/stroke"
	"github.com/opd-ai/go-annotate/internal/surface"
)

func shapeSession(typ paint.Type, x, y int) *session.Session {
	ctx := paint.NewContext("shape", typ, 2, paint.Red.RGBA())
	s := &session.Session{Device: "mouse"}
	s.Begin(ctx, x, y, 2)
	return s
}

func TestShapeFor(t *testing.T) {
	tests := []struct {
		typ  paint.Type
		want Shape
		ok   bool
	}{
		{paint.Line, ShapeLine, true},
		{paint.Rectangle, ShapeRectangle, true},
		{paint.Ellipse, ShapeEllipse, true},
		{paint.Pen, 0, false},
		{paint.Eraser, 0, false},
	}
	for _, tt := range tests {
		got, ok := ShapeFor(tt.typ)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ShapeFor(%v) = %v, %v, want %v, %v", tt.typ, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPreviewFrame(t *testing.T) {
	inv := &invalidations{}
	r := NewRasterizer(inv, nil)
	p := NewPreview(r)
	s := shapeSession(paint.Rectangle, 5, 5)
	s.History.Prepend(20, 10, 2)

	var kinds []EventKind
	r.Observe(func(ev Event) { kinds = append(kinds, ev.Kind) })

	persistent, scratch := &recorder{}, &recorder{}
	if err := p.Frame(s, persistent, scratch, 50, 30); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}

	if scratch.copies != 1 {
		t.Errorf("scratch copies = %d, want 1", scratch.copies)
	}
	if inv.full != 1 {
		t.Errorf("full invalidations = %d, want 1", inv.full)
	}
	if len(persistent.calls) != 0 {
		t.Errorf("persistent received %d paint calls, want 0", len(persistent.calls))
	}
	if len(scratch.calls) != 1 {
		t.Fatalf("scratch received %d paint calls, want 1", len(scratch.calls))
	}
	want := [][2]float64{{5, 5}, {50, 5}, {50, 30}, {5, 30}}
	if !samePoints(scratch.calls[0].points, want) {
		t.Errorf("rectangle = %v, want %v", scratch.calls[0].points, want)
	}
	if !r.CanvasModified() {
		t.Error("CanvasModified() = false after a preview frame")
	}
	if len(kinds) != 2 || kinds[0] != EventPreview || kinds[1] != EventRectangle {
		t.Errorf("events = %v, want [preview rectangle]", kinds)
	}

	pts := s.History.Points()
	if len(pts) != 1 || pts[0] != (stroke.Point{X: 5, Y: 5, Width: 2}) {
		t.Errorf("history after frame = %v, want only the anchor", pts)
	}
}

func TestPreviewFrameWithArrows(t *testing.T) {
	r := NewRasterizer(nil, nil)
	p := NewPreview(r)

	ctx := paint.NewContext("arrow", paint.Line, 4, paint.Red.RGBA())
	ctx.ArrowSize = 1
	ctx.ArrowPosition = stroke.ArrowBoth
	s := &session.Session{Device: "mouse"}
	s.Begin(ctx, 10, 10, 4)

	scratch := &recorder{}
	for i := 0; i < 2; i++ {
		scratch.calls = nil
		if err := p.Frame(s, &recorder{}, scratch, 60, 10); err != nil {
			t.Fatalf("Frame() error = %v", err)
		}
		// line, then erase, fill and outline for each end
		if len(scratch.calls) != 7 {
			t.Errorf("frame %d: paint calls = %d, want 7", i, len(scratch.calls))
		}
	}
	if n := s.History.Len(); n != 1 {
		t.Errorf("history length = %d, want 1", n)
	}
}

func TestPreviewFrameEmptyHistoryPanics(t *testing.T) {
	p := NewPreview(NewRasterizer(nil, nil))
	s := shapeSession(paint.Line, 0, 0)
	s.History.Clear()

	defer func() {
		if recover() == nil {
			t.Error("Frame() on an empty history did not panic")
		}
	}()
	_ = p.Frame(s, &recorder{}, &recorder{}, 1, 1)
}

func TestPreviewFrameRejectsPen(t *testing.T) {
	p := NewPreview(NewRasterizer(nil, nil))
	s := shapeSession(paint.Pen, 0, 0)
	if err := p.Frame(s, &recorder{}, &recorder{}, 1, 1); err == nil {
		t.Error("Frame() with a pen succeeded, want error")
	}
}

func TestPreviewFrameCopyError(t *testing.T) {
	errCopy := errors.New("copy failed")
	p := NewPreview(NewRasterizer(nil, nil))
	s := shapeSession(paint.Ellipse, 0, 0)

	scratch := &recorder{copyErr: errCopy}
	err := p.Frame(s, &recorder{}, scratch, 10, 10)
	if !errors.Is(err, errCopy) {
		t.Errorf("Frame() error = %v, want wrapping %v", err, errCopy)
	}
	if len(scratch.calls) != 0 {
		t.Errorf("scratch painted after a failed restore")
	}
}

func TestPreviewCommit(t *testing.T) {
	inv := &invalidations{}
	r := NewRasterizer(inv, nil)
	p := NewPreview(r)
	s := shapeSession(paint.Line, 5, 5)

	persistent := &recorder{}
	damage, err := p.Commit(s, persistent, 50, 30)
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if want := boxDamage(image.Pt(5, 5), image.Pt(50, 30), 2); damage != want {
		t.Errorf("Commit() damage = %v, want %v", damage, want)
	}
	if len(persistent.calls) != 1 {
		t.Errorf("persistent paint calls = %d, want 1", len(persistent.calls))
	}
	if persistent.copies != 0 || inv.full != 0 {
		t.Errorf("commit copied or fully invalidated: copies %d full %d", persistent.copies, inv.full)
	}
}

func pixelsEqual(t *testing.T, a, b *surface.SoftwareSurface) bool {
	t.Helper()
	w, h := a.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if a.RGBAAt(x, y) != b.RGBAAt(x, y) {
				t.Logf("first difference at (%d, %d): %v != %v", x, y, a.RGBAAt(x, y), b.RGBAAt(x, y))
				return false
			}
		}
	}
	return true
}

func TestPreviewFramesDoNotAccumulate(t *testing.T) {
	for _, typ := range []paint.Type{paint.Line, paint.Rectangle, paint.Ellipse} {
		t.Run(typ.String(), func(t *testing.T) {
			r := NewRasterizer(nil, nil)
			p := NewPreview(r)

			persistent := surface.NewSoftwareSurface(80, 60)
			persistent.SetSourceColor(paint.Blue.RGBA())
			persistent.SetLineWidth(3)
			persistent.MoveTo(0, 50)
			persistent.LineTo(80, 50)
			persistent.Stroke()

			before := surface.NewSoftwareSurface(80, 60)
			if err := before.CopyFrom(persistent); err != nil {
				t.Fatal(err)
			}

			dragged := surface.NewSoftwareSurface(80, 60)
			s := shapeSession(typ, 5, 5)
			for _, pt := range []image.Point{{20, 10}, {40, 25}, {50, 30}} {
				if err := p.Frame(s, persistent, dragged, pt.X, pt.Y); err != nil {
					t.Fatalf("Frame(%v) error = %v", pt, err)
				}
			}

			direct := surface.NewSoftwareSurface(80, 60)
			if err := p.Frame(shapeSession(typ, 5, 5), persistent, direct, 50, 30); err != nil {
				t.Fatalf("Frame() error = %v", err)
			}

			if !pixelsEqual(t, dragged, direct) {
				t.Error("scratch after several frames differs from a single frame")
			}
			if !pixelsEqual(t, persistent, before) {
				t.Error("persistent surface changed during preview")
			}
		})
	}
}
