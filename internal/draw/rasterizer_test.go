package draw

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/opd-ai/go-annotate/internal/paint"
	"github.com/opd-ai/go-annotate/internal/session"
	"github.com/opd-ai/go-annotate/internal/stroke"
	"github.com/opd-ai/go-annotate/internal/surface"
)

func newSession(typ paint.Type, width int) *session.Session {
	ctx := paint.NewContext("test", typ, width, paint.Red.RGBA())
	s := &session.Session{Device: "mouse"}
	s.Begin(ctx, 0, 0, width)
	return s
}

func TestBoxDamage(t *testing.T) {
	tests := []struct {
		name   string
		p1, p2 image.Point
		width  int
		want   image.Rectangle
	}{
		{"horizontal line", image.Pt(0, 0), image.Pt(10, 0), 4, image.Rect(-2, -2, 12, 6)},
		{"reversed points", image.Pt(10, 0), image.Pt(0, 0), 4, image.Rect(-2, -2, 12, 6)},
		{"odd width", image.Pt(5, 5), image.Pt(50, 30), 3, image.Rect(4, 4, 52, 32)},
		{"single point", image.Pt(7, 7), image.Pt(7, 7), 2, image.Rect(6, 6, 8, 8)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := boxDamage(tt.p1, tt.p2, tt.width); got != tt.want {
				t.Errorf("boxDamage(%v, %v, %d) = %v, want %v", tt.p1, tt.p2, tt.width, got, tt.want)
			}
		})
	}
}

func TestDrawLineDamage(t *testing.T) {
	inv := &invalidations{}
	r := NewRasterizer(inv, nil)
	s := newSession(paint.Pen, 4)
	dst := &recorder{}

	got := r.DrawLine(s, dst, image.Pt(0, 0), image.Pt(10, 0))

	if got.Min.X != -2 || got.Min.Y != -2 || got.Dx() != 14 || got.Dy() != 8 {
		t.Errorf("damage = %v, want x=-2 y=-2 w=14 h=8", got)
	}
	if len(inv.rects) != 1 || inv.rects[0] != got {
		t.Errorf("invalidated %v, want exactly [%v]", inv.rects, got)
	}
	if inv.full != 0 {
		t.Errorf("full invalidations = %d, want 0", inv.full)
	}
	if !r.CanvasModified() || !r.SomethingPainted() {
		t.Errorf("flags = modified %v painted %v, want both set", r.CanvasModified(), r.SomethingPainted())
	}
}

func TestDrawLinePen(t *testing.T) {
	r := NewRasterizer(nil, nil)
	s := newSession(paint.Pen, 6)
	dst := &recorder{}

	r.DrawLine(s, dst, image.Pt(1, 2), image.Pt(30, 40))

	if len(dst.calls) != 1 {
		t.Fatalf("paint calls = %d, want 1", len(dst.calls))
	}
	c := dst.calls[0]
	if c.fill {
		t.Error("line was filled, want stroked")
	}
	if c.width != 6 || c.cap != surface.LineCapRound || c.join != surface.LineJoinRound {
		t.Errorf("pen = width %v cap %v join %v, want 6 round round", c.width, c.cap, c.join)
	}
	if c.color != paint.Red.RGBA() || c.operator != surface.OperatorOver {
		t.Errorf("color, operator = %v, %v, want red, over", c.color, c.operator)
	}
	want := [][2]float64{{1, 2}, {30, 40}}
	if len(c.points) != 2 || c.points[0] != want[0] || c.points[1] != want[1] {
		t.Errorf("points = %v, want %v", c.points, want)
	}
}

func TestToolOperators(t *testing.T) {
	tests := []struct {
		typ  paint.Type
		want surface.Operator
	}{
		{paint.Pen, surface.OperatorOver},
		{paint.Eraser, surface.OperatorClear},
		{paint.Recolor, surface.OperatorAtop},
		{paint.Line, surface.OperatorOver},
	}
	for _, tt := range tests {
		r := NewRasterizer(nil, nil)
		dst := &recorder{}
		r.DrawLine(newSession(tt.typ, 3), dst, image.Pt(0, 0), image.Pt(5, 5))
		if got := dst.calls[0].operator; got != tt.want {
			t.Errorf("%v operator = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestSwitchColorOverridesTool(t *testing.T) {
	r := NewRasterizer(nil, nil)
	s := newSession(paint.Pen, 3)
	dst := &recorder{}

	r.SetSwitchColor(paint.Blue.RGBA())
	r.DrawLine(s, dst, image.Pt(0, 0), image.Pt(5, 5))
	r.ClearSwitchColor()
	r.DrawLine(s, dst, image.Pt(0, 0), image.Pt(5, 5))

	if dst.calls[0].color != paint.Blue.RGBA() {
		t.Errorf("color with switch color = %v, want blue", dst.calls[0].color)
	}
	if dst.calls[1].color != paint.Red.RGBA() {
		t.Errorf("color after ClearSwitchColor() = %v, want red", dst.calls[1].color)
	}
}

func TestNilSurfaceStillPaints(t *testing.T) {
	inv := &invalidations{}
	r := NewRasterizer(inv, nil)
	s := newSession(paint.Pen, 4)

	var events []Event
	r.Observe(func(ev Event) { events = append(events, ev) })

	got := r.DrawRectangle(s, nil, image.Pt(0, 0), image.Pt(10, 10))

	if got != boxDamage(image.Pt(0, 0), image.Pt(10, 10), 4) {
		t.Errorf("damage = %v, want the box damage", got)
	}
	if !r.SomethingPainted() {
		t.Error("SomethingPainted() = false, want true")
	}
	if r.CanvasModified() {
		t.Error("CanvasModified() = true without a surface")
	}
	if len(inv.rects) != 0 {
		t.Errorf("invalidated %v without a surface", inv.rects)
	}
	if len(events) != 1 || events[0].Drawn || events[0].Kind != EventRectangle {
		t.Errorf("events = %+v, want one undrawn rectangle event", events)
	}
}

func TestResetFlags(t *testing.T) {
	r := NewRasterizer(nil, nil)
	r.DrawLine(newSession(paint.Pen, 2), &recorder{}, image.Pt(0, 0), image.Pt(1, 1))
	r.ResetFlags()
	if r.CanvasModified() || r.SomethingPainted() {
		t.Error("flags survived ResetFlags()")
	}
}

func TestDrawRectanglePath(t *testing.T) {
	r := NewRasterizer(nil, nil)
	dst := &recorder{}
	r.DrawRectangle(newSession(paint.Rectangle, 2), dst, image.Pt(5, 5), image.Pt(50, 30))

	c := dst.calls[0]
	want := [][2]float64{{5, 5}, {50, 5}, {50, 30}, {5, 30}}
	if len(c.points) != len(want) {
		t.Fatalf("points = %v, want %v", c.points, want)
	}
	for i := range want {
		if c.points[i] != want[i] {
			t.Errorf("point %d = %v, want %v", i, c.points[i], want[i])
		}
	}
	if !c.closed || c.fill {
		t.Errorf("closed = %v fill = %v, want a closed stroked outline", c.closed, c.fill)
	}
}

func TestDrawEllipseRestoresTransform(t *testing.T) {
	r := NewRasterizer(nil, nil)
	dst := &recorder{}
	r.DrawEllipse(newSession(paint.Ellipse, 2), dst, image.Pt(0, 0), image.Pt(40, 20))

	if dst.saves != 1 || dst.restores != 1 || dst.arcs != 1 {
		t.Errorf("saves, restores, arcs = %d, %d, %d, want 1, 1, 1", dst.saves, dst.restores, dst.arcs)
	}
	if len(dst.calls) != 1 || dst.calls[0].width != 2 {
		t.Errorf("calls = %+v, want one stroke of width 2", dst.calls)
	}
}

func TestDrawEllipseDegenerate(t *testing.T) {
	r := NewRasterizer(nil, nil)
	dst := &recorder{}
	r.DrawEllipse(newSession(paint.Ellipse, 2), dst, image.Pt(0, 10), image.Pt(40, 10))

	if dst.arcs != 0 {
		t.Errorf("arcs = %d for a flat box, want 0", dst.arcs)
	}
	if len(dst.calls) != 1 || len(dst.calls[0].points) != 2 {
		t.Errorf("calls = %+v, want a single line", dst.calls)
	}
}

func TestDrawArrowGeometry(t *testing.T) {
	r := NewRasterizer(nil, nil)
	s := newSession(paint.Pen, 3)
	dst := &recorder{}

	r.DrawArrow(s, dst, image.Pt(100, 50), 8, 0)

	if len(dst.calls) != 3 {
		t.Fatalf("paint calls = %d, want erase, fill, outline", len(dst.calls))
	}

	erase, fill, outline := dst.calls[0], dst.calls[1], dst.calls[2]

	if erase.operator != surface.OperatorClear || erase.fill || erase.width != 4 {
		t.Errorf("erase = %+v, want a clear stroke of width 4", erase)
	}
	wantErase := [][2]float64{{100, 50}, {84, 50}}
	if !samePoints(erase.points, wantErase) {
		t.Errorf("erase points = %v, want %v", erase.points, wantErase)
	}

	wantHead := [][2]float64{{100, 50}, {72, 38}, {76, 50}, {72, 62}}
	if !fill.fill || fill.operator != surface.OperatorOver || fill.color != paint.Red.RGBA() {
		t.Errorf("fill = %+v, want a red fill with over", fill)
	}
	if !samePoints(fill.points, wantHead) {
		t.Errorf("head = %v, want %v", fill.points, wantHead)
	}

	if outline.fill || outline.width != 1 || outline.color != (color.RGBA{A: 255}) || !outline.closed {
		t.Errorf("outline = %+v, want a closed black stroke of width 1", outline)
	}
	if !samePoints(outline.points, wantHead) {
		t.Errorf("outline = %v, want %v", outline.points, wantHead)
	}

	if dst.color != paint.Red.RGBA() {
		t.Errorf("source color after arrow = %v, want the tool color", dst.color)
	}
}

func TestDrawArrowDamageContainsHead(t *testing.T) {
	r := NewRasterizer(nil, nil)
	s := newSession(paint.Pen, 3)

	for _, dir := range []float64{0, math.Pi / 4, math.Pi / 2, math.Pi, -math.Pi / 3} {
		damage := r.DrawArrow(s, nil, image.Pt(100, 100), 10, dir)
		tip := image.Rect(100-4*5-1, 100-4*5-1, 100+4*5+1, 100+4*5+1)
		if !tip.In(damage) {
			t.Errorf("direction %v: damage %v does not cover %v", dir, damage, tip)
		}
		for _, v := range arrowhead(image.Pt(100, 100), 5, dir) {
			pt := image.Pt(int(math.Floor(v[0])), int(math.Floor(v[1])))
			if !pt.In(damage) {
				t.Errorf("direction %v: vertex %v outside damage %v", dir, v, damage)
			}
		}
	}
}

func TestDrawArrowDamage(t *testing.T) {
	r := NewRasterizer(nil, nil)

	// Pointing along +x the back corners reach 3w behind the origin.
	got := r.DrawArrow(newSession(paint.Pen, 3), nil, image.Pt(100, 100), 10, 0)
	if want := image.Rect(64, 79, 121, 121); got != want {
		t.Errorf("DrawArrow() damage = %v, want %v", got, want)
	}

	// Wide heads and wide strokes: the diagonal corners and the erase stroke
	// leave the tip square.
	tests := []struct {
		name       string
		width      int
		strokeW    int
		directions []float64
	}{
		{"wide head", 40, 3, []float64{0, math.Pi / 4, 3 * math.Pi / 4, -math.Pi / 4}},
		{"wide stroke", 4, 30, []float64{0, math.Pi / 2, math.Pi}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(paint.Pen, tt.strokeW)
			w := tt.width / 2
			for _, dir := range tt.directions {
				anchor := image.Pt(200, 200)
				damage := r.DrawArrow(s, nil, anchor, tt.width, dir)
				for _, v := range arrowhead(anchor, w, dir) {
					box := image.Rect(int(math.Floor(v[0]))-1, int(math.Floor(v[1]))-1, int(math.Ceil(v[0]))+1, int(math.Ceil(v[1]))+1)
					if !box.In(damage) {
						t.Errorf("direction %v: vertex %v outside damage %v", dir, v, damage)
					}
				}
				o := arrowOrigin(anchor, w, dir)
				half := (s.Width + 1) / 2
				end := image.Rect(int(o[0])-half, int(o[1])-half, int(o[0])+half, int(o[1])+half)
				if !end.In(damage) {
					t.Errorf("direction %v: erase stroke end %v outside damage %v", dir, end, damage)
				}
			}
		})
	}
}

func samePoints(got, want [][2]float64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if math.Abs(got[i][0]-want[i][0]) > 1e-9 || math.Abs(got[i][1]-want[i][1]) > 1e-9 {
			return false
		}
	}
	return true
}

// penStroke returns a pen session with a long straight stroke along x.
func penStroke(typ paint.Type, pos stroke.ArrowPosition) *session.Session {
	ctx := paint.NewContext("arrow pen", typ, 4, paint.Red.RGBA())
	ctx.ArrowSize = 1
	ctx.ArrowPosition = pos

	s := &session.Session{Device: "stylus"}
	s.Begin(ctx, 0, 0, 4)
	for x := 5; x <= 60; x += 5 {
		s.History.Prepend(x, 0, 4)
	}
	return s
}

func TestDrawArrowWhenApplicableStartLatch(t *testing.T) {
	r := NewRasterizer(nil, nil)
	s := penStroke(paint.Pen, stroke.ArrowBoth)
	dst := &recorder{}

	if _, ok := r.DrawArrowWhenApplicable(s, dst, stroke.ArrowStart); !ok {
		t.Fatal("first start arrow not drawn")
	}
	if !s.StartArrowPainted() {
		t.Error("latch not set after start arrow")
	}
	if _, ok := r.DrawArrowWhenApplicable(s, dst, stroke.ArrowStart); ok {
		t.Error("second start arrow drawn within the same gesture")
	}

	s.CleanupContext()
	if _, ok := r.DrawArrowWhenApplicable(s, dst, stroke.ArrowStart); !ok {
		t.Error("start arrow not drawn after CleanupContext()")
	}
}

func TestDrawArrowWhenApplicableShapesRedraw(t *testing.T) {
	r := NewRasterizer(nil, nil)
	s := penStroke(paint.Line, stroke.ArrowStart)
	dst := &recorder{}

	for i := 0; i < 3; i++ {
		if _, ok := r.DrawArrowWhenApplicable(s, dst, stroke.ArrowStart); !ok {
			t.Fatalf("call %d: line start arrow not drawn", i)
		}
	}
}

func TestDrawArrowWhenApplicablePositions(t *testing.T) {
	r := NewRasterizer(nil, nil)
	dst := &recorder{}

	// Start arrow at the tail (0,0) points back along -x; end arrow at the
	// head (60,0) points along +x.
	s := penStroke(paint.Pen, stroke.ArrowBoth)
	if d, ok := r.DrawArrowWhenApplicable(s, dst, stroke.ArrowStart); !ok || !image.Pt(0, 0).In(d) {
		t.Errorf("start arrow damage = %v, %v, want around (0,0)", d, ok)
	}
	if d, ok := r.DrawArrowWhenApplicable(s, dst, stroke.ArrowEnd); !ok || !image.Pt(60, 0).In(d) {
		t.Errorf("end arrow damage = %v, %v, want around (60,0)", d, ok)
	}

	endOnly := penStroke(paint.Pen, stroke.ArrowEnd)
	if _, ok := r.DrawArrowWhenApplicable(endOnly, dst, stroke.ArrowStart); ok {
		t.Error("start arrow drawn for an end-only tool")
	}

	noSize := penStroke(paint.Pen, stroke.ArrowBoth)
	noSize.Context.ArrowSize = 0
	if _, ok := r.DrawArrowWhenApplicable(noSize, dst, stroke.ArrowEnd); ok {
		t.Error("arrow drawn with arrow size 0")
	}
}

func TestDrawArrowWhenApplicableShortStroke(t *testing.T) {
	r := NewRasterizer(nil, nil)
	ctx := paint.NewContext("pen", paint.Pen, 4, paint.Red.RGBA())
	ctx.ArrowSize = 1
	ctx.ArrowPosition = stroke.ArrowEnd

	s := &session.Session{Device: "stylus"}
	s.Begin(ctx, 0, 0, 4)
	s.History.Prepend(1, 0, 4)

	if _, ok := r.DrawArrowWhenApplicable(s, &recorder{}, stroke.ArrowEnd); ok {
		t.Error("arrow drawn on a stroke shorter than the head")
	}
	if r.SomethingPainted() {
		t.Error("SomethingPainted() = true although nothing was drawn")
	}
}
