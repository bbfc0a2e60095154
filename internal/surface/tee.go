package surface

import (
	"errors"
	"image/color"
)

// Tee returns a Surface that applies every call to each of dsts. Size
// reports the first surface. Nil entries are skipped.
func Tee(dsts ...Surface) Surface {
	t := make(tee, 0, len(dsts))
	for _, d := range dsts {
		if d != nil {
			t = append(t, d)
		}
	}
	return t
}

type tee []Surface

func (t tee) Size() (int, int) {
	if len(t) == 0 {
		return 0, 0
	}
	return t[0].Size()
}

func (t tee) SetSourceColor(c color.RGBA) {
	for _, s := range t {
		s.SetSourceColor(c)
	}
}

func (t tee) SetLineWidth(w float64) {
	for _, s := range t {
		s.SetLineWidth(w)
	}
}

func (t tee) SetLineCap(c LineCap) {
	for _, s := range t {
		s.SetLineCap(c)
	}
}

func (t tee) SetLineJoin(j LineJoin) {
	for _, s := range t {
		s.SetLineJoin(j)
	}
}

func (t tee) SetOperator(op Operator) {
	for _, s := range t {
		s.SetOperator(op)
	}
}

func (t tee) MoveTo(x, y float64) {
	for _, s := range t {
		s.MoveTo(x, y)
	}
}

func (t tee) LineTo(x, y float64) {
	for _, s := range t {
		s.LineTo(x, y)
	}
}

func (t tee) Arc(xc, yc, radius, angle1, angle2 float64) {
	for _, s := range t {
		s.Arc(xc, yc, radius, angle1, angle2)
	}
}

func (t tee) ClosePath() {
	for _, s := range t {
		s.ClosePath()
	}
}

func (t tee) Stroke() {
	for _, s := range t {
		s.Stroke()
	}
}

func (t tee) Fill() {
	for _, s := range t {
		s.Fill()
	}
}

func (t tee) Save() {
	for _, s := range t {
		s.Save()
	}
}

func (t tee) Restore() {
	for _, s := range t {
		s.Restore()
	}
}

func (t tee) Translate(tx, ty float64) {
	for _, s := range t {
		s.Translate(tx, ty)
	}
}

func (t tee) Scale(sx, sy float64) {
	for _, s := range t {
		s.Scale(sx, sy)
	}
}

func (t tee) CopyFrom(src Surface) error {
	var errs []error
	for _, s := range t {
		if err := s.CopyFrom(src); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t tee) Clear() {
	for _, s := range t {
		s.Clear()
	}
}
