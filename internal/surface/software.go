package surface

import (
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"
)

// SoftwareSurface rasterizes on the CPU with gogpu/gg. It backs headless
// sessions and pixel-exact tests.
//
// gg composites with source-over only, so the other operators rasterize a
// coverage mask of the path and blend it into the pixel buffer here.
type SoftwareSurface struct {
	pen
	dc  *gg.Context
	err error
}

// NewSoftwareSurface allocates a transparent surface of the given size.
func NewSoftwareSurface(width, height int) *SoftwareSurface {
	return &SoftwareSurface{
		pen: newPen(),
		dc:  gg.NewContext(width, height),
	}
}

// Size returns the surface dimensions in pixels.
func (s *SoftwareSurface) Size() (int, int) {
	return s.dc.Width(), s.dc.Height()
}

// Err returns the first rasterizer error, if any.
func (s *SoftwareSurface) Err() error {
	return s.err
}

// Image returns a snapshot of the surface.
func (s *SoftwareSurface) Image() image.Image {
	return s.dc.Image()
}

// RGBAAt returns the pixel at (x, y). Out of range pixels are transparent.
func (s *SoftwareSurface) RGBAAt(x, y int) color.RGBA {
	w, h := s.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return color.RGBA{}
	}
	d := s.dc.ResizeTarget().Data()
	i := (y*w + x) * 4
	return color.RGBA{R: d[i], G: d[i+1], B: d[i+2], A: d[i+3]}
}

// Stroke strokes the current path and clears it.
func (s *SoftwareSurface) Stroke() { s.render(true) }

// Fill fills the current path and clears it.
func (s *SoftwareSurface) Fill() { s.render(false) }

// CopyFrom replaces the content of s with src, which must be a
// SoftwareSurface of the same size.
func (s *SoftwareSurface) CopyFrom(src Surface) error {
	other, ok := src.(*SoftwareSurface)
	if !ok {
		return ErrIncompatibleSurface
	}
	sw, sh := s.Size()
	if ow, oh := other.Size(); ow != sw || oh != sh {
		return ErrIncompatibleSurface
	}
	copy(s.dc.ResizeTarget().Data(), other.dc.ResizeTarget().Data())
	return nil
}

// Clear makes the surface transparent.
func (s *SoftwareSurface) Clear() {
	s.dc.Clear()
}

func (s *SoftwareSurface) render(stroke bool) {
	defer s.path.reset()
	if s.path.empty() {
		return
	}

	if s.st.operator == OperatorOver {
		s.trace(s.dc, 0, 0)
		s.dc.SetColor(s.st.color)
		s.applyLine(s.dc)
		s.paint(s.dc, stroke)
		return
	}

	mask, bounds := s.coverage(stroke)
	if mask == nil {
		return
	}
	s.composite(mask, bounds)
}

func (s *SoftwareSurface) paint(dc *gg.Context, stroke bool) {
	var err error
	if stroke {
		err = dc.Stroke()
	} else {
		err = dc.Fill()
	}
	if err != nil && s.err == nil {
		s.err = err
	}
}

// trace replays the device-space path into dc, shifted by (-dx, -dy).
func (s *SoftwareSurface) trace(dc *gg.Context, dx, dy float64) {
	for _, sub := range s.path.subs {
		for i, pt := range sub.pts {
			if i == 0 {
				dc.MoveTo(pt.x-dx, pt.y-dy)
				continue
			}
			dc.LineTo(pt.x-dx, pt.y-dy)
		}
		if sub.closed {
			dc.ClosePath()
		}
	}
}

func (s *SoftwareSurface) applyLine(dc *gg.Context) {
	dc.SetLineWidth(s.st.lineWidth)
	switch s.st.lineCap {
	case LineCapRound:
		dc.SetLineCap(gg.LineCapRound)
	case LineCapSquare:
		dc.SetLineCap(gg.LineCapSquare)
	default:
		dc.SetLineCap(gg.LineCapButt)
	}
	switch s.st.lineJoin {
	case LineJoinRound:
		dc.SetLineJoin(gg.LineJoinRound)
	case LineJoinBevel:
		dc.SetLineJoin(gg.LineJoinBevel)
	default:
		dc.SetLineJoin(gg.LineJoinMiter)
	}
}

// coverage rasterizes the path in white on a scratch context covering only
// the path's extent and returns its alpha channel with the extent.
func (s *SoftwareSurface) coverage(stroke bool) ([]uint8, image.Rectangle) {
	minX, minY, maxX, maxY, ok := s.path.bounds()
	if !ok {
		return nil, image.Rectangle{}
	}

	margin := 1.0
	if stroke {
		margin += s.st.lineWidth / 2 * math.Sqrt2
		if s.st.lineJoin == LineJoinMiter {
			margin += s.st.lineWidth * 5
		}
	}
	w, h := s.Size()
	bounds := image.Rect(
		int(math.Floor(minX-margin)), int(math.Floor(minY-margin)),
		int(math.Ceil(maxX+margin)), int(math.Ceil(maxY+margin)),
	).Intersect(image.Rect(0, 0, w, h))
	if bounds.Empty() {
		return nil, image.Rectangle{}
	}

	tmp := gg.NewContext(bounds.Dx(), bounds.Dy())
	s.trace(tmp, float64(bounds.Min.X), float64(bounds.Min.Y))
	tmp.SetRGBA(1, 1, 1, 1)
	s.applyLine(tmp)
	s.paint(tmp, stroke)

	d := tmp.ResizeTarget().Data()
	mask := make([]uint8, bounds.Dx()*bounds.Dy())
	for i := range mask {
		mask[i] = d[i*4+3]
	}
	return mask, bounds
}

// composite blends the source color into the covered pixels using the
// current non-over operator. Pixels are premultiplied.
func (s *SoftwareSurface) composite(mask []uint8, bounds image.Rectangle) {
	w, _ := s.Size()
	d := s.dc.ResizeTarget().Data()
	c := s.st.color
	src := [4]float64{float64(c.R), float64(c.G), float64(c.B), float64(c.A)}
	sa := src[3] / 255

	bw := bounds.Dx()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cov := float64(mask[(y-bounds.Min.Y)*bw+(x-bounds.Min.X)]) / 255
			if cov == 0 {
				continue
			}
			i := (y*w + x) * 4
			da := float64(d[i+3]) / 255
			for ch := 0; ch < 4; ch++ {
				dst := float64(d[i+ch])
				var out float64
				switch s.st.operator {
				case OperatorClear:
					out = dst * (1 - cov)
				case OperatorSource:
					out = src[ch]*cov + dst*(1-cov)
				case OperatorAtop:
					out = src[ch]*cov*da + dst*(1-sa*cov)
				default:
					out = src[ch]*cov + dst*(1-sa*cov)
				}
				d[i+ch] = uint8(math.Round(math.Max(0, math.Min(255, out))))
			}
		}
	}
}
