package surface

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// whiteImage is the 1x1 texture triangles are drawn with; vertex colors
// tint it.
var whiteImage = func() *ebiten.Image {
	img := ebiten.NewImage(1, 1)
	img.Fill(color.White)
	return img
}()

// EbitenSurface draws on an offscreen *ebiten.Image on the GPU.
type EbitenSurface struct {
	pen
	img       *ebiten.Image
	antialias bool
}

// NewEbitenSurface allocates a transparent surface of the given size.
func NewEbitenSurface(width, height int) *EbitenSurface {
	return &EbitenSurface{
		pen:       newPen(),
		img:       ebiten.NewImage(width, height),
		antialias: true,
	}
}

// Image returns the backing image for compositing onto the screen.
func (s *EbitenSurface) Image() *ebiten.Image {
	return s.img
}

// SetAntialias toggles antialiasing of strokes and fills.
func (s *EbitenSurface) SetAntialias(on bool) {
	s.antialias = on
}

// Size returns the surface dimensions in pixels.
func (s *EbitenSurface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Stroke strokes the current path and clears it.
func (s *EbitenSurface) Stroke() {
	defer s.path.reset()
	if s.path.empty() {
		return
	}

	vp := s.vectorPath()
	vertices, indices := vp.AppendVerticesAndIndicesForStroke(nil, nil, s.strokeOptions())
	s.drawTriangles(vertices, indices)
}

// Fill fills the current path with the non-zero rule and clears it.
func (s *EbitenSurface) Fill() {
	defer s.path.reset()
	if s.path.empty() {
		return
	}

	vp := s.vectorPath()
	vertices, indices := vp.AppendVerticesAndIndicesForFilling(nil, nil)
	s.drawTriangles(vertices, indices)
}

// CopyFrom replaces the content of s with src, which must be an
// EbitenSurface of the same size.
func (s *EbitenSurface) CopyFrom(src Surface) error {
	other, ok := src.(*EbitenSurface)
	if !ok {
		return ErrIncompatibleSurface
	}
	if w, h := other.Size(); w != s.img.Bounds().Dx() || h != s.img.Bounds().Dy() {
		return ErrIncompatibleSurface
	}
	if other == s {
		return nil
	}

	s.img.DrawImage(other.img, &ebiten.DrawImageOptions{Blend: ebiten.BlendCopy})
	return nil
}

// Clear makes the surface transparent.
func (s *EbitenSurface) Clear() {
	s.img.Clear()
}

func (s *EbitenSurface) vectorPath() *vector.Path {
	var vp vector.Path
	for _, sub := range s.path.subs {
		for i, pt := range sub.pts {
			if i == 0 {
				vp.MoveTo(float32(pt.x), float32(pt.y))
				continue
			}
			vp.LineTo(float32(pt.x), float32(pt.y))
		}
		if sub.closed {
			vp.Close()
		}
	}
	return &vp
}

func (s *EbitenSurface) strokeOptions() *vector.StrokeOptions {
	opts := &vector.StrokeOptions{
		Width:      float32(s.st.lineWidth),
		MiterLimit: 10,
	}
	switch s.st.lineCap {
	case LineCapButt:
		opts.LineCap = vector.LineCapButt
	case LineCapRound:
		opts.LineCap = vector.LineCapRound
	case LineCapSquare:
		opts.LineCap = vector.LineCapSquare
	}
	switch s.st.lineJoin {
	case LineJoinMiter:
		opts.LineJoin = vector.LineJoinMiter
	case LineJoinRound:
		opts.LineJoin = vector.LineJoinRound
	case LineJoinBevel:
		opts.LineJoin = vector.LineJoinBevel
	}
	return opts
}

func (s *EbitenSurface) drawTriangles(vertices []ebiten.Vertex, indices []uint16) {
	// Vertex colors are premultiplied, like color.RGBA.
	c := s.st.color
	if s.st.operator == OperatorClear {
		c = color.RGBA{A: 255}
	}
	r, g, b, a := float32(c.R)/255, float32(c.G)/255, float32(c.B)/255, float32(c.A)/255
	for i := range vertices {
		vertices[i].SrcX, vertices[i].SrcY = 0.5, 0.5
		vertices[i].ColorR = r
		vertices[i].ColorG = g
		vertices[i].ColorB = b
		vertices[i].ColorA = a
	}

	s.img.DrawTriangles(vertices, indices, whiteImage, &ebiten.DrawTrianglesOptions{
		AntiAlias: s.antialias,
		FillRule:  ebiten.FillRuleNonZero,
		Blend:     s.blend(),
	})
}

// blend maps the operator to an Ebiten blend mode.
func (s *EbitenSurface) blend() ebiten.Blend {
	switch s.st.operator {
	case OperatorClear:
		// Destination-out with an opaque source erases the covered area
		// and keeps antialiased edges partially transparent.
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorZero,
			BlendFactorSourceAlpha:      ebiten.BlendFactorZero,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case OperatorAtop:
		return ebiten.BlendSourceAtop
	case OperatorSource:
		return ebiten.BlendCopy
	default:
		return ebiten.BlendSourceOver
	}
}
