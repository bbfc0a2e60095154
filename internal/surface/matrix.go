package surface

// Matrix is a 2D affine transform laid out like cairo_matrix_t:
//
//	| XX  XY |   | x |   | X0 |
//	| YX  YY | * | y | + | Y0 |
type Matrix struct {
	XX, XY float64
	YX, YY float64
	X0, Y0 float64
}

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{XX: 1, YY: 1}
}

// Translate prepends a translation, as cairo_matrix_translate does.
func (m *Matrix) Translate(tx, ty float64) {
	m.X0 += m.XX*tx + m.XY*ty
	m.Y0 += m.YX*tx + m.YY*ty
}

// Scale prepends a scale, as cairo_matrix_scale does.
func (m *Matrix) Scale(sx, sy float64) {
	m.XX *= sx
	m.XY *= sy
	m.YX *= sx
	m.YY *= sy
}

// TransformPoint maps a user-space point to device space.
func (m Matrix) TransformPoint(x, y float64) (float64, float64) {
	return m.XX*x + m.XY*y + m.X0, m.YX*x + m.YY*y + m.Y0
}

// TransformDistance maps a vector, ignoring the translation.
func (m Matrix) TransformDistance(dx, dy float64) (float64, float64) {
	return m.XX*dx + m.XY*dy, m.YX*dx + m.YY*dy
}
