/*package mat implements the small dense matrices used to represent
rotations.
*/
package mat

// Matrix is a row-major dense matrix.
type Matrix struct {
	Vals          []float64
	Width, Height int
}

// NewMatrix creates a matrix which uses vals as its backing array.
func NewMatrix(vals []float64, width, height int) *Matrix {
	if width <= 0 {
		panic("width must be positive.")
	} else if height <= 0 {
		panic("height must be positive.")
	} else if width*height != len(vals) {
		panic("height * width must equal len(vals).")
	}

	return &Matrix{Vals: vals, Width: width, Height: height}
}

// Identity returns the n x n identity matrix.
func Identity(n int) *Matrix {
	m := NewMatrix(make([]float64, n*n), n, n)
	for i := 0; i < n; i++ {
		m.Vals[i*n+i] = 1
	}
	return m
}

// Mult returns the product m * b.
func (m *Matrix) Mult(b *Matrix) *Matrix {
	if m.Width != b.Height {
		panic("m.Width != b.Height")
	}

	out := NewMatrix(make([]float64, m.Height*b.Width), b.Width, m.Height)
	for i := 0; i < m.Height; i++ {
		for j := 0; j < b.Width; j++ {
			sum := 0.0
			for k := 0; k < m.Width; k++ {
				sum += m.Vals[i*m.Width+k] * b.Vals[k*b.Width+j]
			}
			out.Vals[i*out.Width+j] = sum
		}
	}
	return out
}
