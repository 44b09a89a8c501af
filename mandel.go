package mandel

import (
	"errors"
	"math"
)

// Limit is the iteration cap used for every rendered pixel.
const Limit = 255

// DefaultWorkers is the number of bands RenderConcurrent splits an image into.
const DefaultWorkers = 8

var (
	ErrInvalidBounds = errors.New("bounds must be positive")
	ErrSyntax        = errors.New("invalid syntax")
	ErrUnknownFormat = errors.New("unknown image format")
)

// Bounds is the size of a pixel grid.
type Bounds struct {
	W, H int
}

// Valid reports whether both sides are positive and W*H fits in an int.
func (b Bounds) Valid() bool {
	return b.W > 0 && b.H > 0 && b.W <= math.MaxInt/b.H
}

// Pixels returns the length of a buffer covering the whole grid.
func (b Bounds) Pixels() int {
	return b.W * b.H
}

// Plane is the visible rectangle of the complex plane.
// UpperLeft normally has the smaller real and the larger imaginary part.
type Plane struct {
	UpperLeft, LowerRight complex128
}

// Band is a full-width horizontal strip of the output buffer.
// Pix aliases the parent buffer and is never shared with another band.
type Band struct {
	Index  int
	Top    int
	Bounds Bounds
	Plane  Plane
	Pix    []uint8
}

// PixelToPoint maps pixel (col, row) of a grid of size b onto the plane
// spanned by ul and lr. Pixel (0, 0) maps to ul and pixel (b.W, b.H) to lr.
// Zero bounds yield non-finite results.
func PixelToPoint(b Bounds, col, row int, ul, lr complex128) complex128 {
	w := real(lr) - real(ul)
	h := imag(ul) - imag(lr)

	return complex(
		real(ul)+float64(col)*(w/float64(b.W)),
		imag(ul)-float64(row)*(h/float64(b.H)),
	)
}

// EscapeTime reports the iteration at which z = z*z + c, started at zero,
// first leaves the circle |z|² = 8. It returns false when c survives limit
// iterations and is treated as a member of the set.
func EscapeTime(c complex128, limit int) (int, bool) {
	z := complex(0, 0)
	for i := range limit {
		if real(z)*real(z)+imag(z)*imag(z) > 8 {
			return i, true
		}
		z = z*z + c
	}
	return 0, false
}

// Regions are named views of well-known parts of the set.
var Regions = map[string]Plane{
	"full":          {UpperLeft: complex(-2.2, 1.2), LowerRight: complex(0.8, -1.2)},
	"seahorse":      {UpperLeft: complex(-0.8, 0.15), LowerRight: complex(-0.7, 0.05)},
	"elephant":      {UpperLeft: complex(-1.85, -0.02), LowerRight: complex(-1.75, -0.10)},
	"spiral":        {UpperLeft: complex(-0.7435, 0.1325), LowerRight: complex(-0.7420, 0.1310)},
	"triple-spiral": {UpperLeft: complex(-0.7480, 0.0980), LowerRight: complex(-0.7450, 0.0950)},
	"dragon":        {UpperLeft: complex(-0.7400, 0.1850), LowerRight: complex(-0.7350, 0.1800)},

	// minibrot sitting in a spiral arm near the real axis
	"mini-spiral": {UpperLeft: complex(-1.7390, -0.0220), LowerRight: complex(-1.7375, -0.0235)},
}
