package mandel

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestPixelToPoint(t *testing.T) {
	got := PixelToPoint(Bounds{W: 100, H: 200}, 25, 75, complex(-1.0, 1.0), complex(1.0, -1.0))
	if want := complex(-0.5, 0.25); got != want {
		t.Errorf("PixelToPoint = %v, want %v", got, want)
	}
}

func TestPixelToPointCorners(t *testing.T) {
	tests := []struct {
		name   string
		bounds Bounds
		ul, lr complex128
	}{
		{"unit", Bounds{W: 1, H: 1}, complex(-1, 1), complex(1, -1)},
		{"square", Bounds{W: 64, H: 48}, complex(-2, 1.5), complex(1, -1.5)},
		{"wide", Bounds{W: 1024, H: 512}, complex(-2.5, 1), complex(1.5, -1)},
		{"degenerate", Bounds{W: 16, H: 16}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PixelToPoint(tt.bounds, 0, 0, tt.ul, tt.lr); got != tt.ul {
				t.Errorf("pixel (0,0) = %v, want %v", got, tt.ul)
			}
			if got := PixelToPoint(tt.bounds, tt.bounds.W, tt.bounds.H, tt.ul, tt.lr); got != tt.lr {
				t.Errorf("pixel (%d,%d) = %v, want %v", tt.bounds.W, tt.bounds.H, got, tt.lr)
			}
		})
	}
}

func TestPixelToPointZeroBounds(t *testing.T) {
	p := PixelToPoint(Bounds{}, 1, 1, complex(-1, 1), complex(1, -1))
	if !cmplx.IsInf(p) && !cmplx.IsNaN(p) {
		t.Errorf("PixelToPoint with zero bounds = %v, want a non-finite value", p)
	}
}

func TestBoundsValid(t *testing.T) {
	tests := []struct {
		b    Bounds
		want bool
	}{
		{Bounds{W: 1, H: 1}, true},
		{Bounds{W: 1920, H: 1080}, true},
		{Bounds{W: math.MaxInt, H: 1}, true},
		{Bounds{W: 3037000499, H: 3037000499}, true},
		{Bounds{}, false},
		{Bounds{W: 0, H: 5}, false},
		{Bounds{W: 5, H: -1}, false},
		{Bounds{W: 3037000500, H: 3037000500}, false},
		{Bounds{W: math.MaxInt, H: 2}, false},
	}

	for _, tt := range tests {
		if got := tt.b.Valid(); got != tt.want {
			t.Errorf("%+v.Valid() = %v, want %v", tt.b, got, tt.want)
		}
	}
}

func TestEscapeTime(t *testing.T) {
	tests := []struct {
		c       complex128
		n       int
		escaped bool
	}{
		{c: 0, escaped: false},
		{c: -1, escaped: false},
		{c: -2, escaped: false},
		{c: 3, n: 1, escaped: true},
		{c: 1, n: 3, escaped: true},
		{c: complex(0, 3), n: 1, escaped: true},
	}

	for _, tt := range tests {
		n, escaped := EscapeTime(tt.c, Limit)
		if n != tt.n || escaped != tt.escaped {
			t.Errorf("EscapeTime(%v) = (%d, %v), want (%d, %v)", tt.c, n, escaped, tt.n, tt.escaped)
		}
	}
}

func TestEscapeTimeZeroLimit(t *testing.T) {
	if n, escaped := EscapeTime(100, 0); escaped {
		t.Errorf("EscapeTime with no iterations escaped at %d", n)
	}
}

func TestEscapeTimeMonotonic(t *testing.T) {
	points := []complex128{
		complex(-0.75, 0.1),
		complex(0.26, 0),
		complex(-0.7435, 0.1315),
		complex(0.3, 0.5),
		complex(-1.25, 0.02),
		complex(-0.1, 0.651),
	}
	limits := []int{1, 5, 20, 50, 100, 255, 1000}

	for _, c := range points {
		for i, lo := range limits {
			nLo, escLo := EscapeTime(c, lo)
			for _, hi := range limits[i+1:] {
				nHi, escHi := EscapeTime(c, hi)
				switch {
				case escLo && (!escHi || nHi != nLo):
					t.Errorf("c=%v: escaped at %d with limit %d, but (%d, %v) with limit %d", c, nLo, lo, nHi, escHi, hi)
				case !escLo && escHi && nHi < lo:
					t.Errorf("c=%v: no escape with limit %d, but escaped at %d < %d with limit %d", c, lo, nHi, lo, hi)
				}
			}
		}
	}
}

func TestEscapeTimeOutsideRadius(t *testing.T) {
	for _, r := range []float64{2.01, 2.5, 3, 10, 1000} {
		for k := range 16 {
			c := cmplx.Rect(r, float64(k)*cmplx.Phase(complex(0, 1))/4)
			n, escaped := EscapeTime(c, Limit)
			if !escaped {
				t.Fatalf("EscapeTime(%v) did not escape", c)
			}
			if n > 10 {
				t.Errorf("EscapeTime(%v) = %d, want a handful of iterations", c, n)
			}
		}
	}
}
