package mandel

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePair splits s at the first sep and parses both trimmed halves.
// It reports false when sep is missing or either half does not parse.
func ParsePair[T any](s string, sep byte, parse func(string) (T, error)) (T, T, bool) {
	var zero T

	left, right, found := strings.Cut(s, string(sep))
	if !found {
		return zero, zero, false
	}

	l, err := parse(strings.TrimSpace(left))
	if err != nil {
		return zero, zero, false
	}
	r, err := parse(strings.TrimSpace(right))
	if err != nil {
		return zero, zero, false
	}
	return l, r, true
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(s)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// ParseBounds parses a WIDTHxHEIGHT pixel size such as "1024x768".
func ParseBounds(s string) (Bounds, error) {
	w, h, ok := ParsePair(s, 'x', parseInt)
	if !ok {
		return Bounds{}, fmt.Errorf("bounds %q: %w", s, ErrSyntax)
	}

	b := Bounds{W: w, H: h}
	if !b.Valid() {
		return Bounds{}, fmt.Errorf("bounds %q: %w", s, ErrInvalidBounds)
	}
	return b, nil
}

// ParseComplex parses a RE,IM point such as "-1.0,1.0".
func ParseComplex(s string) (complex128, error) {
	re, im, ok := ParsePair(s, ',', parseFloat)
	if !ok {
		return 0, fmt.Errorf("complex %q: %w", s, ErrSyntax)
	}
	return complex(re, im), nil
}
