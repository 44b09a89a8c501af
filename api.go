package mandel

import "context"

// Renderer produces the grayscale pixel buffer of a plane rectangle.
type Renderer interface {
	Render(ctx context.Context, b Bounds, p Plane) ([]uint8, error)
}

// Engine is the in-process Renderer. Workers is the number of bands an
// image is split into; zero or less means one per available CPU.
type Engine struct {
	Workers int
}

func (e Engine) Render(ctx context.Context, b Bounds, p Plane) ([]uint8, error) {
	return Render(ctx, b, p.UpperLeft, p.LowerRight, WithWorkers(e.Workers))
}

var _ Renderer = Engine{}
