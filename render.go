package mandel

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// RenderBand fills pix, a W*H row-major buffer, with the escape-time
// intensity of every pixel of b. Coordinates are taken in the band's own
// frame: pixel (0, 0) is ul and pixel (b.W, b.H) is lr.
//
// Points that escape at iteration n get 255-n; points that never escape
// within Limit iterations stay black.
func RenderBand(b Bounds, pix []uint8, ul, lr complex128) {
	if len(pix) != b.Pixels() {
		panic(fmt.Sprintf("mandel: band buffer holds %d pixels, bounds %dx%d need %d", len(pix), b.W, b.H, b.Pixels()))
	}

	for row := range b.H {
		for col := range b.W {
			c := PixelToPoint(b, col, row, ul, lr)

			var v uint8
			if n, escaped := EscapeTime(c, Limit); escaped {
				v = uint8(Limit - n)
			}
			pix[row*b.W+col] = v
		}
	}
}

// Partition cuts pix, the buffer of the whole image b, into consecutive
// full-width bands of b.H/workers+1 rows each. The last band takes whatever
// rows remain, so fewer than workers bands may come back, but never an
// empty one. Each band's corners are derived from the global frame.
func Partition(b Bounds, pix []uint8, ul, lr complex128, workers int) []Band {
	if !b.Valid() {
		return nil
	}
	if len(pix) != b.Pixels() {
		panic(fmt.Sprintf("mandel: image buffer holds %d pixels, bounds %dx%d need %d", len(pix), b.W, b.H, b.Pixels()))
	}
	workers = max(workers, 1)

	rows := b.H/workers + 1
	size := rows * b.W

	bands := make([]Band, 0, workers)
	for i, off := 0, 0; off < len(pix); i, off = i+1, off+size {
		end := min(off+size, len(pix))
		chunk := pix[off:end:end]

		top := rows * i
		h := len(chunk) / b.W

		bands = append(bands, Band{
			Index:  i,
			Top:    top,
			Bounds: Bounds{W: b.W, H: h},
			Plane: Plane{
				UpperLeft:  PixelToPoint(b, 0, top, ul, lr),
				LowerRight: PixelToPoint(b, b.W, top+h, ul, lr),
			},
			Pix: chunk,
		})
	}
	return bands
}

type options struct {
	workers int
}

type Option func(*options)

// WithWorkers sets how many bands the image is split into. Zero or less
// picks runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// RenderConcurrent renders b over the rectangle ul..lr on DefaultWorkers
// goroutines, one per band, and returns once all of them are done.
// It panics on invalid bounds.
func RenderConcurrent(b Bounds, ul, lr complex128) []uint8 {
	pix, err := Render(context.Background(), b, ul, lr, WithWorkers(DefaultWorkers))
	if err != nil {
		panic(fmt.Sprintf("mandel: RenderConcurrent: %v", err))
	}
	return pix
}

// Render is RenderConcurrent with a configurable worker count and a context.
// A band whose goroutine observes a canceled ctx is skipped and the context's
// error is returned instead of the buffer.
func Render(ctx context.Context, b Bounds, ul, lr complex128, opts ...Option) ([]uint8, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("render %dx%d: %w", b.W, b.H, ErrInvalidBounds)
	}

	o := options{workers: DefaultWorkers}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers <= 0 {
		o.workers = runtime.GOMAXPROCS(0)
	}

	pix := make([]uint8, b.Pixels())
	bands := Partition(b, pix, ul, lr, o.workers)

	log := Logger()
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	for _, band := range bands {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t := time.Now()
			RenderBand(band.Bounds, band.Pix, band.Plane.UpperLeft, band.Plane.LowerRight)
			log.Debug("band rendered", "index", band.Index, "top", band.Top, "rows", band.Bounds.H, "elapsed", time.Since(t))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Debug("image rendered", "width", b.W, "height", b.H, "bands", len(bands), "elapsed", time.Since(start))
	return pix, nil
}
