package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/syncx"

	mandel "github.com/marben/banded_mandel"
)

const defaultSize = "800x600"

var errTooLarge = errors.New("image too large")

// renderRequest is the set of parameters a client may send, both as a query
// string on /render and as a JSON message on /ws.
type renderRequest struct {
	Size   string `json:"size"`
	UL     string `json:"ul"`
	LR     string `json:"lr"`
	Region string `json:"region"`
	Format string `json:"format"`
}

// job is a validated renderRequest.
type job struct {
	bounds mandel.Bounds
	plane  mandel.Plane
	format mandel.Format
}

func (j job) key() string {
	return fmt.Sprintf("%dx%d|%v|%v|%s", j.bounds.W, j.bounds.H, j.plane.UpperLeft, j.plane.LowerRight, j.format)
}

type renderService struct {
	renderer  mandel.Renderer
	maxPixels int
	timeout   time.Duration
	flight    syncx.SingleFlight

	active int
	m      sync.Mutex
}

func newRenderService(r mandel.Renderer, maxPixels int, timeout time.Duration) *renderService {
	return &renderService{
		renderer:  r,
		maxPixels: maxPixels,
		timeout:   timeout,
		flight:    syncx.NewSingleFlight(),
	}
}

// parse validates req and fills in defaults: an 800x600 image of the whole
// set encoded as PNG.
func (s *renderService) parse(req renderRequest) (job, error) {
	var j job

	size := req.Size
	if size == "" {
		size = defaultSize
	}
	b, err := mandel.ParseBounds(size)
	if err != nil {
		return job{}, err
	}
	if s.maxPixels > 0 && b.Pixels() > s.maxPixels {
		return job{}, fmt.Errorf("%dx%d exceeds %d pixels: %w", b.W, b.H, s.maxPixels, errTooLarge)
	}
	j.bounds = b

	switch {
	case req.Region != "":
		p, ok := mandel.Regions[req.Region]
		if !ok {
			return job{}, fmt.Errorf("unknown region %q", req.Region)
		}
		j.plane = p
	case req.UL == "" && req.LR == "":
		j.plane = mandel.Regions["full"]
	default:
		if j.plane.UpperLeft, err = mandel.ParseComplex(req.UL); err != nil {
			return job{}, fmt.Errorf("upper left: %w", err)
		}
		if j.plane.LowerRight, err = mandel.ParseComplex(req.LR); err != nil {
			return job{}, fmt.Errorf("lower right: %w", err)
		}
	}

	j.format = mandel.PNG
	if req.Format != "" {
		if j.format, err = mandel.ParseFormat(req.Format); err != nil {
			return job{}, err
		}
	}
	return j, nil
}

// render renders and encodes j, bounded by the service timeout.
func (s *renderService) render(ctx context.Context, j job) ([]byte, error) {
	s.incActive()
	defer s.decActive()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	pix, err := s.renderer.Render(ctx, j.bounds, j.plane)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", j.key(), err)
	}

	var buf bytes.Buffer
	if err := mandel.Encode(&buf, j.format, pix, j.bounds); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderShared is render with identical concurrent jobs collapsed into one.
// The shared render is detached from the cancellation of whichever caller
// started it.
func (s *renderService) renderShared(ctx context.Context, j job) ([]byte, error) {
	v, err := s.flight.Do(j.key(), func() (any, error) {
		return s.render(context.WithoutCancel(ctx), j)
	})
	if err != nil {
		return nil, err
	}
	img, _ := v.([]byte)
	return img, nil
}

func (s *renderService) incActive() {
	s.m.Lock()
	s.active++
	n := s.active
	s.m.Unlock()

	log.Printf("renders in progress: %d", n)
}

func (s *renderService) decActive() {
	s.m.Lock()
	s.active--
	n := s.active
	s.m.Unlock()

	log.Printf("renders in progress: %d", n)
}
