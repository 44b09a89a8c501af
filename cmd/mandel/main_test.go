package main

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mandel "github.com/marben/banded_mandel"
)

func TestParseArgs(t *testing.T) {
	var stderr bytes.Buffer
	cfg, err := parseArgs([]string{"out.png", "100x200", "-1.0,1.0", "1.0,-1.0"}, &stderr)
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}

	want := config{
		path:    "out.png",
		bounds:  mandel.Bounds{W: 100, H: 200},
		plane:   mandel.Plane{UpperLeft: complex(-1, 1), LowerRight: complex(1, -1)},
		workers: mandel.DefaultWorkers,
	}
	if cfg != want {
		t.Errorf("parseArgs = %+v, want %+v", cfg, want)
	}
}

func TestParseArgsFlags(t *testing.T) {
	var stderr bytes.Buffer
	cfg, err := parseArgs([]string{"-workers", "3", "-v", "-region", "seahorse", "out.tiff", "64x48"}, &stderr)
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if cfg.workers != 3 || !cfg.verbose {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.plane != mandel.Regions["seahorse"] {
		t.Errorf("plane = %+v, want the seahorse region", cfg.plane)
	}
}

func TestParseArgsUsage(t *testing.T) {
	for _, args := range [][]string{
		nil,
		{"out.png"},
		{"out.png", "10x10", "0,0"},
		{"out.png", "10x10", "0,0", "1,1", "extra"},
		{"-region", "seahorse", "out.png", "10x10", "0,0"},
		{"-nosuchflag", "out.png", "10x10", "0,0", "1,1"},
	} {
		var stderr bytes.Buffer
		_, err := parseArgs(args, &stderr)
		if !errors.Is(err, errUsage) {
			t.Errorf("parseArgs(%q) error = %v, want errUsage", args, err)
		}
		if !strings.Contains(stderr.String(), "usage:") {
			t.Errorf("parseArgs(%q) printed no usage:\n%s", args, stderr.String())
		}
	}
}

func TestParseArgsInvalid(t *testing.T) {
	tests := []struct {
		args []string
		want error
	}{
		{[]string{"out.png", "10y10", "0,0", "1,1"}, mandel.ErrSyntax},
		{[]string{"out.png", "0x10", "0,0", "1,1"}, mandel.ErrInvalidBounds},
		{[]string{"out.png", "10x10", "0;0", "1,1"}, mandel.ErrSyntax},
		{[]string{"out.png", "10x10", "0,0", "1"}, mandel.ErrSyntax},
		{[]string{"out.jpg", "10x10", "0,0", "1,1"}, mandel.ErrUnknownFormat},
	}

	for _, tt := range tests {
		var stderr bytes.Buffer
		if _, err := parseArgs(tt.args, &stderr); !errors.Is(err, tt.want) {
			t.Errorf("parseArgs(%q) error = %v, want %v", tt.args, err, tt.want)
		}
	}

	var stderr bytes.Buffer
	if _, err := parseArgs([]string{"-region", "atlantis", "out.png", "10x10"}, &stderr); err == nil || errors.Is(err, errUsage) {
		t.Errorf("unknown region error = %v", err)
	}
}

func TestRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "set.png")
	cfg := config{
		path:    path,
		bounds:  mandel.Bounds{W: 32, H: 24},
		plane:   mandel.Regions["full"],
		workers: mandel.DefaultWorkers,
	}
	if err := run(cfg); err != nil {
		t.Fatalf("run: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	g, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("decoded %T, want *image.Gray", img)
	}

	want := mandel.RenderConcurrent(cfg.bounds, cfg.plane.UpperLeft, cfg.plane.LowerRight)
	if !bytes.Equal(g.Pix, want) {
		t.Error("written image differs from RenderConcurrent")
	}
}

func TestRunUnwritable(t *testing.T) {
	cfg := config{
		path:   filepath.Join(t.TempDir(), "missing", "set.png"),
		bounds: mandel.Bounds{W: 2, H: 2},
		plane:  mandel.Regions["full"],
	}
	if err := run(cfg); err == nil {
		t.Fatal("run into a missing directory succeeded")
	}
}
