package mandel

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is an output container for rendered images.
type Format string

const (
	PNG  Format = "png"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

// ParseFormat maps a format name or file extension (with or without the
// leading dot) to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return PNG, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	}
	return "", fmt.Errorf("format %q: %w", s, ErrUnknownFormat)
}

// FormatFromPath picks the Format matching the extension of path.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// ContentType is the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case BMP:
		return "image/bmp"
	case TIFF:
		return "image/tiff"
	}
	return "image/png"
}

// GrayImage wraps pix as an 8-bit grayscale image without copying it.
func GrayImage(pix []uint8, b Bounds) *image.Gray {
	return &image.Gray{
		Pix:    pix,
		Stride: b.W,
		Rect:   image.Rect(0, 0, b.W, b.H),
	}
}

// Encode writes pix as a grayscale image of size b to w.
func Encode(w io.Writer, f Format, pix []uint8, b Bounds) error {
	if len(pix) != b.Pixels() {
		return fmt.Errorf("encode: buffer holds %d pixels, bounds %dx%d need %d", len(pix), b.W, b.H, b.Pixels())
	}

	img := GrayImage(pix, b)
	switch f {
	case PNG:
		return png.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("encode %q: %w", f, ErrUnknownFormat)
}

// WriteImage saves pix to path in the format its extension names.
// The file is removed again if encoding fails.
func WriteImage(path string, pix []uint8, b Bounds) (err error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output file: %w", cerr)
		}
		if err != nil {
			err = errors.Join(err, removeIfExists(path))
		}
	}()

	if err := Encode(file, f, pix, b); err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
