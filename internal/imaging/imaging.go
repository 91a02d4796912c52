// Package imaging normalizes uploaded catalog photos.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// Limits for uploaded photos.
const (
	MaxUploadSize = 5 << 20
	MaxDimension  = 800
	JPEGQuality   = 82
	// MaxPixels bounds the decoded size of an upload, whatever its file size.
	MaxPixels = 40_000_000
)

var (
	// ErrTooLarge is returned when the upload exceeds MaxUploadSize.
	ErrTooLarge = errors.New("image exceeds 5MB")
	// ErrUnsupportedFormat is returned for anything but JPEG or PNG.
	ErrUnsupportedFormat = errors.New("unsupported image format (only JPEG and PNG accepted)")
	// ErrTooManyPixels is returned when the declared dimensions exceed MaxPixels.
	ErrTooManyPixels = errors.New("image dimensions too large")
)

type codec struct {
	decode       func(io.Reader) (image.Image, error)
	decodeConfig func(io.Reader) (image.Config, error)
}

var codecs = map[string]codec{
	"image/jpeg": {jpeg.Decode, jpeg.DecodeConfig},
	"image/png":  {png.Decode, png.DecodeConfig},
}

// Photo is a processed catalog photo, always JPEG.
type Photo struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// ProcessPhoto reads at most MaxUploadSize bytes from r, checks the format by
// sniffing, rejects images above MaxPixels before decoding them, fits the image within MaxDimension and re-encodes it as JPEG on a
// white background.
func ProcessPhoto(r io.Reader) (*Photo, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading photo: %w", err)
	}
	if len(data) > MaxUploadSize {
		return nil, ErrTooLarge
	}

	mime := http.DetectContentType(data)
	c, ok := codecs[mime]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mime)
	}

	// Only the header is read here; a small file can declare huge dimensions.
	cfg, err := c.decodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("reading %s header: %w", mime, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}

	src, err := c.decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", mime, err)
	}

	w, h := fit(src.Bounds().Dx(), src.Bounds().Dy(), MaxDimension)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	return &Photo{Data: buf.Bytes(), MIME: "image/jpeg", Width: w, Height: h}, nil
}

// fit scales w×h down so neither side exceeds limit, keeping the aspect ratio.
// Smaller images keep their size.
func fit(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		return limit, clampMin(h * limit / w)
	}
	return clampMin(w * limit / h), limit
}

func clampMin(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
