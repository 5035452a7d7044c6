package imagecodec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	"golang.org/x/image/draw"
)

const (
	MaxImageSize       = 800
	CompressionQuality = 80
	placeholderSize    = 200
	// MaxPixels bounds the decoded bitmap, about 100 MB as RGBA.
	MaxPixels          = 25_000_000
)

var (
	ErrEmpty    = errors.New("image: empty payload")
	ErrTooLarge = errors.New("image: dimensions too large")
)

// Normalize decodes raw (jpeg, png or gif), scales it to fit inside
// MaxImageSize x MaxImageSize keeping the aspect ratio and re-encodes it as
// JPEG.
func Normalize(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, ErrEmpty
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("image: decode: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("image: decode: %w", err)
	}
	return encodeJPEG(Resize(src, MaxImageSize))
}

func Resize(src image.Image, maxSize int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxSize && h <= maxSize {
		return src
	}

	var scale float64
	if w > h {
		scale = float64(maxSize) / float64(w)
	} else {
		scale = float64(maxSize) / float64(h)
	}
	nw, nh := int(float64(w)*scale), int(float64(h)*scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: CompressionQuality}); err != nil {
		return nil, fmt.Errorf("image: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func ToBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// FromBase64 tolerates the line breaks some encoders insert.
func FromBase64(s string) ([]byte, error) {
	s = strings.NewReplacer("\n", "", "\r", "", " ", "").Replace(s)
	if s == "" {
		return nil, ErrEmpty
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("image: base64: %w", err)
	}
	return data, nil
}

// Placeholder is a flat light-grey square for products without an image.
func Placeholder() []byte {
	img := image.NewRGBA(image.Rect(0, 0, placeholderSize, placeholderSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}}, image.Point{}, draw.Src)
	data, err := encodeJPEG(img)
	if err != nil {
		return nil
	}
	return data
}
