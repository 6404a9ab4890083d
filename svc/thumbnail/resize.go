package thumbnail

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// JPEGQuality is used when re-encoding JPEG sources.
const JPEGQuality = 85

// Pixel budgets. A decoded image costs up to 4 bytes per pixel, so the
// source is checked from its header before any pixel is allocated.
const (
	MaxSourcePixels    = 40_000_000
	MaxRenditionPixels = 16_000_000
)

// Source is a decoded original.
type Source struct {
	Image  image.Image
	Format string
}

// Decode reads an image in any registered format. Sources larger than
// MaxSourcePixels are rejected with ErrImageTooLarge.
func Decode(data []byte) (*Source, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Join(ErrDecodeImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrDecodeImage
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Join(ErrDecodeImage, err)
	}
	return &Source{Image: img, Format: format}, nil
}

// Resize scales src to width keeping the aspect ratio and encodes the
// result. JPEG sources stay JPEG; everything else becomes PNG.
func Resize(src *Source, width int) ([]byte, error) {
	b := src.Image.Bounds()
	th, err := targetHeight(b, width)
	if err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, th))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src.Image, b, draw.Over, nil)

	var buf bytes.Buffer
	switch src.Format {
	case "jpeg":
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality})
	default:
		err = png.Encode(&buf, dst)
	}
	if err != nil {
		return nil, errors.Join(ErrEncodeImage, err)
	}
	return buf.Bytes(), nil
}

// targetHeight keeps the aspect ratio of b at width and enforces
// MaxRenditionPixels.
func targetHeight(b image.Rectangle, width int) (int, error) {
	w, h := int64(b.Dx()), int64(b.Dy())
	if w <= 0 || h <= 0 || width <= 0 {
		return 0, ErrDecodeImage
	}
	th := max(h*int64(width)/w, 1)
	if th*int64(width) > MaxRenditionPixels {
		return 0, fmt.Errorf("%w: %dx%d rendition", ErrImageTooLarge, width, th)
	}
	return int(th), nil
}
