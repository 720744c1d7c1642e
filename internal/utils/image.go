package utils

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

var (
	ErrUnsupportedImage = errors.New("unsupported image format")
	ErrImageTooLarge    = errors.New("image has too many pixels")
)

// NormalizePhoto decodes a JPEG or PNG upload, scales it down to fit within maxDimension on its
// longer side and re-encodes it as JPEG. The header is checked against maxPixels before any pixel
// data is decoded, since a small compressed file can declare an enormous canvas.
func NormalizePhoto(data []byte, maxDimension uint, maxPixels int64, quality int) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ErrUnsupportedImage
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrUnsupportedImage
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, ErrImageTooLarge
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrUnsupportedImage
	}

	bounds := img.Bounds()
	width, height := uint(bounds.Dx()), uint(bounds.Dy())
	if width > maxDimension || height > maxDimension {
		// zero keeps the aspect ratio
		if width >= height {
			img = resize.Resize(maxDimension, 0, img, resize.Lanczos3)
		} else {
			img = resize.Resize(0, maxDimension, img, resize.Lanczos3)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
