package utils

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalizePhotoScalesDownToJPEG(t *testing.T) {
	out, err := NormalizePhoto(encodePNG(t, 400, 200), 100, DefaultMaxPhotoPixels, 80)
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestNormalizePhotoKeepsSmallImages(t *testing.T) {
	out, err := NormalizePhoto(encodePNG(t, 30, 60), 100, DefaultMaxPhotoPixels, 80)
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Width)
	assert.Equal(t, 60, cfg.Height)
}

func TestNormalizePhotoRejectsNonImages(t *testing.T) {
	_, err := NormalizePhoto([]byte("not an image"), 100, DefaultMaxPhotoPixels, 80)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

// withDeclaredSize rewrites the IHDR dimensions of a PNG without touching its pixel data.
func withDeclaredSize(t *testing.T, data []byte, w, h uint32) []byte {
	t.Helper()
	out := append([]byte(nil), data...)
	// signature(8) length(4) "IHDR"(4) width(4) height(4) ... crc
	require.Equal(t, "IHDR", string(out[12:16]))
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestNormalizePhotoRejectsOversizedCanvasBeforeDecoding(t *testing.T) {
	bomb := withDeclaredSize(t, encodePNG(t, 4, 4), 20000, 20000)

	cfg, err := png.DecodeConfig(bytes.NewReader(bomb))
	require.NoError(t, err)
	require.Equal(t, 20000, cfg.Width)

	_, err = NormalizePhoto(bomb, 100, DefaultMaxPhotoPixels, 80)
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestNormalizePhotoPixelCapIsInclusive(t *testing.T) {
	_, err := NormalizePhoto(encodePNG(t, 10, 10), 100, 100, 80)
	require.NoError(t, err)

	_, err = NormalizePhoto(encodePNG(t, 10, 11), 100, 100, 80)
	assert.ErrorIs(t, err, ErrImageTooLarge)
}
