package imageproc

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTestImage(t *testing.T, width, height int, encode func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, encode(&buf, img))
	return buf.Bytes()
}

func TestCompress_ResizesToMaxSide(t *testing.T) {
	data := encodeTestImage(t, 2048, 1024, func(buf *bytes.Buffer, img image.Image) error {
		return jpeg.Encode(buf, img, nil)
	})

	compressed, err := Compress(data, Options{MaxSide: 512, Quality: 80})
	require.NoError(t, err)

	out, format, err := image.Decode(bytes.NewReader(compressed))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 512, out.Bounds().Dx())
	assert.Equal(t, 256, out.Bounds().Dy())
}

func TestCompress_PortraitOrientation(t *testing.T) {
	data := encodeTestImage(t, 600, 1200, func(buf *bytes.Buffer, img image.Image) error {
		return jpeg.Encode(buf, img, nil)
	})

	compressed, err := Compress(data, Options{MaxSide: 300, Quality: 50})
	require.NoError(t, err)

	out, _, err := image.Decode(bytes.NewReader(compressed))
	require.NoError(t, err)
	assert.Equal(t, 150, out.Bounds().Dx())
	assert.Equal(t, 300, out.Bounds().Dy())
}

func TestCompress_RejectsGarbage(t *testing.T) {
	_, err := Compress([]byte("not an image"), DefaultOptions())
	assert.Error(t, err)
}

func TestCompressAndExtract(t *testing.T) {
	data := encodeTestImage(t, 800, 400, func(buf *bytes.Buffer, img image.Image) error {
		return png.Encode(buf, img)
	})

	compressed, meta, err := CompressAndExtract(data, Options{MaxSide: 400, Quality: 80})
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.NotEmpty(t, compressed)

	// PNG in, JPEG out.
	assert.Equal(t, "png", meta.FormatOriginal)
	_, format, err := image.Decode(bytes.NewReader(compressed))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)

	assert.Equal(t, Dimensions{Width: 800, Height: 400}, meta.SizeOriginal)
	assert.Equal(t, Dimensions{Width: 400, Height: 200}, meta.SizeCompressed)
	assert.InDelta(t, 0.5, meta.CompressionRatio, 1e-9)

	// A synthetic PNG has no EXIF block: the tag map reports that and
	// no location is extracted.
	require.NotNil(t, meta.Exif)
	assert.Contains(t, meta.Exif, "error")
	assert.Nil(t, meta.Location)
	assert.Empty(t, meta.Optics.Make)
}

func TestCompressAndExtract_DefaultsApplied(t *testing.T) {
	data := encodeTestImage(t, 2000, 1000, func(buf *bytes.Buffer, img image.Image) error {
		return jpeg.Encode(buf, img, nil)
	})

	_, meta, err := CompressAndExtract(data, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1024, meta.SizeCompressed.Width)
	assert.Equal(t, 512, meta.SizeCompressed.Height)
}

func TestOpticsFromTags(t *testing.T) {
	optics := opticsFromTags(map[string]string{
		"Image Make":       "Canon",
		"Model":            "EOS 5D",
		"EXIF FocalLength": "50/1",
		"Orientation":      "1",
	})

	assert.Equal(t, "Canon", optics.Make)
	assert.Equal(t, "EOS 5D", optics.Model)
	assert.Equal(t, "50/1", optics.FocalLength)
	assert.Equal(t, "1", optics.Orientation)
	assert.Empty(t, optics.ExifWidth)
}
