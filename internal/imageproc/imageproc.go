// Package imageproc resizes and recompresses photographs for storage
// and assembles the structured metadata extracted along the way.
package imageproc

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/gdefombelle/pytune-helpers-images/pkg/exiftags"
	"github.com/gdefombelle/pytune-helpers-images/pkg/gps"
)

// Options controls resizing and JPEG encoding.
type Options struct {
	// MaxSide is the target length of the longest image side.
	MaxSide int
	// Quality is the JPEG quality, 1-100.
	Quality int
}

// DefaultOptions returns the standard compression settings.
func DefaultOptions() Options {
	return Options{MaxSide: 1024, Quality: 80}
}

// Dimensions is a width/height pair in pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Optics holds the camera-related EXIF fields worth surfacing on their
// own, as raw tag strings.
type Optics struct {
	Make          string `json:"make,omitempty"`
	Model         string `json:"model,omitempty"`
	FocalLength   string `json:"focal_length_mm,omitempty"`
	FocalLength35 string `json:"focal_length_35mm,omitempty"`
	Orientation   string `json:"orientation,omitempty"`
	ExifWidth     string `json:"exif_width,omitempty"`
	ExifHeight    string `json:"exif_height,omitempty"`
}

// Metadata describes an image before and after compression, together
// with the metadata extracted from its EXIF block.
type Metadata struct {
	FormatOriginal   string            `json:"format_original"`
	SizeOriginal     Dimensions        `json:"size_original"`
	SizeCompressed   Dimensions        `json:"size_compressed"`
	CompressionRatio float64           `json:"compression_ratio"`
	Optics           Optics            `json:"optics"`
	Exif             map[string]string `json:"exif"`
	Location         *gps.Coordinate   `json:"location,omitempty"`
}

// Compress resizes the image so its longest side is opts.MaxSide and
// re-encodes it as JPEG.
func Compress(data []byte, opts Options) ([]byte, error) {
	compressed, _, err := compress(data, opts)
	return compressed, err
}

// CompressAndExtract compresses the image and extracts its metadata in
// one pass. EXIF is read from the original bytes since compression
// strips the EXIF block.
func CompressAndExtract(data []byte, opts Options) ([]byte, *Metadata, error) {
	compressed, meta, err := compress(data, opts)
	if err != nil {
		return nil, nil, err
	}

	exifData := exiftags.Read(data)
	meta.Exif = exifData
	meta.Optics = opticsFromTags(exifData)
	meta.Location = gps.ExtractFromTags(exifData)

	return compressed, meta, nil
}

func compress(data []byte, opts Options) ([]byte, *Metadata, error) {
	if opts.MaxSide <= 0 {
		opts.MaxSide = DefaultOptions().MaxSide
	}
	if opts.Quality <= 0 {
		opts.Quality = DefaultOptions().Quality
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	longest := width
	if height > longest {
		longest = height
	}
	ratio := float64(opts.MaxSide) / float64(longest)
	newWidth := int(float64(width) * ratio)
	newHeight := int(float64(height) * ratio)

	resized := imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(opts.Quality)); err != nil {
		return nil, nil, fmt.Errorf("failed to encode image: %w", err)
	}

	meta := &Metadata{
		FormatOriginal:   format,
		SizeOriginal:     Dimensions{Width: width, Height: height},
		SizeCompressed:   Dimensions{Width: newWidth, Height: newHeight},
		CompressionRatio: ratio,
	}
	return buf.Bytes(), meta, nil
}

// opticsFromTags pulls camera fields out of a tag map, tolerating both
// the IFD-prefixed and bare tag spellings.
func opticsFromTags(tags map[string]string) Optics {
	get := func(candidates ...string) string {
		if key, ok := gps.FindKey(tags, candidates...); ok {
			return tags[key]
		}
		return ""
	}

	return Optics{
		Make:          get("Image Make", "Make"),
		Model:         get("Image Model", "Model"),
		FocalLength:   get("EXIF FocalLength", "FocalLength"),
		FocalLength35: get("EXIF FocalLengthIn35mmFilm", "FocalLengthIn35mmFilm"),
		Orientation:   get("Image Orientation", "Orientation"),
		ExifWidth:     get("EXIF ExifImageWidth", "ExifImageWidth", "PixelXDimension"),
		ExifHeight:    get("EXIF ExifImageHeight", "ExifImageHeight", "PixelYDimension"),
	}
}
