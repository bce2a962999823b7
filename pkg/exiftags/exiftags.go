// Package exiftags reads EXIF metadata from image bytes into a flat
// map of tag name to string value, the shape consumed by pkg/gps.
package exiftags

import (
	"bytes"
	"io"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// tagWalker collects every decoded tag as a string.
type tagWalker map[string]string

func (w tagWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	w[string(name)] = tag.String()
	return nil
}

// Read extracts EXIF tags from image bytes. It never fails: when the
// image carries no EXIF block or decoding breaks, the returned map
// holds the failure under the single key "error" so downstream code
// has nothing to catch.
func Read(data []byte) map[string]string {
	return ReadFrom(bytes.NewReader(data))
}

// ReadFrom extracts EXIF tags from a reader. See Read.
func ReadFrom(r io.Reader) map[string]string {
	x, err := exif.Decode(r)
	if err != nil {
		return map[string]string{"error": err.Error()}
	}

	tags := make(tagWalker)
	if err := x.Walk(tags); err != nil {
		return map[string]string{"error": err.Error()}
	}
	return tags
}
