package imagebytes

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Sniff detects the MIME type and preferred file extension (without the
// leading dot) of image bytes from their magic numbers. Unrecognized
// content is reported as JPEG, the dominant format in practice.
func Sniff(data []byte) (mime string, ext string) {
	m := mimetype.Detect(data)
	if m.Is("application/octet-stream") {
		return "image/jpeg", "jpg"
	}
	return m.String(), strings.TrimPrefix(m.Extension(), ".")
}
