// Package gps extracts decimal GPS coordinates from loosely structured
// EXIF tag maps. GPS tags are optional metadata: every failure mode in
// this package collapses to "no coordinate" so that extraction never
// aborts a caller's workflow.
package gps

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Extraction methods recorded in Coordinate.Method.
const (
	MethodLocation = "LOCATION"
	MethodExifRead = "EXIFREAD"
)

// Coordinate is a decimal latitude/longitude pair with the method that
// produced it. Out-of-range values are passed through unchanged; EXIF
// data is taken at face value.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Method    string  `json:"method"`
}

// Extract finds a coordinate in data, which may be either a flat EXIF
// tag map or a container holding a tag map under "exif" and/or an
// already-normalized coordinate under "location". It returns nil when
// no coordinate is present or the GPS tags cannot be parsed.
func Extract(data map[string]any) *Coordinate {
	if len(data) == 0 {
		return nil
	}

	// Already-normalized decimal location wins. A location that fails
	// to coerce falls through to tag-based extraction.
	if loc := asTagMap(data["location"]); loc != nil {
		if c := fromLocation(loc); c != nil {
			return c
		}
	}

	tags := asTagMap(data["exif"])
	if tags == nil {
		tags = data
	}
	return fromTags(tags)
}

// ExtractFromTags finds a coordinate in a flat tag map as produced by
// exiftags.Read. It returns nil when no coordinate is present.
func ExtractFromTags(tags map[string]string) *Coordinate {
	if len(tags) == 0 {
		return nil
	}
	m := make(map[string]any, len(tags))
	for k, v := range tags {
		m[k] = v
	}
	return fromTags(m)
}

func fromLocation(loc map[string]any) *Coordinate {
	lat, latOK := loc["latitude"]
	lon, lonOK := loc["longitude"]
	if !latOK || !lonOK || lat == nil || lon == nil {
		return nil
	}

	latF, err := toFloat(lat)
	if err != nil {
		return nil
	}
	lonF, err := toFloat(lon)
	if err != nil {
		return nil
	}

	method := MethodLocation
	if m, ok := loc["method"].(string); ok && m != "" {
		method = m
	}

	return &Coordinate{Latitude: latF, Longitude: lonF, Method: method}
}

func fromTags(tags map[string]any) *Coordinate {
	latKey, ok1 := FindKey(tags, "GPS GPSLatitude", "GPSLatitude")
	latRefKey, ok2 := FindKey(tags, "GPS GPSLatitudeRef", "GPSLatitudeRef")
	lonKey, ok3 := FindKey(tags, "GPS GPSLongitude", "GPSLongitude")
	lonRefKey, ok4 := FindKey(tags, "GPS GPSLongitudeRef", "GPSLongitudeRef")
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil
	}

	lat, err := ToDecimal(tags[latKey], fmt.Sprint(tags[latRefKey]))
	if err != nil {
		return nil
	}
	lon, err := ToDecimal(tags[lonKey], fmt.Sprint(tags[lonRefKey]))
	if err != nil {
		return nil
	}

	return &Coordinate{Latitude: lat, Longitude: lon, Method: MethodExifRead}
}

// asTagMap returns v as a tag map, accepting the two map shapes that
// show up in practice, or nil when v is not a map.
func asTagMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out
	default:
		return nil
	}
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(x), 64)
	default:
		return strconv.ParseFloat(strings.TrimSpace(fmt.Sprint(v)), 64)
	}
}
