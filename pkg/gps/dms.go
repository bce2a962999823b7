package gps

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// DMS is a degrees/minutes/seconds triple as stored in EXIF GPS tags.
type DMS struct {
	Degrees float64
	Minutes float64
	Seconds float64
}

// ParseError reports a GPS tag value that could not be parsed as a
// degrees/minutes/seconds triple.
type ParseError struct {
	Value any
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gps: invalid DMS value %#v: %v", e.Value, e.Err)
	}
	return fmt.Sprintf("gps: invalid DMS value %#v", e.Value)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseDMS parses a degrees/minutes/seconds triple from the loose shapes
// found in EXIF tag dumps: a slice of numeric-like tokens, or a single
// string such as "[48, 51, 179/100]" or "48, 51, 179/100". Components
// beyond the third are ignored; fewer than three is an error.
func ParseDMS(value any) (DMS, error) {
	var parts []string

	switch v := value.(type) {
	case []string:
		parts = v
	case []any:
		parts = make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprint(item)
		}
	case []float64:
		parts = make([]string, len(v))
		for i, f := range v {
			parts[i] = strconv.FormatFloat(f, 'f', -1, 64)
		}
	default:
		s := strings.TrimSpace(fmt.Sprint(value))
		s = strings.Trim(s, "[]()")
		parts = strings.FieldsFunc(s, func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})
	}

	if len(parts) < 3 {
		return DMS{}, &ParseError{Value: value}
	}

	var (
		dms DMS
		err error
	)
	if dms.Degrees, err = parseRational(parts[0]); err != nil {
		return DMS{}, &ParseError{Value: value, Err: err}
	}
	if dms.Minutes, err = parseRational(parts[1]); err != nil {
		return DMS{}, &ParseError{Value: value, Err: err}
	}
	if dms.Seconds, err = parseRational(parts[2]); err != nil {
		return DMS{}, &ParseError{Value: value, Err: err}
	}

	return dms, nil
}

// Decimal converts the triple to signed decimal degrees. The reference is
// the EXIF hemisphere letter; "S" and "W" negate, anything else does not.
// Refs arrive both bare and with the quotes goexif leaves on ASCII tags.
func (d DMS) Decimal(ref string) float64 {
	dec := d.Degrees + d.Minutes/60.0 + d.Seconds/3600.0
	ref = strings.Trim(strings.TrimSpace(ref), `"'`)
	switch strings.ToUpper(strings.TrimSpace(ref)) {
	case "S", "W":
		dec = -dec
	}
	return dec
}

// ToDecimal parses value as a DMS triple and converts it to signed
// decimal degrees using the given hemisphere reference.
func ToDecimal(value any, ref string) (float64, error) {
	dms, err := ParseDMS(value)
	if err != nil {
		return 0, err
	}
	return dms.Decimal(ref), nil
}

// parseRational parses a single token as a float, supporting the "a/b"
// rational notation used by EXIF readers.
func parseRational(token string) (float64, error) {
	token = strings.TrimSpace(token)
	token = strings.Trim(token, `"'`)

	if num, den, ok := strings.Cut(token, "/"); ok {
		a, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return 0, err
		}
		b, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err != nil {
			return 0, err
		}
		if b == 0 {
			return 0, fmt.Errorf("division by zero in rational %q", token)
		}
		return a / b, nil
	}

	return strconv.ParseFloat(token, 64)
}
