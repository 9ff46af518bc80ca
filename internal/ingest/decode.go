// Package ingest reads uploaded generation files: it inspects their columns,
// validates a column mapping and converts mapped rows into normalized
// generation data points.
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/rshade/carbon-credit-engine/internal/numeric"
)

// Encodings reported by Inspect.
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin-1"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decode returns the text of data as UTF-8. Input that is not valid UTF-8 is
// read as ISO-8859-1, which accepts any byte sequence.
func decode(data []byte) (string, string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), EncodingUTF8, nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", "", fmt.Errorf("decoding latin-1: %w", err)
	}
	return string(out), EncodingLatin1, nil
}

// readRows decodes r and parses it as CSV. Rows may have differing lengths.
func readRows(r io.Reader) ([][]string, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("reading generation file: %w", err)
	}
	text, encoding, err := decode(data)
	if err != nil {
		return nil, "", err
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, "", fmt.Errorf("parsing generation file: %w", err)
	}
	return rows, encoding, nil
}

// timestampLayouts are tried in order when a mapping gives no format.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"02-Jan-2006 15:04",
	"02-Jan-2006",
	"Jan 2, 2006",
	"2006-01",
}

// ParseTimestamp parses s with the recognized layouts and returns it in UTC.
// Values without a zone are read in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	t, err := parseTimestamp(s, "", loc)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// parseTimestamp parses s with layout, or with each of timestampLayouts when
// layout is empty. Values without a zone are read in loc.
func parseTimestamp(s, layout string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if layout != "" {
		return time.ParseInLocation(layout, s, loc)
	}
	for _, l := range timestampLayouts {
		if t, err := time.ParseInLocation(l, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// parseNumber parses a reading, accepting thousands separators.
func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if !numeric.IsFinite(v) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}
