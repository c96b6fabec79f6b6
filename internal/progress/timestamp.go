package progress

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Timestamp is the started_at value of an entry.
//
// It keeps the compact JSON token so a value written as 1718000000.5 is
// written back exactly the same way. Two timestamps are equal iff their
// compact JSON text is equal, which makes Timestamp usable as a map key.
type Timestamp struct {
	raw string
}

// StringTimestamp returns a timestamp encoded as a JSON string
func StringTimestamp(s string) Timestamp {
	b, _ := json.Marshal(s)
	return Timestamp{raw: string(b)}
}

// NumberTimestamp returns a timestamp encoded as a JSON number
func NumberTimestamp(n float64) Timestamp {
	return Timestamp{raw: strconv.FormatFloat(n, 'f', -1, 64)}
}

// IsZero reports whether the timestamp was never set
func (t Timestamp) IsZero() bool {
	return t.raw == ""
}

// IsNumber reports whether the timestamp is a JSON number
func (t Timestamp) IsNumber() bool {
	return t.raw != "" && t.raw[0] != '"'
}

// String returns the unquoted value
func (t Timestamp) String() string {
	if t.IsNumber() || t.raw == "" {
		return t.raw
	}
	var s string
	if err := json.Unmarshal([]byte(t.raw), &s); err != nil {
		return t.raw
	}
	return s
}

// Compare orders timestamps: numbers before strings, numbers numerically,
// strings lexicographically. Ties fall back to the raw text.
func (t Timestamp) Compare(o Timestamp) int {
	tn, on := t.IsNumber(), o.IsNumber()
	switch {
	case tn && !on:
		return -1
	case !tn && on:
		return 1
	case tn && on:
		a, errA := strconv.ParseFloat(t.raw, 64)
		b, errB := strconv.ParseFloat(o.raw, 64)
		if errA == nil && errB == nil {
			if a < b {
				return -1
			}
			if a > b {
				return 1
			}
		}
	default:
		if c := strings.Compare(t.String(), o.String()); c != 0 {
			return c
		}
	}
	return strings.Compare(t.raw, o.raw)
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.raw == "" {
		return []byte("null"), nil
	}
	return []byte(t.raw), nil
}

// UnmarshalJSON accepts a JSON string or number. null leaves the timestamp zero.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return err
	}
	raw := buf.String()
	if raw == "null" {
		t.raw = ""
		return nil
	}
	if raw == "" {
		return fmt.Errorf("empty started_at")
	}
	switch c := raw[0]; {
	case c == '"':
	case c == '-' || (c >= '0' && c <= '9'):
	default:
		return fmt.Errorf("started_at must be a string or a number, got %s", raw)
	}
	t.raw = raw
	return nil
}
