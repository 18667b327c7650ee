package reports

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Quantity is an optional numeric field decoded leniently: JSON numbers,
// numeric strings and null are all accepted. Malformed or non-finite values
// decode as absent so they can never leak NaN into a sum.
type Quantity struct {
	Value float64
	Set   bool
}

// Qty is a shorthand constructor for a present quantity.
func Qty(v float64) Quantity {
	return Quantity{Value: v, Set: true}
}

// Or returns the quantity's value, falling back when it is absent.
func (q Quantity) Or(fallback Quantity) float64 {
	if q.Set {
		return q.Value
	}
	if fallback.Set {
		return fallback.Value
	}
	return 0
}

// OrZero returns the value or zero when absent.
func (q Quantity) OrZero() float64 {
	if q.Set {
		return q.Value
	}
	return 0
}

// Ptr returns the value as a pointer, nil when absent.
func (q Quantity) Ptr() *float64 {
	if !q.Set {
		return nil
	}
	v := q.Value
	return &v
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	*q = Quantity{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil
	}

	var num float64
	if err := json.Unmarshal(trimmed, &num); err == nil {
		if math.IsNaN(num) || math.IsInf(num, 0) {
			return nil
		}
		*q = Quantity{Value: num, Set: true}
		return nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return nil
		}
		*q = Quantity{Value: parsed, Set: true}
	}
	// Objects, arrays and booleans are treated as absent rather than errors.
	return nil
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	if !q.Set {
		return []byte("null"), nil
	}
	return json.Marshal(q.Value)
}

// Timestamp is an optional date field accepting RFC 3339 timestamps or bare
// YYYY-MM-DD dates; anything else decodes as absent.
type Timestamp struct {
	Value time.Time
	Set   bool
}

// TS is a shorthand constructor for a present timestamp.
func TS(t time.Time) Timestamp {
	return Timestamp{Value: t, Set: true}
}

// Ptr returns the time as a pointer, nil when absent.
func (t Timestamp) Ptr() *time.Time {
	if !t.Set {
		return nil
	}
	v := t.Value
	return &v
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = Timestamp{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = Timestamp{Value: parsed.UTC(), Set: true}
			return nil
		}
	}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Set {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value.UTC().Format(time.RFC3339))
}
