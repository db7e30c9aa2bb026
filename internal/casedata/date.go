package casedata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"
)

// clockLayouts are tried in order for values that carry a time of day.
// Fractional seconds are accepted by time.Parse without being spelled out.
var clockLayouts = []string{
	time.RFC3339Nano,
	dateTimeLayout,
	"2006-01-02 15:04:05",
}

// Date is a nullable calendar value as returned by the case API. The API
// serializes plain dates ("2023-05-12") and date-times ("2023-05-15T09:00:00")
// through the same fields, so HasClock records which form was received.
type Date struct {
	Time     time.Time
	HasClock bool
}

// NewDate returns a date-only value.
func NewDate(year int, month time.Month, day int) *Date {
	return &Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// NewDateTime returns a value carrying a time of day.
func NewDateTime(year int, month time.Month, day, hour, min int) *Date {
	return &Date{Time: time.Date(year, month, day, hour, min, 0, 0, time.UTC), HasClock: true}
}

// ParseDate parses any of the formats the API emits.
func ParseDate(s string) (*Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return &Date{Time: t}, nil
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &Date{Time: t, HasClock: true}, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", s)
}

// IsSet reports whether d holds a value. Safe on a nil receiver.
func (d *Date) IsSet() bool {
	return d != nil && !d.Time.IsZero()
}

// SameDay reports whether both values fall on the same calendar day.
func (d *Date) SameDay(other *Date) bool {
	if !d.IsSet() || !other.IsSet() {
		return false
	}
	y1, m1, d1 := d.Time.Date()
	y2, m2, d2 := other.Time.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// String renders the value in the wire format.
func (d *Date) String() string {
	if !d.IsSet() {
		return ""
	}
	if d.HasClock {
		return d.Time.Format(dateTimeLayout)
	}
	return d.Time.Format(dateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler. An empty string leaves the
// value unset.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	if parsed == nil {
		*d = Date{}
		return nil
	}
	*d = *parsed
	return nil
}
