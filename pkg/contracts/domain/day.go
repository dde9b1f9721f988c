package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// DayLayout is the canonical textual form of a Day.
const DayLayout = "2006-01-02"

// Day is a calendar date with the time of day discarded. The zero value
// is the zero Day.
type Day struct {
	t time.Time
}

// NewDay returns the Day for year, month and day.
func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf returns the calendar day of t in t's own location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return NewDay(y, m, d)
}

// ParseDay parses a Day in DayLayout.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid day %q: %w", s, err)
	}
	return DayOf(t), nil
}

// Time returns the Day as midnight UTC.
func (d Day) Time() time.Time { return d.t }

// IsZero reports whether d is the zero Day.
func (d Day) IsZero() bool { return d.t.IsZero() }

// AddDays returns d shifted by n days.
func (d Day) AddDays(n int) Day { return Day{t: d.t.AddDate(0, 0, n)} }

// Before reports whether d is strictly earlier than o.
func (d Day) Before(o Day) bool { return d.t.Before(o.t) }

// After reports whether d is strictly later than o.
func (d Day) After(o Day) bool { return d.t.After(o.t) }

// Equal reports whether d and o are the same calendar day.
func (d Day) Equal(o Day) bool { return d.t.Equal(o.t) }

// Compare returns -1, 0 or +1.
func (d Day) Compare(o Day) int { return d.t.Compare(o.t) }

// String formats d in DayLayout.
func (d Day) String() string { return d.t.Format(DayLayout) }

// MarshalJSON encodes d as a DayLayout string.
func (d Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a DayLayout string.
func (d *Day) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
