package valueobjects

import (
	"errors"
	"time"
)

// DayLayout is the ISO calendar-day form used for storage and queries
const DayLayout = "2006-01-02"

// Day is a value object representing a calendar date at day granularity.
// Goals are scheduled per day; times of day never survive construction.
type Day struct {
	value string
}

// NewDay creates a Day from a point in time, truncating to day granularity
// in UTC.
func NewDay(t time.Time) Day {
	return Day{value: t.UTC().Format(DayLayout)}
}

// Today returns the current calendar day
func Today() Day {
	return NewDay(time.Now())
}

// ParseDay creates a Day from its ISO form
func ParseDay(s string) (Day, error) {
	if s == "" {
		return Day{}, errors.New("day cannot be empty")
	}
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return Day{}, errors.New("day must be in YYYY-MM-DD form")
	}
	return Day{value: t.Format(DayLayout)}, nil
}

// String returns the ISO form of the Day
func (d Day) String() string {
	return d.value
}

// Equals checks if two Days are the same calendar date
func (d Day) Equals(other Day) bool {
	return d.value == other.value
}

// IsZero checks if the Day is the zero value
func (d Day) IsZero() bool {
	return d.value == ""
}

// Time returns the Day as a UTC midnight time.Time
func (d Day) Time() time.Time {
	t, _ := time.Parse(DayLayout, d.value)
	return t
}

// MarshalJSON implements json.Marshaler
func (d Day) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Day) UnmarshalJSON(data []byte) error {
	if string(data) == "null" || string(data) == `""` {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("day must be a string")
	}
	day, err := ParseDay(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = day
	return nil
}
