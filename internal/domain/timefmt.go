package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"
)

// Date is a calendar date without a time zone, encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

// DateTime is a wall-clock timestamp without a time zone, encoded as ISO-8601
// local date-time.
type DateTime struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func NewDateTime(year int, month time.Month, day, hour, min int) DateTime {
	return DateTime{time.Date(year, month, day, hour, min, 0, 0, time.UTC)}
}

// DateTimeOf drops the location of t and keeps its wall clock.
func DateTimeOf(t time.Time) DateTime {
	return DateTime{time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)}
}

// StartOfDay returns midnight of the same calendar day.
func (d DateTime) StartOfDay() DateTime {
	return DateTime{time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)}
}

func (d DateTime) Date() Date {
	return DateOf(d.Time)
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d DateTime) String() string {
	return d.Format(dateTimeLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	t, err := parseTimeString(data, dateLayout)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateTimeLayout))
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	t, err := parseTimeString(data, dateTimeLayout)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

func parseTimeString(data []byte, layout string) (time.Time, error) {
	if bytes.Equal(data, []byte("null")) {
		return time.Time{}, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return time.Time{}, err
	}
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		// Remote rows may carry a zone suffix or a bare date.
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return DateTimeOf(t2).Time, nil
		}
		if t3, err3 := time.Parse(dateLayout, s); err3 == nil {
			return t3, nil
		}
		return time.Time{}, fmt.Errorf("parse %q: %w", s, err)
	}
	return t, nil
}
