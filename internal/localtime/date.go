package localtime

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date with no time of day and no zone attached
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the date, normalizing out-of-range values the way time.Date does
func NewDate(year int, month time.Month, day int) Date {
	return dateFromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// ParseDate parses an ISO-8601 calendar date (YYYY-MM-DD)
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
	}
	return dateFromTime(t), nil
}

func dateFromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// civil anchors the date in UTC so calendar arithmetic never crosses an offset change
func (d Date) civil() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n calendar days later (n may be negative)
func (d Date) AddDays(n int) Date {
	return dateFromTime(d.civil().AddDate(0, 0, n))
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after other
func (d Date) Compare(other Date) int {
	return d.civil().Compare(other.civil())
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }
func (d Date) After(other Date) bool  { return d.Compare(other) > 0 }
func (d Date) Equal(other Date) bool  { return d.Compare(other) == 0 }

// DaysUntil returns the number of calendar days from d to other
func (d Date) DaysUntil(other Date) int {
	return int(other.civil().Sub(d.civil()).Hours() / 24)
}

// IsZero reports whether d is the zero Date
func (d Date) IsZero() bool {
	return d == Date{}
}

// At combines the date with a wall-clock time of day. The result carries no zone.
func (d Date) At(hour, minute, second int) NaiveDateTime {
	return NaiveDateTime{Date: d, Hour: hour, Minute: minute, Second: second}
}

func (d Date) String() string {
	return d.civil().Format(dateLayout)
}

// MarshalText implements encoding.TextMarshaler
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// NaiveDateTime is a wall-clock date and time without a zone.
// It has to go through Zone.Localize before it can be used as an Instant.
type NaiveDateTime struct {
	Date       Date
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
}

func (n NaiveDateTime) String() string {
	s := fmt.Sprintf("%sT%02d:%02d:%02d", n.Date, n.Hour, n.Minute, n.Second)
	if n.Nanosecond != 0 {
		s += "." + strings.TrimRight(fmt.Sprintf("%09d", n.Nanosecond), "0")
	}
	return s
}

func (n NaiveDateTime) matches(t time.Time) bool {
	return dateFromTime(t) == n.Date &&
		t.Hour() == n.Hour &&
		t.Minute() == n.Minute &&
		t.Second() == n.Second &&
		t.Nanosecond() == n.Nanosecond
}
