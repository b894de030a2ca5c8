package localtime

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidInput is returned when a timestamp has no UTC offset, or when a
// local wall-clock time does not exist in the configured zone
var ErrInvalidInput = errors.New("invalid input")

// awareLayouts all require an explicit offset
var awareLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
}

// Instant is a timezone-aware point in time
type Instant struct {
	t time.Time
}

// InstantOf wraps an aware time.Time
func InstantOf(t time.Time) Instant {
	return Instant{t: t}
}

// ParseInstant parses an ISO-8601 timestamp that carries an offset ("Z" or "+09:00").
// Timestamps without an offset are ambiguous and fail with ErrInvalidInput.
func ParseInstant(s string) (Instant, error) {
	s = strings.TrimSpace(s)
	for _, layout := range awareLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Instant{t: t}, nil
		}
	}
	for _, layout := range naiveLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return Instant{}, fmt.Errorf("%w: timestamp %q has no UTC offset", ErrInvalidInput, s)
		}
	}
	return Instant{}, fmt.Errorf("%w: unable to parse timestamp %q", ErrInvalidInput, s)
}

// Time returns the underlying time.Time in whatever location it was created with
func (i Instant) Time() time.Time { return i.t }

// UTC returns the instant as a UTC time.Time
func (i Instant) UTC() time.Time { return i.t.UTC() }

func (i Instant) Before(other Instant) bool { return i.t.Before(other.t) }
func (i Instant) After(other Instant) bool  { return i.t.After(other.t) }
func (i Instant) Equal(other Instant) bool  { return i.t.Equal(other.t) }
func (i Instant) IsZero() bool              { return i.t.IsZero() }

// Sub returns the duration i-other
func (i Instant) Sub(other Instant) time.Duration { return i.t.Sub(other.t) }

// Add returns the instant shifted by d
func (i Instant) Add(d time.Duration) Instant { return Instant{t: i.t.Add(d)} }

// String formats the instant as RFC 3339 with its offset
func (i Instant) String() string {
	return i.t.Format(time.RFC3339)
}

// MarshalText implements encoding.TextMarshaler
func (i Instant) MarshalText() ([]byte, error) {
	return []byte(i.t.Format(time.RFC3339Nano)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (i *Instant) UnmarshalText(b []byte) error {
	parsed, err := ParseInstant(string(b))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
