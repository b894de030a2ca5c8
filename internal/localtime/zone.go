// Package localtime keeps every zone conversion in one place. Aware instants
// and zone-less wall-clock values are separate types, so a naive value can
// never reach code that expects an instant.
package localtime

import (
	"fmt"
	"sort"
	"time"

	// Embedded tz database so LoadZone works on hosts without /usr/share/zoneinfo
	_ "time/tzdata"
)

// DefaultZone is the zone the supplier reports readings in
const DefaultZone = "Asia/Tokyo"

// Zone converts between instants and calendar dates in a fixed location
type Zone struct {
	loc *time.Location
	now func() time.Time
}

// LoadZone resolves an IANA zone name, falling back to DefaultZone when empty
func LoadZone(name string) (*Zone, error) {
	if name == "" {
		name = DefaultZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %q: %w", name, err)
	}
	return NewZone(loc, time.Now), nil
}

// NewZone creates a Zone with an explicit clock
func NewZone(loc *time.Location, now func() time.Time) *Zone {
	if now == nil {
		now = time.Now
	}
	return &Zone{loc: loc, now: now}
}

// Location returns the configured location
func (z *Zone) Location() *time.Location { return z.loc }

// Now returns the current instant in the configured zone
func (z *Zone) Now() Instant {
	return Instant{t: z.now().In(z.loc)}
}

// Today returns the current local calendar date
func (z *Zone) Today() Date {
	return z.DateOf(z.Now())
}

// DaysInThePast returns the date n days before today
func (z *Zone) DaysInThePast(n int) Date {
	return z.DaysBefore(z.Today(), n)
}

// DaysBefore returns the date n days before ref
func (z *Zone) DaysBefore(ref Date, n int) Date {
	return ref.AddDays(-n)
}

// Midnight returns the instant of local 00:00:00 on d
func (z *Zone) Midnight(d Date) (Instant, error) {
	return z.Localize(d.At(0, 0, 0))
}

// MidnightToday returns the instant of local 00:00:00 today
func (z *Zone) MidnightToday() (Instant, error) {
	return z.Midnight(z.Today())
}

// Localize attaches the zone's offset to a wall-clock time.
//
// A wall time skipped by a forward transition fails with ErrInvalidInput. A
// wall time repeated by a backward transition resolves to its earlier
// occurrence, i.e. the one still on daylight time.
func (z *Zone) Localize(n NaiveDateTime) (Instant, error) {
	wall := time.Date(n.Date.Year, n.Date.Month, n.Date.Day, n.Hour, n.Minute, n.Second, n.Nanosecond, time.UTC)

	var candidates []time.Time
	for _, offset := range z.offsetsNear(wall) {
		t := wall.Add(-time.Duration(offset) * time.Second).In(z.loc)
		if n.matches(t) {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return Instant{}, fmt.Errorf("%w: %s does not exist in %s", ErrInvalidInput, n, z.loc)
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Before(candidates[j]) })
	return Instant{t: candidates[0]}, nil
}

// offsetsNear lists the distinct UTC offsets in effect within a day and a half of wall
func (z *Zone) offsetsNear(wall time.Time) []int {
	var offsets []int
	seen := make(map[int]bool)
	for _, at := range []time.Time{wall.Add(-36 * time.Hour), wall, wall.Add(36 * time.Hour)} {
		_, offset := at.In(z.loc).Zone()
		if !seen[offset] {
			seen[offset] = true
			offsets = append(offsets, offset)
		}
	}
	return offsets
}

// AsLocal returns the same instant expressed in the configured zone
func (z *Zone) AsLocal(i Instant) time.Time {
	return i.t.In(z.loc)
}

// DateOf returns the local calendar date the instant falls on
func (z *Zone) DateOf(i Instant) Date {
	return dateFromTime(z.AsLocal(i))
}
