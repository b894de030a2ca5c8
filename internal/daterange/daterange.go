// Package daterange resolves a user-supplied pair of calendar dates into the
// instant window sent to the supplier.
package daterange

import (
	"errors"
	"fmt"

	"github.com/jgoulah/octousage/internal/localtime"
)

// DefaultDays is how far back the start date goes when only the end is known
const DefaultDays = 3

// ErrInvalidRange is returned when the start date is not strictly before the end date
var ErrInvalidRange = errors.New("invalid date range")

// Range is a half-open window [From, To).
//
// To is local midnight at the start of EndDate, so readings taken on EndDate
// itself are not part of the window. Callers wanting a day included should
// pass the following day as the end.
type Range struct {
	StartDate localtime.Date
	EndDate   localtime.Date
	From      localtime.Instant
	To        localtime.Instant
}

// Days returns the number of calendar days in the window
func (r Range) Days() int {
	return r.StartDate.DaysUntil(r.EndDate)
}

func (r Range) String() string {
	return fmt.Sprintf("%s ~ %s", r.StartDate, r.EndDate)
}

// Resolver fills in missing bounds relative to the zone's current date
type Resolver struct {
	Zone        *localtime.Zone
	DefaultDays int
}

// NewResolver creates a resolver; days <= 0 means DefaultDays
func NewResolver(zone *localtime.Zone, days int) *Resolver {
	if days <= 0 {
		days = DefaultDays
	}
	return &Resolver{Zone: zone, DefaultDays: days}
}

// Resolve defaults end to today and start to DefaultDays before end, then
// converts both to local midnights
func (r *Resolver) Resolve(start, end *localtime.Date) (Range, error) {
	var endDate localtime.Date
	if end != nil {
		endDate = *end
	} else {
		endDate = r.Zone.Today()
	}

	var startDate localtime.Date
	if start != nil {
		startDate = *start
	} else {
		startDate = r.Zone.DaysBefore(endDate, r.days())
	}

	if !startDate.Before(endDate) {
		return Range{}, fmt.Errorf("%w: start date %s must be before end date %s", ErrInvalidRange, startDate, endDate)
	}

	from, err := r.Zone.Midnight(startDate)
	if err != nil {
		return Range{}, fmt.Errorf("resolving start: %w", err)
	}
	to, err := r.Zone.Midnight(endDate)
	if err != nil {
		return Range{}, fmt.Errorf("resolving end: %w", err)
	}

	return Range{
		StartDate: startDate,
		EndDate:   endDate,
		From:      from,
		To:        to,
	}, nil
}

func (r *Resolver) days() int {
	if r.DefaultDays <= 0 {
		return DefaultDays
	}
	return r.DefaultDays
}
