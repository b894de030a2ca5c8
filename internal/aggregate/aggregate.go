// Package aggregate turns half-hourly readings into total and per-day figures.
// All arithmetic is exact decimal.
package aggregate

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jgoulah/octousage/internal/localtime"
	"github.com/jgoulah/octousage/pkg/models"
)

// ErrEmptyInput is returned when an average is requested over no readings
var ErrEmptyInput = errors.New("no readings to aggregate")

// TotalUsage sums every reading's value. It returns zero for no readings.
func TotalUsage(readings []models.Reading) decimal.Decimal {
	total := decimal.Zero
	for _, r := range readings {
		total = total.Add(r.Value)
	}
	return total
}

// DailyTotals groups readings by the local date of their start instant and
// sums each group. Results are sorted by date. A reading is bucketed by its
// start only, even when its interval crosses midnight.
func DailyTotals(zone *localtime.Zone, readings []models.Reading) []models.DayTotal {
	buckets := make(map[localtime.Date]*models.DayTotal)
	for _, r := range readings {
		day := zone.DateOf(r.StartAt)
		b, ok := buckets[day]
		if !ok {
			b = &models.DayTotal{Date: day, KWh: decimal.Zero}
			buckets[day] = b
		}
		b.KWh = b.KWh.Add(r.Value)
		b.Readings++
	}

	days := make([]models.DayTotal, 0, len(buckets))
	for _, b := range buckets {
		days = append(days, *b)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days
}

// DailyAverage returns the mean of the per-day totals
func DailyAverage(zone *localtime.Zone, readings []models.Reading) (decimal.Decimal, error) {
	if len(readings) == 0 {
		return decimal.Zero, ErrEmptyInput
	}
	return meanOfDays(DailyTotals(zone, readings)), nil
}

func meanOfDays(days []models.DayTotal) decimal.Decimal {
	sum := decimal.Zero
	for _, d := range days {
		sum = sum.Add(d.KWh)
	}
	return sum.Div(decimal.NewFromInt(int64(len(days))))
}
