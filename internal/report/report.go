// Package report turns aggregated readings into the summary shown to the user:
// a console table, an SVG card and an optional PNG of that card.
package report

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/jgoulah/octousage/internal/aggregate"
	"github.com/jgoulah/octousage/internal/daterange"
	"github.com/jgoulah/octousage/internal/localtime"
	"github.com/jgoulah/octousage/pkg/models"
)

// Accent colours of the usage card
const (
	Pink   = "#DF00A9"
	Purple = "#9400FF"
)

// Build aggregates readings over rng. It fails with aggregate.ErrEmptyInput
// when there is nothing to average.
func Build(zone *localtime.Zone, rng daterange.Range, readings []models.Reading) (models.Summary, error) {
	avg, err := aggregate.DailyAverage(zone, readings)
	if err != nil {
		return models.Summary{}, fmt.Errorf("building report for %s: %w", rng, err)
	}

	return models.Summary{
		StartDate:    rng.StartDate,
		EndDate:      rng.EndDate,
		TotalUsage:   aggregate.TotalUsage(readings),
		DailyAverage: avg,
		Days:         aggregate.DailyTotals(zone, readings),
		Readings:     len(readings),
	}, nil
}

// Title is the heading shared by the table and the card
func Title(s models.Summary) string {
	return fmt.Sprintf("%s ~ %s", s.StartDate, s.EndDate)
}

// FormatKWh renders d with two decimals and thousands grouping, e.g. "1,234.50 kWh"
func FormatKWh(d decimal.Decimal) string {
	return FormatNumber(d) + " kWh"
}

// FormatNumber rounds d to two places and groups the integer part
func FormatNumber(d decimal.Decimal) string {
	fixed := d.StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}

	intPart, frac, _ := strings.Cut(fixed, ".")
	n, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return sign + fixed
	}
	return sign + humanize.BigComma(n) + "." + frac
}
