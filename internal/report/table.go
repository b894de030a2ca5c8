package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/jgoulah/octousage/internal/localtime"
	"github.com/jgoulah/octousage/pkg/models"
)

const tableWidth = 34

// WriteTable prints the summary as a console table. With days set, one row
// per local day precedes the summary rows.
func WriteTable(w io.Writer, s models.Summary, days bool) error {
	rule := strings.Repeat("-", tableWidth)
	title := Title(s)

	var b strings.Builder
	pad := (tableWidth - len(title)) / 2
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(&b, "%s%s\n", strings.Repeat(" ", pad), title)
	fmt.Fprintln(&b, rule)

	if days && len(s.Days) > 0 {
		for _, d := range s.Days {
			fmt.Fprintf(&b, "%-12s  %20s\n", d.Date, FormatKWh(d.KWh))
		}
		fmt.Fprintln(&b, rule)
	}

	fmt.Fprintf(&b, "%-12s  %20s\n", "Daily Avg", FormatKWh(s.DailyAverage))
	fmt.Fprintf(&b, "%-12s  %20s\n", "Total Usage", FormatKWh(s.TotalUsage))
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "%s readings over %s\n", humanize.Comma(int64(s.Readings)), pluralDays(len(s.Days)))

	_, err := io.WriteString(w, b.String())
	return err
}

// ReadingRow is one reading with both bounds shown in the configured zone
type ReadingRow struct {
	Start   string
	End     string
	Version string
	Value   decimal.Decimal
}

// LocalRows converts readings for display in zone
func LocalRows(zone *localtime.Zone, readings []models.Reading) []ReadingRow {
	rows := make([]ReadingRow, 0, len(readings))
	for _, r := range readings {
		rows = append(rows, ReadingRow{
			Start:   zone.AsLocal(r.StartAt).Format(time.RFC3339),
			End:     zone.AsLocal(r.EndAt).Format(time.RFC3339),
			Version: r.Version,
			Value:   r.Value,
		})
	}
	return rows
}

// WriteReadings lists raw readings in local time, one per line
func WriteReadings(w io.Writer, rows []ReadingRow) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%-25s  %-25s  %-8s  %10s\n", "Start", "End", "Version", "kWh")
	fmt.Fprintln(&b, strings.Repeat("-", 74))
	for _, r := range rows {
		fmt.Fprintf(&b, "%-25s  %-25s  %-8s  %10s\n", r.Start, r.End, r.Version, FormatNumber(r.Value))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
