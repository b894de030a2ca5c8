package models

import (
	"github.com/shopspring/decimal"

	"github.com/jgoulah/octousage/internal/localtime"
)

// Reading is one half-hourly electricity reading as reported by the supplier
type Reading struct {
	StartAt localtime.Instant `json:"start_at"`
	EndAt   localtime.Instant `json:"end_at"`
	Version string            `json:"version"` // Opaque supplier revision, not interpreted
	Value   decimal.Decimal   `json:"value"`   // kWh
}

// DayTotal is the usage summed over one local calendar day
type DayTotal struct {
	Date     localtime.Date  `json:"date"`
	KWh      decimal.Decimal `json:"kwh"`
	Readings int             `json:"readings"`
}

// Summary is the structured report handed to the presentation layer and publishers
type Summary struct {
	StartDate    localtime.Date  `json:"start_date"`
	EndDate      localtime.Date  `json:"end_date"`
	TotalUsage   decimal.Decimal `json:"total_usage"`   // kWh
	DailyAverage decimal.Decimal `json:"daily_average"` // kWh per day
	Days         []DayTotal      `json:"days"`
	Readings     int             `json:"readings"`
}
