package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/octousage/internal/localtime"
)

func newResolver(t *testing.T, now time.Time) *Resolver {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	return NewResolver(localtime.NewZone(loc, func() time.Time { return now }), 0)
}

func datePtr(y int, m time.Month, d int) *localtime.Date {
	date := localtime.NewDate(y, m, d)
	return &date
}

func TestResolve_Defaults(t *testing.T) {
	t.Parallel()

	// 2024-01-10 08:00 in Tokyo
	r := newResolver(t, time.Date(2024, 1, 9, 23, 0, 0, 0, time.UTC))

	got, err := r.Resolve(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, localtime.NewDate(2024, 1, 7), got.StartDate)
	assert.Equal(t, localtime.NewDate(2024, 1, 10), got.EndDate)
	assert.Equal(t, time.Date(2024, 1, 6, 15, 0, 0, 0, time.UTC), got.From.UTC())
	assert.Equal(t, time.Date(2024, 1, 9, 15, 0, 0, 0, time.UTC), got.To.UTC())
	assert.Equal(t, 3, got.Days())
	assert.Equal(t, "2024-01-07 ~ 2024-01-10", got.String())
}

func TestResolve_StartDefaultsRelativeToEnd(t *testing.T) {
	t.Parallel()

	r := newResolver(t, time.Date(2024, 1, 9, 23, 0, 0, 0, time.UTC))

	got, err := r.Resolve(nil, datePtr(2023, 12, 2))
	require.NoError(t, err)
	assert.Equal(t, localtime.NewDate(2023, 11, 29), got.StartDate)
}

func TestResolve_ExplicitBounds(t *testing.T) {
	t.Parallel()

	r := newResolver(t, time.Date(2024, 1, 9, 23, 0, 0, 0, time.UTC))

	got, err := r.Resolve(datePtr(2022, 9, 5), datePtr(2022, 9, 6))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2022, 9, 4, 15, 0, 0, 0, time.UTC), got.From.UTC())
	assert.Equal(t, 24*time.Hour, got.To.Sub(got.From))
}

func TestResolve_InvalidRange(t *testing.T) {
	t.Parallel()

	r := newResolver(t, time.Date(2024, 1, 9, 23, 0, 0, 0, time.UTC))

	tests := []struct {
		name       string
		start, end *localtime.Date
	}{
		{"equal", datePtr(2024, 1, 5), datePtr(2024, 1, 5)},
		{"reversed", datePtr(2024, 1, 6), datePtr(2024, 1, 5)},
		{"start is today with default end", datePtr(2024, 1, 10), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(tt.start, tt.end)
			require.ErrorIs(t, err, ErrInvalidRange)
		})
	}
}

func TestResolve_CustomDefaultDays(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	zone := localtime.NewZone(loc, func() time.Time { return time.Date(2024, 1, 9, 23, 0, 0, 0, time.UTC) })

	got, err := NewResolver(zone, 7).Resolve(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, localtime.NewDate(2024, 1, 3), got.StartDate)
}
