package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// 2026-01-05 es lunes.
var monday = day(2026, time.January, 5)

func TestCalendarDays(t *testing.T) {
	assert.Equal(t, 1, CalendarDays(monday, monday), "mismo día → 0+1")
	assert.Equal(t, 2, CalendarDays(monday, monday.AddDate(0, 0, 1)))
	assert.Equal(t, 46, CalendarDays(monday, monday.AddDate(0, 0, 45)))
	assert.Equal(t, 1, CalendarDays(monday, monday.AddDate(0, 0, -3)), "vencido → coerción a 1")
}

func TestCalendarDays_IgnoresTimeOfDay(t *testing.T) {
	asOf := time.Date(2026, time.January, 5, 23, 59, 0, 0, time.UTC)
	exp := time.Date(2026, time.January, 6, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 2, CalendarDays(asOf, exp))
}

func TestBusinessDays(t *testing.T) {
	tests := []struct {
		name string
		asOf time.Time
		exp  time.Time
		want int
	}{
		{"same weekday", monday, monday, 1},
		{"mon to fri", monday, monday.AddDate(0, 0, 4), 5},
		{"mon to next mon", monday, monday.AddDate(0, 0, 7), 6},
		{"six weeks", monday, day(2026, time.February, 13), 30},
		{"weekend only → 1", day(2026, time.January, 10), day(2026, time.January, 11), 1},
		{"saturday to monday", day(2026, time.January, 10), day(2026, time.January, 12), 1},
		{"friday to monday", day(2026, time.January, 9), day(2026, time.January, 12), 2},
		{"expired → 1", monday, monday.AddDate(0, 0, -10), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BusinessDays(tt.asOf, tt.exp))
		})
	}
}

func TestBusinessDays_MatchesNaiveCount(t *testing.T) {
	for offset := 0; offset < 7; offset++ {
		start := monday.AddDate(0, 0, offset)
		for n := 0; n < 60; n++ {
			end := start.AddDate(0, 0, n)
			naive := 0
			for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
				if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
					naive++
				}
			}
			require.Equal(t, max(naive, 1), BusinessDays(start, end), "start=%s n=%d", start.Format("2006-01-02"), n)
		}
	}
}

func TestAnnualizedReturn_Scenario(t *testing.T) {
	// XYZ: strike 95, premium 2.0, 30 días hábiles → ≈ 17.68%
	got := AnnualizedReturn(2.0, 95, 30)
	assert.InDelta(t, 17.68, got, 0.005)
}

func TestAnnualizedReturn_ZeroDaysCoerced(t *testing.T) {
	got := AnnualizedReturn(1.0, 100, 0)
	assert.False(t, math.IsInf(got, 0))
	assert.InDelta(t, 252.0, got, 1e-9, "0 días se trata como 1")
}

func TestAnnualizedReturn_NotCapped(t *testing.T) {
	got := AnnualizedReturn(3.0, 50, 1)
	assert.InDelta(t, 1512.0, got, 1e-9)
}

func TestParseDayCount(t *testing.T) {
	dc, err := ParseDayCount("")
	require.NoError(t, err)
	assert.Equal(t, DayCountBusiness, dc)

	dc, err = ParseDayCount("calendar")
	require.NoError(t, err)
	assert.Equal(t, DayCountCalendar, dc)

	_, err = ParseDayCount("actual/360")
	assert.Error(t, err)
}
