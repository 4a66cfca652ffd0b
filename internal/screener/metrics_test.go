package screener

import (
	"testing"
	"time"

	"github.com/pk-ux/put-options-trading/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Scenario(t *testing.T) {
	// XYZ spot 100, strike 95, premium 2.0, 30 días hábiles (lunes 5 ene → viernes 13 feb).
	exp := time.Date(2026, time.February, 13, 0, 0, 0, 0, time.UTC)
	c := domain.OptionContract{Symbol: "XYZ", Strike: 95, Premium: 2.0, Expiration: exp}

	m := Metrics(c, 100, asOf, domain.DayCountBusiness)

	assert.True(t, m.OutOfTheMoney)
	assert.Equal(t, 30, m.BusinessDays)
	assert.Equal(t, 40, m.CalendarDays)
	assert.InDelta(t, 17.68, m.AnnualizedReturn, 0.005)
}

func TestMetrics_CalendarConvention(t *testing.T) {
	exp := time.Date(2026, time.February, 13, 0, 0, 0, 0, time.UTC)
	c := domain.OptionContract{Strike: 95, Premium: 2.0, Expiration: exp}

	m := Metrics(c, 100, asOf, domain.DayCountCalendar)

	assert.Equal(t, domain.DayCountCalendar, m.DayCount)
	assert.InDelta(t, 2.0/95*(252.0/40)*100, m.AnnualizedReturn, 1e-9)
}

func TestMetrics_MoneynessIsStrict(t *testing.T) {
	c := domain.OptionContract{Strike: 100, Premium: 1, Expiration: asOf.AddDate(0, 0, 7)}
	assert.False(t, Metrics(c, 100, asOf, domain.DayCountBusiness).OutOfTheMoney)
}

func TestMetrics_ExpiringOnWeekendStaysFinite(t *testing.T) {
	sat := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	c := domain.OptionContract{Strike: 50, Premium: 0.5, Expiration: sat}

	m := Metrics(c, 60, sat, domain.DayCountBusiness)

	assert.Equal(t, 1, m.BusinessDays)
	assert.Equal(t, 1, m.CalendarDays)
	assert.InDelta(t, 252.0, m.AnnualizedReturn, 1e-9)
}

func TestComputeMetrics_ReturnsNewSlice(t *testing.T) {
	contracts := []domain.OptionContract{
		{Strike: 90, Premium: 1, Expiration: asOf.AddDate(0, 0, 10)},
		{Strike: 110, Premium: 12, Expiration: asOf.AddDate(0, 0, 10)},
	}
	cands := ComputeMetrics(contracts, 100, asOf, domain.DayCountBusiness)

	require.Len(t, cands, 2)
	assert.True(t, cands[0].Metrics.OutOfTheMoney)
	assert.False(t, cands[1].Metrics.OutOfTheMoney)
	assert.Equal(t, contracts[0], cands[0].Contract)
}
