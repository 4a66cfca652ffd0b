package screener

import (
	"time"

	"github.com/pk-ux/put-options-trading/internal/domain"
)

// ComputeMetrics derives moneyness, day counts and annualized return for every
// contract. One call uses exactly one day-count convention for the return.
func ComputeMetrics(contracts []domain.OptionContract, spot float64, asOf time.Time, dc domain.DayCount) []domain.Candidate {
	out := make([]domain.Candidate, len(contracts))
	for i, c := range contracts {
		out[i] = domain.Candidate{
			Contract: c,
			Metrics:  Metrics(c, spot, asOf, dc),
		}
	}
	return out
}

// Metrics computes the derived metrics of a single contract.
func Metrics(c domain.OptionContract, spot float64, asOf time.Time, dc domain.DayCount) domain.DerivedMetrics {
	m := domain.DerivedMetrics{
		OutOfTheMoney: c.Strike < spot,
		CalendarDays:  domain.CalendarDays(asOf, c.Expiration),
		BusinessDays:  domain.BusinessDays(asOf, c.Expiration),
		DayCount:      dc,
	}

	days := m.BusinessDays
	if dc == domain.DayCountCalendar {
		days = m.CalendarDays
	}
	m.AnnualizedReturn = domain.AnnualizedReturn(c.Premium, c.Strike, days)
	return m
}
