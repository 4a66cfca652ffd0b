package screener

import (
	"math"
	"time"

	"github.com/pk-ux/put-options-trading/internal/domain"
)

// Normalize converts raw feed quotes into contracts with every field populated.
//
//   - missing strike or premium (or non-positive strike, negative premium, zero
//     expiration): the quote is dropped and counted in Stats.Dropped
//   - missing delta: Black-Scholes put delta from spot, strike, IV and
//     calendar days to expiration / 365; undefined when σ or T is zero
//   - feed delta outside [-1, 0]: undefined
//   - missing open interest or volume: 0
//
// The input slice is not modified.
func Normalize(raw []domain.RawContract, spot float64, asOf time.Time) ([]domain.OptionContract, domain.NormalizationStats) {
	stats := domain.NormalizationStats{Input: len(raw)}
	out := make([]domain.OptionContract, 0, len(raw))

	for _, r := range raw {
		c, err := normalizeOne(r, spot, asOf, &stats)
		if err != nil {
			stats.Dropped++
			continue
		}
		if !c.Delta.Defined {
			stats.UndefinedDelta++
		}
		out = append(out, c)
	}
	return out, stats
}

func normalizeOne(r domain.RawContract, spot float64, asOf time.Time, stats *domain.NormalizationStats) (domain.OptionContract, error) {
	if r.Strike == nil || !validPositive(*r.Strike) {
		return domain.OptionContract{}, domain.ErrMalformedContract
	}
	if r.LastPrice == nil || math.IsNaN(*r.LastPrice) || math.IsInf(*r.LastPrice, 0) || *r.LastPrice < 0 {
		return domain.OptionContract{}, domain.ErrMalformedContract
	}
	if r.Expiration.IsZero() {
		return domain.OptionContract{}, domain.ErrMalformedContract
	}

	c := domain.OptionContract{
		ContractID:        r.ContractID,
		Symbol:            r.Symbol,
		Strike:            *r.Strike,
		Expiration:        r.Expiration,
		Premium:           *r.LastPrice,
		ImpliedVolatility: r.ImpliedVolatility,
	}

	switch {
	case r.Delta != nil && domain.InPutRange(*r.Delta):
		c.Delta = domain.DefinedDelta(*r.Delta)
	case r.Delta != nil:
		c.Delta = domain.UndefinedDelta
	default:
		years := float64(domain.DaysBetween(asOf, r.Expiration)) / 365
		c.Delta = domain.PutDelta(spot, c.Strike, c.ImpliedVolatility, years)
		stats.DeltaComputed++
	}

	if r.OpenInterest != nil {
		c.OpenInterest = *r.OpenInterest
	}
	if r.Volume != nil {
		c.Volume = *r.Volume
	}
	if r.OpenInterest == nil || r.Volume == nil {
		stats.LiquidityZero++
	}
	return c, nil
}

func validPositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
