package screener

import (
	"math"
	"testing"

	"github.com/pk-ux/put-options-trading/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_ComputesMissingDelta(t *testing.T) {
	raw := []domain.RawContract{rawPut("XYZ", 95, 2.0, 0.30, asOf.AddDate(0, 0, 30))}

	out, stats := Normalize(raw, 100, asOf)

	require.Len(t, out, 1)
	assert.True(t, out[0].Delta.Defined)
	assert.InDelta(t, -0.246, out[0].Delta.Value, 0.001)
	assert.Equal(t, 1, stats.DeltaComputed)
	assert.Equal(t, 0, stats.Dropped)
}

func TestNormalize_KeepsFeedDelta(t *testing.T) {
	r := rawPut("XYZ", 95, 2.0, 0.30, asOf.AddDate(0, 0, 30))
	r.Delta = ptr(-0.2)

	out, stats := Normalize([]domain.RawContract{r}, 100, asOf)

	require.Len(t, out, 1)
	assert.Equal(t, domain.DefinedDelta(-0.2), out[0].Delta)
	assert.Equal(t, 0, stats.DeltaComputed)
}

func TestNormalize_UndefinedDeltaIsFlaggedNotDropped(t *testing.T) {
	zeroIV := rawPut("XYZ", 95, 2.0, 0, asOf.AddDate(0, 0, 30))
	expiresToday := rawPut("XYZ", 95, 2.0, 0.3, asOf)
	outOfRange := rawPut("XYZ", 95, 2.0, 0.3, asOf.AddDate(0, 0, 30))
	outOfRange.Delta = ptr(0.4)

	out, stats := Normalize([]domain.RawContract{zeroIV, expiresToday, outOfRange}, 100, asOf)

	require.Len(t, out, 3)
	for _, c := range out {
		assert.False(t, c.Delta.Defined)
	}
	assert.Equal(t, 3, stats.UndefinedDelta)
}

func TestNormalize_DeltaNeverOutsideRange(t *testing.T) {
	var raw []domain.RawContract
	for strike := 5.0; strike <= 300; strike += 5 {
		for _, iv := range []float64{0, 0.05, 0.4, 2} {
			raw = append(raw, rawPut("XYZ", strike, 1, iv, asOf.AddDate(0, 0, 12)))
		}
	}
	out, _ := Normalize(raw, 100, asOf)
	for _, c := range out {
		if c.Delta.Defined {
			assert.True(t, domain.InPutRange(c.Delta.Value))
			continue
		}
		assert.True(t, math.IsNaN(c.Delta.Value), "un delta indefinido nunca es 0 silencioso")
	}
}

func TestNormalize_DefaultsMissingLiquidityToZero(t *testing.T) {
	r := rawPut("XYZ", 95, 2.0, 0.3, asOf.AddDate(0, 0, 30))
	r.Volume = nil
	r.OpenInterest = nil

	out, stats := Normalize([]domain.RawContract{r}, 100, asOf)

	require.Len(t, out, 1)
	assert.Zero(t, out[0].Volume)
	assert.Zero(t, out[0].OpenInterest)
	assert.Equal(t, 1, stats.LiquidityZero)
}

func TestNormalize_DropsMalformed(t *testing.T) {
	good := rawPut("XYZ", 95, 2.0, 0.3, asOf.AddDate(0, 0, 30))
	noStrike := good
	noStrike.Strike = nil
	noPremium := good
	noPremium.LastPrice = nil
	negPremium := good
	negPremium.LastPrice = ptr(-1.0)
	zeroStrike := good
	zeroStrike.Strike = ptr(0.0)

	raw := []domain.RawContract{noStrike, good, noPremium, negPremium, zeroStrike}
	out, stats := Normalize(raw, 100, asOf)

	require.Len(t, out, 1)
	assert.Equal(t, 95.0, out[0].Strike)
	assert.Equal(t, 4, stats.Dropped)
	assert.Equal(t, 5, stats.Input)
	require.NotNil(t, raw[1].Strike, "el input no se modifica")
}
