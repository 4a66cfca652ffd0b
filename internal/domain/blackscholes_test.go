package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutDelta_KnownValue(t *testing.T) {
	d := PutDelta(100, 95, 0.30, 30.0/365)
	assert.True(t, d.Defined)
	assert.InDelta(t, -0.246, d.Value, 0.001)
}

func TestPutDelta_DeepOTM(t *testing.T) {
	d := PutDelta(100, 90, 0.25, 20.0/365)
	assert.True(t, d.Defined)
	assert.InDelta(t, -0.0303, d.Value, 0.0005)
}

func TestPutDelta_AlwaysInPutRange(t *testing.T) {
	for _, strike := range []float64{1, 50, 90, 100, 110, 200, 10_000} {
		for _, iv := range []float64{0.01, 0.2, 1.5, 5} {
			d := PutDelta(100, strike, iv, 10.0/365)
			if d.Defined {
				assert.GreaterOrEqual(t, d.Value, -1.0)
				assert.LessOrEqual(t, d.Value, 0.0)
			}
		}
	}
}

func TestPutDelta_MonotonicInStrike(t *testing.T) {
	lo := PutDelta(100, 90, 0.3, 0.1)
	hi := PutDelta(100, 110, 0.3, 0.1)
	assert.Less(t, hi.Value, lo.Value, "un strike más alto (ITM) tiene delta más negativo")
}

func TestPutDelta_UndefinedWhenDivisionByZero(t *testing.T) {
	assert.False(t, PutDelta(100, 95, 0, 0.1).Defined, "σ = 0")
	assert.False(t, PutDelta(100, 95, 0.3, 0).Defined, "T = 0")
	assert.False(t, PutDelta(100, 95, 0.3, -0.01).Defined, "T < 0")
	assert.False(t, PutDelta(0, 95, 0.3, 0.1).Defined, "spot = 0")
	assert.False(t, PutDelta(100, 95, math.NaN(), 0.1).Defined)
}

func TestNormCDF(t *testing.T) {
	assert.InDelta(t, 0.5, NormCDF(0), 1e-12)
	assert.InDelta(t, 0.8413, NormCDF(1), 1e-4)
	assert.InDelta(t, 0.0228, NormCDF(-2), 1e-4)
}

func TestDelta_Float(t *testing.T) {
	v, err := DefinedDelta(-0.2).Float()
	require.NoError(t, err)
	assert.Equal(t, -0.2, v)

	_, err = UndefinedDelta.Float()
	assert.ErrorIs(t, err, ErrUndefinedDelta)
}
