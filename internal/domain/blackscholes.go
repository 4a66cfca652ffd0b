package domain

import "math"

// RiskFreeRate es la tasa libre de riesgo fija usada para aproximar el delta.
const RiskFreeRate = 0.05

// PutDelta aproxima el delta de un put europeo con Black-Scholes:
//
//	d1    = (ln(S/K) + (r + σ²/2)·T) / (σ·√T)
//	delta = -Φ(-d1)
//
// T está en años (días / 365). Con σ ≤ 0, T ≤ 0 o precios no positivos el delta
// queda indefinido en lugar de inventar un valor.
func PutDelta(spot, strike, sigma, years float64) Delta {
	if sigma <= 0 || years <= 0 || spot <= 0 || strike <= 0 ||
		math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		return UndefinedDelta
	}
	d1 := (math.Log(spot/strike) + (RiskFreeRate+sigma*sigma/2)*years) / (sigma * math.Sqrt(years))
	v := -NormCDF(-d1)
	if !InPutRange(v) {
		return UndefinedDelta
	}
	return DefinedDelta(v)
}

// NormCDF es la función de distribución acumulada de la normal estándar.
func NormCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}
