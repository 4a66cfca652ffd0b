package domain

import (
	"math"
	"time"
)

// SummarySymbol es la clave sintética del resultado agregado entre símbolos.
const SummarySymbol = "Summary"

// ResultRow es una fila lista para mostrar.
type ResultRow struct {
	Symbol            string    `json:"symbol"`
	ContractID        string    `json:"contract_id,omitempty"`
	Strike            float64   `json:"strike"`
	Premium           float64   `json:"premium"`
	Volume            int64     `json:"volume"`
	OpenInterest      int64     `json:"open_interest"`
	ImpliedVolatility float64   `json:"implied_volatility_pct"` // %, 2 decimales
	Delta             float64   `json:"delta"`                  // 3 decimales
	AnnualizedReturn  float64   `json:"annualized_return_pct"`  // %, 2 decimales
	Expiration        time.Time `json:"expiration"`
	CalendarDays      int       `json:"calendar_days"`
	BusinessDays      int       `json:"business_days"`
}

// NewResultRow convierte un candidato en fila con el redondeo de presentación.
func NewResultRow(c Candidate) ResultRow {
	return ResultRow{
		Symbol:            c.Contract.Symbol,
		ContractID:        c.Contract.ContractID,
		Strike:            c.Contract.Strike,
		Premium:           c.Contract.Premium,
		Volume:            c.Contract.Volume,
		OpenInterest:      c.Contract.OpenInterest,
		ImpliedVolatility: Round(c.Contract.ImpliedVolatility*100, 2),
		Delta:             Round(c.Contract.Delta.Value, 3),
		AnnualizedReturn:  Round(c.Metrics.AnnualizedReturn, 2),
		Expiration:        c.Contract.Expiration,
		CalendarDays:      c.Metrics.CalendarDays,
		BusinessDays:      c.Metrics.BusinessDays,
	}
}

// Round redondea v a n decimales (half away from zero).
func Round(v float64, n int) float64 {
	p := math.Pow(10, float64(n))
	return math.Round(v*p) / p
}

// PredicateCounts son los pasa/no-pasa de cada predicado, evaluados de forma
// independiente sobre el conjunto completo de entrada.
type PredicateCounts struct {
	Total         int `json:"total"`
	Volume        int `json:"volume"`
	OpenInterest  int `json:"open_interest"`
	MinDelta      int `json:"min_delta"`
	MaxDelta      int `json:"max_delta"`
	Return        int `json:"annualized_return"`
	OutOfTheMoney int `json:"out_of_the_money"`
	All           int `json:"all"` // AND de los seis
}

// NormalizationStats cuenta lo que hizo el normalizador.
type NormalizationStats struct {
	Input          int `json:"input"`
	Dropped        int `json:"dropped"`         // contratos malformados
	DeltaComputed  int `json:"delta_computed"`  // delta ausente, calculado con Black-Scholes
	UndefinedDelta int `json:"undefined_delta"` // delta indefinido tras normalizar
	LiquidityZero  int `json:"liquidity_zero"`  // volumen u OI ausente → 0
}

// Diagnostics acompaña a cada resultado para troubleshooting.
type Diagnostics struct {
	Normalization NormalizationStats `json:"normalization"`
	Predicates    PredicateCounts    `json:"predicates"`
	OutOfWindow   int                `json:"out_of_window"`
}

// ScreeningResult es el resultado de un símbolo (o el Summary).
type ScreeningResult struct {
	Symbol        string      `json:"symbol"`
	SpotPrice     float64     `json:"spot_price,omitempty"`
	ConfigVersion int         `json:"config_version"`
	AsOf          time.Time   `json:"as_of"`
	Rows          []ResultRow `json:"rows"`
	Diagnostics   Diagnostics `json:"diagnostics"`
}

// Top devuelve la fila mejor rankeada.
func (r ScreeningResult) Top() (ResultRow, bool) {
	if len(r.Rows) == 0 {
		return ResultRow{}, false
	}
	return r.Rows[0], true
}

// IsSummary devuelve true para el resultado agregado.
func (r ScreeningResult) IsSummary() bool {
	return r.Symbol == SummarySymbol
}
