package domain

import (
	"errors"
	"fmt"
	"slices"
)

// SortKey es una columna por la que se pueden ordenar los resultados.
type SortKey string

const (
	SortAnnualizedReturn  SortKey = "annualized_return"
	SortStrike            SortKey = "strike"
	SortPremium           SortKey = "premium"
	SortVolume            SortKey = "volume"
	SortOpenInterest      SortKey = "open_interest"
	SortImpliedVolatility SortKey = "implied_volatility"
	SortDelta             SortKey = "delta"
	SortCalendarDays      SortKey = "calendar_days"
	SortBusinessDays      SortKey = "business_days"
	SortExpiration        SortKey = "expiration"
)

// KnownSortKeys son las claves aceptadas en output.sort_by.
var KnownSortKeys = []SortKey{
	SortAnnualizedReturn, SortStrike, SortPremium, SortVolume, SortOpenInterest,
	SortImpliedVolatility, SortDelta, SortCalendarDays, SortBusinessDays, SortExpiration,
}

// IsKnown devuelve true si la clave existe.
func (k SortKey) IsKnown() bool {
	return slices.Contains(KnownSortKeys, k)
}

// SortOrder es el sentido de ordenación, común a todas las claves.
type SortOrder string

const (
	Ascending  SortOrder = "ascending"
	Descending SortOrder = "descending"
)

// ScreeningConfig es el snapshot inmutable de la estrategia usado por una corrida.
// Las actualizaciones producen una nueva versión (ver ports.ConfigStore).
type ScreeningConfig struct {
	Version int `json:"version"`

	// Liquidez
	MinVolume       int64 `json:"min_volume"`
	MinOpenInterest int64 `json:"min_open_interest"`

	// Ventana de vencimiento en días naturales desde la fecha de referencia.
	MaxDTE int `json:"max_dte"`
	MinDTE int `json:"min_dte"` // 0 = sin mínimo

	// Retorno y riesgo
	MinAnnualizedReturn float64  `json:"min_annualized_return"` // porcentaje
	MinDelta            float64  `json:"min_delta"`
	MaxDelta            float64  `json:"max_delta"`
	DayCount            DayCount `json:"day_count"`

	// Salida
	SortBy     []SortKey `json:"sort_by"`
	SortOrder  SortOrder `json:"sort_order"`
	MaxResults int       `json:"max_results"`
}

// DefaultScreeningConfig devuelve la estrategia por defecto para cash-secured puts.
func DefaultScreeningConfig() ScreeningConfig {
	return ScreeningConfig{
		MinVolume:           10,
		MinOpenInterest:     10,
		MaxDTE:              45,
		MinDTE:              0,
		MinAnnualizedReturn: 20,
		MinDelta:            -0.3,
		MaxDelta:            -0.1,
		DayCount:            DayCountBusiness,
		SortBy:              []SortKey{SortAnnualizedReturn},
		SortOrder:           Descending,
		MaxResults:          50,
	}
}

// Clone devuelve una copia que no comparte el slice SortBy.
func (c ScreeningConfig) Clone() ScreeningConfig {
	c.SortBy = slices.Clone(c.SortBy)
	return c
}

// IsDescending devuelve true si el orden configurado es descendente.
func (c ScreeningConfig) IsDescending() bool {
	return c.SortOrder == Descending
}

// Validate rechaza umbrales inválidos. Todas las violaciones se devuelven juntas;
// cada una es un *ConfigError y el conjunto satisface errors.Is(err, ErrInvalidConfig).
func (c ScreeningConfig) Validate() error {
	var errs []error
	bad := func(field, format string, args ...any) {
		errs = append(errs, &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)})
	}

	if c.MinVolume < 0 {
		bad("min_volume", "must be >= 0, got %d", c.MinVolume)
	}
	if c.MinOpenInterest < 0 {
		bad("min_open_interest", "must be >= 0, got %d", c.MinOpenInterest)
	}
	if c.MaxDTE < 1 {
		bad("max_dte", "must be >= 1, got %d", c.MaxDTE)
	}
	if c.MinDTE < 0 {
		bad("min_dte", "must be >= 0, got %d", c.MinDTE)
	}
	if c.MinDTE > c.MaxDTE {
		bad("min_dte", "must be <= max_dte (%d), got %d", c.MaxDTE, c.MinDTE)
	}
	if c.MinDelta < -1 || c.MinDelta > 0 {
		bad("min_delta", "must be within [-1, 0], got %g", c.MinDelta)
	}
	if c.MaxDelta < -1 || c.MaxDelta > 0 {
		bad("max_delta", "must be within [-1, 0], got %g", c.MaxDelta)
	}
	if c.MinDelta > c.MaxDelta {
		bad("min_delta", "must be <= max_delta (%g), got %g", c.MaxDelta, c.MinDelta)
	}
	if _, err := ParseDayCount(string(c.DayCount)); err != nil {
		bad("day_count", "%v", err)
	}
	if len(c.SortBy) == 0 {
		bad("sort_by", "at least one sort key is required")
	}
	for _, k := range c.SortBy {
		if !k.IsKnown() {
			bad("sort_by", "unknown sort key %q", k)
		}
	}
	if c.SortOrder != Ascending && c.SortOrder != Descending {
		bad("sort_order", "must be ascending or descending, got %q", c.SortOrder)
	}
	if c.MaxResults < 1 {
		bad("max_results", "must be >= 1, got %d", c.MaxResults)
	}
	return errors.Join(errs...)
}
