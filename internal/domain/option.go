package domain

import (
	"math"
	"time"
)

// RawContract es un put tal como lo entrega el feed de mercado.
// Los campos puntero pueden venir ausentes; el normalizador decide qué hacer con ellos.
type RawContract struct {
	ContractID        string
	Symbol            string
	Strike            *float64
	Expiration        time.Time
	LastPrice         *float64 // último premium negociado
	ImpliedVolatility float64  // decimal (0.25 = 25%)
	Delta             *float64
	OpenInterest      *int64
	Volume            *int64
}

// Delta es el delta de un put. Defined=false significa que no pudo calcularse
// (σ = 0 o T = 0) o que el feed devolvió un valor fuera de [-1, 0].
type Delta struct {
	Value   float64
	Defined bool
}

// DefinedDelta construye un Delta válido.
func DefinedDelta(v float64) Delta {
	return Delta{Value: v, Defined: true}
}

// Float devuelve el valor, o ErrUndefinedDelta si no está definido.
func (d Delta) Float() (float64, error) {
	if !d.Defined {
		return 0, ErrUndefinedDelta
	}
	return d.Value, nil
}

// UndefinedDelta es el delta de un contrato excluido del filtro por banda de delta.
var UndefinedDelta = Delta{Value: math.NaN()}

// InPutRange devuelve true si v es un delta de put válido.
func InPutRange(v float64) bool {
	return !math.IsNaN(v) && v >= -1 && v <= 0
}

// OptionContract es un put normalizado: strike y premium presentes, liquidez con default 0.
type OptionContract struct {
	ContractID        string
	Symbol            string
	Strike            float64
	Expiration        time.Time
	Premium           float64
	ImpliedVolatility float64
	Delta             Delta
	OpenInterest      int64
	Volume            int64
}

// DerivedMetrics son las métricas calculadas para un contrato en una fecha dada.
type DerivedMetrics struct {
	OutOfTheMoney    bool
	CalendarDays     int
	BusinessDays     int
	AnnualizedReturn float64 // porcentaje
	DayCount         DayCount
}

// Candidate es un contrato con sus métricas ya calculadas; es la unidad que filtra el screener.
type Candidate struct {
	Contract OptionContract
	Metrics  DerivedMetrics
}
