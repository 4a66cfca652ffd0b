package domain

import (
	"fmt"
	"time"
)

// TradingDaysPerYear es la base de anualización (días hábiles aproximados por año).
const TradingDaysPerYear = 252

// DayCount es la convención de conteo de días usada para anualizar el retorno.
type DayCount string

const (
	// DayCountBusiness cuenta días lunes-viernes, ambos extremos incluidos. Canónica.
	DayCountBusiness DayCount = "business"
	// DayCountCalendar cuenta días naturales hasta el vencimiento, +1.
	DayCountCalendar DayCount = "calendar"
)

// ParseDayCount valida el nombre de la convención. Vacío equivale a business.
func ParseDayCount(s string) (DayCount, error) {
	switch DayCount(s) {
	case "", DayCountBusiness:
		return DayCountBusiness, nil
	case DayCountCalendar:
		return DayCountCalendar, nil
	}
	return "", fmt.Errorf("unknown day count %q", s)
}

// civilDate trunca t a su fecha de calendario (en su propia zona) expresada en UTC.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween devuelve los días naturales de asOf a expiration (puede ser negativo).
func DaysBetween(asOf, expiration time.Time) int {
	return int(civilDate(expiration).Sub(civilDate(asOf)).Hours() / 24)
}

// CalendarDays = max(días + 1, 1).
func CalendarDays(asOf, expiration time.Time) int {
	return max(DaysBetween(asOf, expiration)+1, 1)
}

// BusinessDays cuenta días lunes-viernes en [asOf, expiration], ambos incluidos.
// Un resultado 0 (vencimiento anterior a asOf, o solo fin de semana) se convierte en 1.
func BusinessDays(asOf, expiration time.Time) int {
	start, end := civilDate(asOf), civilDate(expiration)
	if end.Before(start) {
		return 1
	}
	total := DaysBetween(start, end) + 1
	weeks, rest := total/7, total%7

	count := weeks * 5
	day := start.AddDate(0, 0, weeks*7)
	for i := 0; i < rest; i++ {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			count++
		}
		day = day.AddDate(0, 0, 1)
	}
	return max(count, 1)
}

// AnnualizedReturn devuelve premium / strike × (252 / days) × 100.
// No se acota: cerca del vencimiento son normales retornos de tres dígitos.
func AnnualizedReturn(premium, strike float64, days int) float64 {
	if strike <= 0 {
		return 0
	}
	days = max(days, 1)
	return premium / strike * (TradingDaysPerYear / float64(days)) * 100
}
