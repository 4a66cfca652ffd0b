package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// JobState es el estado de una corrida por símbolo.
type JobState int

const (
	JobPending JobState = iota
	JobRunning
	JobSucceeded
	JobEmptyResult
	JobCancelled
	JobFailed
)

func (s JobState) String() string {
	switch s {
	case JobPending:
		return "pending"
	case JobRunning:
		return "running"
	case JobSucceeded:
		return "succeeded"
	case JobEmptyResult:
		return "empty_result"
	case JobCancelled:
		return "cancelled"
	case JobFailed:
		return "failed"
	}
	return fmt.Sprintf("JobState(%d)", int(s))
}

// Terminal devuelve true para los cuatro estados finales.
func (s JobState) Terminal() bool {
	return s >= JobSucceeded
}

// MarshalText serializa el estado por nombre (JSON, logs).
func (s JobState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Event es lo que ve la capa de presentación: progreso, un estado terminal por
// símbolo, y opcionalmente el Summary al final.
type Event struct {
	RequestID string           `json:"request_id"`
	Symbol    string           `json:"symbol"`
	State     JobState         `json:"state"`
	Result    *ScreeningResult `json:"result,omitempty"`
	Err       error            `json:"-"`
	Duration  time.Duration    `json:"duration_ns,omitempty"`
}

// IsSummary devuelve true si el evento entrega el resultado agregado.
func (e Event) IsSummary() bool {
	return e.Symbol == SummarySymbol
}

// Message es la línea de estado legible para el usuario.
func (e Event) Message() string {
	switch {
	case e.IsSummary():
		n := 0
		if e.Result != nil {
			n = len(e.Result.Rows)
		}
		return fmt.Sprintf("Summary: top candidate from %d symbols", n)
	case e.State == JobRunning, e.State == JobPending:
		return fmt.Sprintf("Processing %s...", e.Symbol)
	case e.State == JobSucceeded:
		n := 0
		if e.Result != nil {
			n = len(e.Result.Rows)
		}
		return fmt.Sprintf("%s processing complete, found %d qualifying options", e.Symbol, n)
	case e.State == JobEmptyResult:
		return fmt.Sprintf("No qualifying options found for %s", e.Symbol)
	case e.State == JobCancelled:
		return fmt.Sprintf("Screening of %s cancelled", e.Symbol)
	case e.State == JobFailed:
		return fmt.Sprintf("Error processing %s: %v", e.Symbol, e.Err)
	}
	return e.Symbol + ": " + e.State.String()
}

// MarshalJSON añade el mensaje legible y el error como texto.
func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	return json.Marshal(struct {
		plain
		Message string `json:"message"`
		Error   string `json:"error,omitempty"`
	}{plain(e), e.Message(), e.ErrorString()})
}

// ErrorString devuelve el error como texto o "" (para serializar).
func (e Event) ErrorString() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// IsFetchError devuelve true si err es un fallo del proveedor de datos.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
