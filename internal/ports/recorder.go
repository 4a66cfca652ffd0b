package ports

import (
	"time"

	"github.com/pk-ux/put-options-trading/internal/domain"
)

// Recorder recibe las métricas de diagnóstico del screener.
type Recorder interface {
	// ObserveNormalization registra los contratos descartados y los deltas indefinidos.
	ObserveNormalization(symbol string, stats domain.NormalizationStats)

	// ObservePredicates registra los conteos por predicado de un screening.
	ObservePredicates(symbol string, counts domain.PredicateCounts)

	// ObserveJob registra el estado terminal y la duración de una corrida.
	ObserveJob(symbol string, state domain.JobState, elapsed time.Duration)
}
