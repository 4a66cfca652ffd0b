package ports

import (
	"context"

	"github.com/pk-ux/put-options-trading/internal/domain"
)

// Notifier presenta los eventos de una corrida al usuario.
type Notifier interface {
	// Notify recibe cada evento (progreso, estado terminal, Summary) en orden de llegada.
	// En la implementación de consola imprime la línea de estado y la tabla de resultados.
	Notify(ctx context.Context, ev domain.Event) error
}
