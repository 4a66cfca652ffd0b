package ports

import (
	"context"
	"time"

	"github.com/pk-ux/put-options-trading/internal/domain"
)

// MarketDataProvider obtiene la cadena de puts y el precio spot de un subyacente.
type MarketDataProvider interface {
	// FetchChain devuelve los puts con vencimiento a como mucho maxDTE días de asOf.
	// Un fallo en una expiración no aborta la llamada: se omite y se devuelven las demás.
	// Solo devuelve error si no se pudo obtener ninguna expiración.
	FetchChain(ctx context.Context, symbol string, maxDTE int, asOf time.Time) ([]domain.RawContract, error)

	// FetchSpotPrice devuelve el precio de referencia actual del subyacente.
	// La ausencia de precio es un error (domain.ErrSpotUnavailable).
	FetchSpotPrice(ctx context.Context, symbol string) (float64, error)
}
