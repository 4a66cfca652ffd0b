package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedContract: falta strike o premium, o son inválidos. El contrato se descarta.
	ErrMalformedContract = errors.New("malformed contract")
	// ErrUndefinedDelta: el delta no pudo calcularse; el contrato no pasa la banda de delta.
	ErrUndefinedDelta = errors.New("undefined delta")
	// ErrNoSortableData: no hay filas que ordenar o la clave de orden no existe.
	ErrNoSortableData = errors.New("no sortable data")
	// ErrInvalidConfig agrupa todos los *ConfigError.
	ErrInvalidConfig = errors.New("invalid screening config")
	// ErrSpotUnavailable: el proveedor no tiene precio para el subyacente.
	ErrSpotUnavailable = errors.New("spot price unavailable")
	// ErrNoChainData: ninguna expiración devolvió datos.
	ErrNoChainData = errors.New("no option chain data")
	// ErrDuplicateSymbol: el símbolo ya está en la watch-list.
	ErrDuplicateSymbol = errors.New("symbol already in watchlist")
)

// FetchError es un fallo del proveedor de datos de mercado para un símbolo.
type FetchError struct {
	Symbol string
	Op     string // "spot" | "chain"
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s for %s: %v", e.Op, e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ConfigError describe un umbral inválido detectado al cargar la configuración.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}

// Is permite errors.Is(err, ErrInvalidConfig).
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}
