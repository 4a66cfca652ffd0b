package ports

import (
	"context"

	"github.com/pk-ux/put-options-trading/internal/domain"
)

// ConfigStore persiste la estrategia y la watch-list.
// Cada SaveConfig crea una versión nueva; las anteriores no se modifican.
type ConfigStore interface {
	// LoadConfig devuelve la última versión guardada.
	LoadConfig(ctx context.Context) (domain.ScreeningConfig, error)

	// SaveConfig valida cfg y la guarda como nueva versión. Devuelve la versión asignada.
	SaveConfig(ctx context.Context, cfg domain.ScreeningConfig) (domain.ScreeningConfig, error)

	// ConfigVersions devuelve cuántas versiones hay guardadas.
	ConfigVersions(ctx context.Context) (int, error)

	// Watchlist devuelve los símbolos en el orden en que se añadieron.
	Watchlist(ctx context.Context) ([]string, error)

	// AddSymbol añade un símbolo (normalizado a mayúsculas). domain.ErrDuplicateSymbol si ya existe.
	AddSymbol(ctx context.Context, symbol string) (string, error)

	// RemoveSymbol elimina un símbolo; no falla si no existía.
	RemoveSymbol(ctx context.Context, symbol string) error

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
