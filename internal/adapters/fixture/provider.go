// Package fixture sirve cadenas de opciones grabadas en disco para -dry-run y tests.
package fixture

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pk-ux/put-options-trading/internal/adapters/yahoo"
	"github.com/pk-ux/put-options-trading/internal/domain"
)

// SnapshotTime es el instante en que se grabaron los fixtures de testdata/fixtures/chains.
// -dry-run fija el reloj del orquestador a este valor.
var SnapshotTime = time.Date(2026, time.January, 5, 15, 30, 0, 0, time.UTC)

// Provider implementa ports.MarketDataProvider leyendo <dir>/<SYMBOL>.json.
type Provider struct {
	dir string

	mu    sync.Mutex
	cache map[string]yahoo.Snapshot
}

// NewProvider crea un Provider sobre el directorio dado.
func NewProvider(dir string) *Provider {
	return &Provider{dir: dir, cache: make(map[string]yahoo.Snapshot)}
}

func (p *Provider) load(symbol string) (yahoo.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if snap, ok := p.cache[symbol]; ok {
		return snap, nil
	}

	f, err := os.Open(filepath.Join(p.dir, strings.ToUpper(symbol)+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return yahoo.Snapshot{}, fmt.Errorf("fixture %s: %w", symbol, domain.ErrNoChainData)
	}
	if err != nil {
		return yahoo.Snapshot{}, fmt.Errorf("fixture %s: %w", symbol, err)
	}
	defer f.Close()

	snap, err := yahoo.DecodeSnapshot(f)
	if err != nil {
		return yahoo.Snapshot{}, fmt.Errorf("fixture %s: %w", symbol, err)
	}
	p.cache[symbol] = snap
	return snap, nil
}

// FetchSpotPrice devuelve el precio grabado.
func (p *Provider) FetchSpotPrice(_ context.Context, symbol string) (float64, error) {
	snap, err := p.load(symbol)
	if err != nil {
		return 0, err
	}
	if snap.Spot <= 0 {
		return 0, fmt.Errorf("fixture %s: %w", symbol, domain.ErrSpotUnavailable)
	}
	return snap.Spot, nil
}

// FetchChain devuelve los puts grabados que vencen a como mucho maxDTE días de asOf.
func (p *Provider) FetchChain(_ context.Context, symbol string, maxDTE int, asOf time.Time) ([]domain.RawContract, error) {
	snap, err := p.load(symbol)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RawContract, 0, len(snap.Contracts))
	for _, c := range snap.Contracts {
		dte := domain.DaysBetween(asOf, c.Expiration)
		if c.Expiration.IsZero() || (dte >= 0 && dte <= maxDTE) {
			out = append(out, c)
		}
	}
	return out, nil
}
