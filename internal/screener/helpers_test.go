package screener

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pk-ux/put-options-trading/internal/domain"
)

// 2026-01-05 es lunes.
var asOf = time.Date(2026, time.January, 5, 15, 30, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func rawPut(symbol string, strike, premium, iv float64, exp time.Time) domain.RawContract {
	return domain.RawContract{
		Symbol:            symbol,
		Strike:            ptr(strike),
		LastPrice:         ptr(premium),
		ImpliedVolatility: iv,
		Expiration:        exp,
		Volume:            ptr[int64](100),
		OpenInterest:      ptr[int64](500),
	}
}

func candidate(strike, premium, delta, ret float64, otm bool) domain.Candidate {
	return domain.Candidate{
		Contract: domain.OptionContract{
			Symbol:       "XYZ",
			Strike:       strike,
			Premium:      premium,
			Delta:        domain.DefinedDelta(delta),
			Volume:       100,
			OpenInterest: 500,
			Expiration:   asOf.AddDate(0, 0, 30),
		},
		Metrics: domain.DerivedMetrics{
			OutOfTheMoney:    otm,
			CalendarDays:     31,
			BusinessDays:     23,
			AnnualizedReturn: ret,
		},
	}
}

// fakeProvider sirve cadenas en memoria. Los hooks permiten bloquear o fallar por símbolo.
type fakeProvider struct {
	mu     sync.Mutex
	spots  map[string]float64
	chains map[string][]domain.RawContract
	errs   map[string]error

	// chainHook, si existe, se llama antes de devolver la cadena.
	chainHook func(symbol string)
	calls     map[string]int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		spots:  map[string]float64{},
		chains: map[string][]domain.RawContract{},
		errs:   map[string]error{},
		calls:  map[string]int{},
	}
}

func (f *fakeProvider) FetchSpotPrice(_ context.Context, symbol string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[symbol]; err != nil {
		return 0, err
	}
	p, ok := f.spots[symbol]
	if !ok {
		return 0, domain.ErrSpotUnavailable
	}
	return p, nil
}

func (f *fakeProvider) FetchChain(_ context.Context, symbol string, _ int, _ time.Time) ([]domain.RawContract, error) {
	f.mu.Lock()
	f.calls[symbol]++
	hook := f.chainHook
	chain := f.chains[symbol]
	f.mu.Unlock()

	if hook != nil {
		hook(symbol)
	}
	return chain, nil
}

var errUpstream = errors.New("upstream unreachable")

// recordingNotifier guarda los eventos que recibe.
type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.Event
}

func (n *recordingNotifier) Notify(_ context.Context, ev domain.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return nil
}

func (n *recordingNotifier) terminal() []domain.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []domain.Event
	for _, ev := range n.events {
		if ev.State.Terminal() && !ev.IsSummary() {
			out = append(out, ev)
		}
	}
	return out
}
