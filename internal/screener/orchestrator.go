package screener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pk-ux/put-options-trading/internal/domain"
	"github.com/pk-ux/put-options-trading/internal/ports"
)

// ErrNoSymbols is returned by Start when the request has no usable symbol.
var ErrNoSymbols = errors.New("no symbols to screen")

// Orchestrator runs one independent job per symbol and fans their terminal
// reports back into a single coordinator goroutine per request. Only one
// request is active at a time: Start cancels and awaits the previous one.
type Orchestrator struct {
	provider ports.MarketDataProvider
	notifier ports.Notifier
	recorder ports.Recorder
	now      func() time.Time

	mu     sync.Mutex
	active *Request
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithNotifier sends every event to n, from the coordinator goroutine.
func WithNotifier(n ports.Notifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

// WithRecorder sets the diagnostics recorder.
func WithRecorder(r ports.Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithClock overrides time.Now (as-of date and durations).
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator crea un Orchestrator con el proveedor de datos inyectado.
func NewOrchestrator(provider ports.MarketDataProvider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider: provider,
		recorder: nopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Request is one screening request over N symbols.
type Request struct {
	ID      string
	Symbols []string
	Config  domain.ScreeningConfig
	AsOf    time.Time

	events      chan domain.Event
	done        chan struct{}
	cancel      context.CancelFunc
	outstanding atomic.Int64

	// Written only by the coordinator goroutine; read after done is closed.
	states  map[string]domain.JobState
	results map[string]domain.ScreeningResult
	errs    map[string]error
	summary *domain.ScreeningResult
}

// Events streams progress, one terminal event per symbol and, for multi-symbol
// requests, a final Summary event. The channel is buffered for the whole
// request and closed once the request is complete.
func (r *Request) Events() <-chan domain.Event { return r.events }

// Done is closed when every job has reported and the Summary (if any) is built.
func (r *Request) Done() <-chan struct{} { return r.done }

// Outstanding is the number of jobs that have not reported a terminal state yet.
func (r *Request) Outstanding() int { return int(r.outstanding.Load()) }

// Cancel requests cooperative cancellation of every job. It does not wait.
func (r *Request) Cancel() { r.cancel() }

// Report is the final state of a request.
type Report struct {
	RequestID string
	States    map[string]domain.JobState
	Results   map[string]domain.ScreeningResult
	Errors    map[string]error
	Summary   *domain.ScreeningResult
}

// Wait blocks until the request is complete or ctx is done.
func (r *Request) Wait(ctx context.Context) (Report, error) {
	select {
	case <-r.done:
	case <-ctx.Done():
		return Report{}, ctx.Err()
	}
	return Report{
		RequestID: r.ID,
		States:    r.states,
		Results:   r.results,
		Errors:    r.errs,
		Summary:   r.summary,
	}, nil
}

// Start validates cfg, cancels and awaits any previous request, then launches
// one job per symbol. Symbols are upper-cased and de-duplicated.
func (o *Orchestrator) Start(ctx context.Context, symbols []string, cfg domain.ScreeningConfig) (*Request, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("screener.Start: %w", err)
	}
	syms := CleanSymbols(symbols)
	if len(syms) == 0 {
		return nil, fmt.Errorf("screener.Start: %w", ErrNoSymbols)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if prev := o.active; prev != nil {
		prev.cancel()
		<-prev.done
		slog.Debug("previous screening request stopped", "request_id", prev.ID)
	}

	rctx, cancel := context.WithCancel(ctx)
	req := &Request{
		ID:      uuid.NewString(),
		Symbols: syms,
		Config:  cfg.Clone(),
		AsOf:    o.now(),
		events:  make(chan domain.Event, 2*len(syms)+1),
		done:    make(chan struct{}),
		cancel:  cancel,
		states:  make(map[string]domain.JobState, len(syms)),
		results: make(map[string]domain.ScreeningResult, len(syms)),
		errs:    make(map[string]error),
	}
	req.outstanding.Store(int64(len(syms)))
	for _, s := range syms {
		req.states[s] = domain.JobPending
	}
	o.active = req

	slog.Info("screening started",
		"request_id", req.ID,
		"symbols", len(syms),
		"config_version", cfg.Version,
		"day_count", cfg.DayCount,
	)
	go o.coordinate(rctx, req)
	return req, nil
}

// Cancel stops the active request, if any, and waits for it to finish.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active == nil {
		return
	}
	o.active.cancel()
	<-o.active.done
}

// Active returns the most recent request (running or finished), or nil.
func (o *Orchestrator) Active() *Request {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active
}

// coordinate is the single writer for the request's shared state: it dispatches
// the workers, applies their terminal reports, emits events and builds the Summary.
func (o *Orchestrator) coordinate(ctx context.Context, req *Request) {
	defer close(req.done)
	defer close(req.events)
	defer req.cancel()

	reports := make(chan report, len(req.Symbols))
	for _, sym := range req.Symbols {
		j := job{requestID: req.ID, symbol: sym, cfg: &req.Config, asOf: req.AsOf}
		req.states[sym] = domain.JobRunning
		o.emit(ctx, req, domain.Event{RequestID: req.ID, Symbol: sym, State: domain.JobRunning})
		go func() {
			reports <- o.runJob(ctx, j)
		}()
	}

	for range req.Symbols {
		rep := <-reports
		req.outstanding.Add(-1)
		req.states[rep.symbol] = rep.state
		switch rep.state {
		case domain.JobSucceeded:
			req.results[rep.symbol] = *rep.result
		case domain.JobFailed:
			req.errs[rep.symbol] = rep.err
		}
		o.recorder.ObserveJob(rep.symbol, rep.state, rep.elapsed)
		logOutcome(req.ID, rep)

		o.emit(ctx, req, domain.Event{
			RequestID: req.ID,
			Symbol:    rep.symbol,
			State:     rep.state,
			Result:    rep.result,
			Err:       rep.err,
			Duration:  rep.elapsed,
		})
	}

	if len(req.Symbols) < 2 || ctx.Err() != nil {
		return
	}
	if summary, ok := buildSummary(req); ok {
		req.summary = &summary
		o.emit(ctx, req, domain.Event{
			RequestID: req.ID,
			Symbol:    domain.SummarySymbol,
			State:     domain.JobSucceeded,
			Result:    req.summary,
		})
	}
}

// emit never blocks: the events buffer holds every event of the request.
func (o *Orchestrator) emit(ctx context.Context, req *Request, ev domain.Event) {
	req.events <- ev
	if o.notifier == nil {
		return
	}
	if err := o.notifier.Notify(context.WithoutCancel(ctx), ev); err != nil {
		slog.Warn("notifier error", "request_id", req.ID, "symbol", ev.Symbol, "err", err)
	}
}

// buildSummary takes the top-ranked row of each Succeeded symbol, in request order.
func buildSummary(req *Request) (domain.ScreeningResult, bool) {
	summary := domain.ScreeningResult{
		Symbol:        domain.SummarySymbol,
		ConfigVersion: req.Config.Version,
		AsOf:          req.AsOf,
	}
	for _, sym := range req.Symbols {
		if req.states[sym] != domain.JobSucceeded {
			continue
		}
		if top, ok := req.results[sym].Top(); ok {
			summary.Rows = append(summary.Rows, top)
		}
	}
	return summary, len(summary.Rows) > 0
}

func logOutcome(requestID string, rep report) {
	attrs := []any{
		"request_id", requestID,
		"symbol", rep.symbol,
		"state", rep.state.String(),
		"duration", rep.elapsed.Round(time.Millisecond),
	}
	switch rep.state {
	case domain.JobSucceeded:
		slog.Info("screening complete", append(attrs, "rows", len(rep.result.Rows))...)
	case domain.JobEmptyResult:
		slog.Info("no qualifying options", attrs...)
	case domain.JobCancelled:
		slog.Info("screening cancelled", attrs...)
	default:
		slog.Warn("screening failed", append(attrs, "err", rep.err)...)
	}
}

// CleanSymbols trims, upper-cases and de-duplicates symbols, keeping first occurrence order.
func CleanSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || s == strings.ToUpper(domain.SummarySymbol) || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

type nopRecorder struct{}

func (nopRecorder) ObserveNormalization(string, domain.NormalizationStats) {}
func (nopRecorder) ObservePredicates(string, domain.PredicateCounts)       {}
func (nopRecorder) ObserveJob(string, domain.JobState, time.Duration)      {}
