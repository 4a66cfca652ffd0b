package screener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pk-ux/put-options-trading/internal/domain"
)

// report is the single terminal message a worker sends back to the coordinator.
type report struct {
	symbol  string
	state   domain.JobState
	result  *domain.ScreeningResult
	err     error
	elapsed time.Duration
}

// job is one symbol's screening. cfg is the request's shared snapshot and is
// only read.
type job struct {
	requestID string
	symbol    string
	cfg       *domain.ScreeningConfig
	asOf      time.Time
}

// runJob runs fetch → normalize → metrics → filter for one symbol.
//
// Cancellation is cooperative: ctx is checked only between stages. Calls to the
// market-data provider run on a context detached from cancellation, so a call
// already in flight completes before the job observes the stop request.
func (o *Orchestrator) runJob(ctx context.Context, j job) (rep report) {
	start := o.now()
	rep = report{symbol: j.symbol}
	defer func() {
		if r := recover(); r != nil {
			rep = report{symbol: j.symbol, state: domain.JobFailed, err: fmt.Errorf("panic: %v", r)}
		}
		rep.elapsed = o.now().Sub(start)
	}()

	cancelled := func() bool { return ctx.Err() != nil }
	stop := func() report { return report{symbol: j.symbol, state: domain.JobCancelled, err: context.Cause(ctx)} }
	fail := func(err error) report { return report{symbol: j.symbol, state: domain.JobFailed, err: err} }
	fetchCtx := context.WithoutCancel(ctx)
	log := slog.With("request_id", j.requestID, "symbol", j.symbol)

	if cancelled() {
		return stop()
	}

	spot, err := o.provider.FetchSpotPrice(fetchCtx, j.symbol)
	if err != nil {
		return fail(&domain.FetchError{Symbol: j.symbol, Op: "spot", Err: err})
	}
	if !validPositive(spot) {
		return fail(&domain.FetchError{Symbol: j.symbol, Op: "spot", Err: domain.ErrSpotUnavailable})
	}
	if cancelled() {
		return stop()
	}

	raw, err := o.provider.FetchChain(fetchCtx, j.symbol, j.cfg.MaxDTE, j.asOf)
	if err != nil {
		return fail(&domain.FetchError{Symbol: j.symbol, Op: "chain", Err: err})
	}
	raw, outOfWindow := withinWindow(raw, j.asOf, j.cfg.MinDTE, j.cfg.MaxDTE)
	log.Debug("chain fetched", "spot", spot, "contracts", len(raw), "out_of_window", outOfWindow)
	if cancelled() {
		return stop()
	}

	contracts, nstats := Normalize(raw, spot, j.asOf)
	o.recorder.ObserveNormalization(j.symbol, nstats)
	if nstats.Dropped > 0 {
		log.Debug("malformed contracts dropped", "dropped", nstats.Dropped)
	}
	if cancelled() {
		return stop()
	}

	cands := ComputeMetrics(contracts, spot, j.asOf, j.cfg.DayCount)
	if cancelled() {
		return stop()
	}

	scr, err := NewFilter(*j.cfg).Screen(cands)
	result := &domain.ScreeningResult{
		Symbol:        j.symbol,
		SpotPrice:     spot,
		ConfigVersion: j.cfg.Version,
		AsOf:          j.asOf,
		Diagnostics: domain.Diagnostics{
			Normalization: nstats,
			Predicates:    scr.Counts,
			OutOfWindow:   outOfWindow,
		},
	}
	switch {
	case errors.Is(err, domain.ErrNoSortableData) && len(cands) == 0:
		return report{symbol: j.symbol, state: domain.JobEmptyResult, result: result}
	case err != nil:
		return fail(err)
	}
	o.recorder.ObservePredicates(j.symbol, scr.Counts)
	log.Debug("predicate counts",
		"total", scr.Counts.Total,
		"volume", scr.Counts.Volume,
		"open_interest", scr.Counts.OpenInterest,
		"min_delta", scr.Counts.MinDelta,
		"max_delta", scr.Counts.MaxDelta,
		"annualized_return", scr.Counts.Return,
		"out_of_the_money", scr.Counts.OutOfTheMoney,
		"all", scr.Counts.All,
	)
	if cancelled() {
		return stop()
	}

	result.Rows = make([]domain.ResultRow, len(scr.Rows))
	for i, c := range scr.Rows {
		result.Rows[i] = domain.NewResultRow(c)
	}
	if len(result.Rows) == 0 {
		return report{symbol: j.symbol, state: domain.JobEmptyResult, result: result}
	}
	return report{symbol: j.symbol, state: domain.JobSucceeded, result: result}
}

// withinWindow drops quotes expiring outside [minDTE, maxDTE] calendar days from asOf.
func withinWindow(raw []domain.RawContract, asOf time.Time, minDTE, maxDTE int) ([]domain.RawContract, int) {
	out := make([]domain.RawContract, 0, len(raw))
	for _, r := range raw {
		if !r.Expiration.IsZero() {
			dte := domain.DaysBetween(asOf, r.Expiration)
			if dte < minDTE || dte > maxDTE {
				continue
			}
		}
		out = append(out, r)
	}
	return out, len(raw) - len(out)
}
