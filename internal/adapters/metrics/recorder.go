// Package metrics exposes screening diagnostics as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pk-ux/put-options-trading/internal/domain"
)

// Recorder implements ports.Recorder on its own registry, so several
// instances (tests, embedded servers) never collide on registration.
type Recorder struct {
	registry *prometheus.Registry

	jobs          *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
	contracts     *prometheus.CounterVec
	predicatePass *prometheus.CounterVec
	candidates    *prometheus.CounterVec
}

// NewRecorder creates and registers every screener metric.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		jobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_jobs_total",
				Help: "Per-symbol screening jobs by terminal state",
			},
			[]string{"state"},
		),

		jobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "screener_job_duration_seconds",
				Help:    "Duration of a per-symbol screening job in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"state"},
		),

		contracts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_contracts_total",
				Help: "Contracts seen by the normalizer, by outcome",
			},
			[]string{"outcome"},
		),

		predicatePass: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_predicate_pass_total",
				Help: "Contracts passing each screening criterion on its own",
			},
			[]string{"predicate"},
		),

		candidates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_candidates_total",
				Help: "Candidates evaluated and qualifying, per symbol",
			},
			[]string{"symbol", "stage"},
		),
	}

	r.registry.MustRegister(
		r.jobs,
		r.jobDuration,
		r.contracts,
		r.predicatePass,
		r.candidates,
		collectors.NewGoCollector(),
	)
	return r
}

// ObserveNormalization records dropped quotes, computed deltas and undefined deltas.
func (r *Recorder) ObserveNormalization(_ string, s domain.NormalizationStats) {
	r.contracts.WithLabelValues("input").Add(float64(s.Input))
	r.contracts.WithLabelValues("dropped").Add(float64(s.Dropped))
	r.contracts.WithLabelValues("delta_computed").Add(float64(s.DeltaComputed))
	r.contracts.WithLabelValues("undefined_delta").Add(float64(s.UndefinedDelta))
	r.contracts.WithLabelValues("liquidity_zero").Add(float64(s.LiquidityZero))
}

// ObservePredicates records the independent per-criterion pass counts.
func (r *Recorder) ObservePredicates(symbol string, c domain.PredicateCounts) {
	r.predicatePass.WithLabelValues("volume").Add(float64(c.Volume))
	r.predicatePass.WithLabelValues("open_interest").Add(float64(c.OpenInterest))
	r.predicatePass.WithLabelValues("min_delta").Add(float64(c.MinDelta))
	r.predicatePass.WithLabelValues("max_delta").Add(float64(c.MaxDelta))
	r.predicatePass.WithLabelValues("annualized_return").Add(float64(c.Return))
	r.predicatePass.WithLabelValues("out_of_the_money").Add(float64(c.OutOfTheMoney))
	r.candidates.WithLabelValues(symbol, "evaluated").Add(float64(c.Total))
	r.candidates.WithLabelValues(symbol, "qualified").Add(float64(c.All))
}

// ObserveJob records a job's terminal state and duration.
func (r *Recorder) ObserveJob(_ string, state domain.JobState, elapsed time.Duration) {
	r.jobs.WithLabelValues(state.String()).Inc()
	r.jobDuration.WithLabelValues(state.String()).Observe(elapsed.Seconds())
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
