package screener

import (
	"cmp"
	"fmt"
	"sort"

	"github.com/pk-ux/put-options-trading/internal/domain"
)

// Screening es la salida del filtro: filas ordenadas y truncadas más los conteos de diagnóstico.
type Screening struct {
	Rows   []domain.Candidate
	Counts domain.PredicateCounts
}

// Filter aplica los seis predicados de la estrategia, ordena y trunca.
type Filter struct {
	cfg domain.ScreeningConfig
}

// NewFilter crea un Filter con un snapshot propio de la configuración.
func NewFilter(cfg domain.ScreeningConfig) *Filter {
	return &Filter{cfg: cfg.Clone()}
}

// predicate indexes, in the order they are reported.
const (
	predVolume = iota
	predOpenInterest
	predMinDelta
	predMaxDelta
	predReturn
	predOTM
	numPredicates
)

// Screen evalúa cada predicado de forma independiente sobre todo el input,
// combina con AND, ordena de forma estable y trunca a MaxResults.
// Input vacío o clave de orden desconocida → resultado vacío y domain.ErrNoSortableData.
// Es determinista: mismo input y config → misma salida.
func (f *Filter) Screen(cands []domain.Candidate) (Screening, error) {
	if len(cands) == 0 {
		return Screening{}, fmt.Errorf("screener.Screen: empty input: %w", domain.ErrNoSortableData)
	}
	for _, k := range f.cfg.SortBy {
		if !k.IsKnown() {
			return Screening{}, fmt.Errorf("screener.Screen: unknown sort key %q: %w", k, domain.ErrNoSortableData)
		}
	}

	counts := domain.PredicateCounts{Total: len(cands)}
	passed := make([]domain.Candidate, 0, len(cands))
	for _, c := range cands {
		p := f.predicates(c)
		counts.Volume += b2i(p[predVolume])
		counts.OpenInterest += b2i(p[predOpenInterest])
		counts.MinDelta += b2i(p[predMinDelta])
		counts.MaxDelta += b2i(p[predMaxDelta])
		counts.Return += b2i(p[predReturn])
		counts.OutOfTheMoney += b2i(p[predOTM])
		if allTrue(p) {
			counts.All++
			passed = append(passed, c)
		}
	}

	f.sort(passed)
	if len(passed) > f.cfg.MaxResults {
		passed = passed[:f.cfg.MaxResults]
	}
	return Screening{Rows: passed, Counts: counts}, nil
}

// predicates evalúa los seis criterios. Un delta indefinido falla ambos extremos de la banda.
func (f *Filter) predicates(c domain.Candidate) [numPredicates]bool {
	d, err := c.Contract.Delta.Float()
	defined := err == nil
	return [numPredicates]bool{
		predVolume:       c.Contract.Volume >= f.cfg.MinVolume,
		predOpenInterest: c.Contract.OpenInterest >= f.cfg.MinOpenInterest,
		predMinDelta:     defined && d >= f.cfg.MinDelta,
		predMaxDelta:     defined && d <= f.cfg.MaxDelta,
		predReturn:       c.Metrics.AnnualizedReturn >= f.cfg.MinAnnualizedReturn,
		predOTM:          c.Metrics.OutOfTheMoney,
	}
}

// sort ordena in place por las claves configuradas; los empates conservan el orden de entrada.
func (f *Filter) sort(cands []domain.Candidate) {
	desc := f.cfg.IsDescending()
	sort.SliceStable(cands, func(i, j int) bool {
		for _, k := range f.cfg.SortBy {
			c := compareBy(k, cands[i], cands[j])
			if c == 0 {
				continue
			}
			if desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// compareBy compara dos candidatos por una clave conocida.
func compareBy(k domain.SortKey, a, b domain.Candidate) int {
	switch k {
	case domain.SortAnnualizedReturn:
		return cmp.Compare(a.Metrics.AnnualizedReturn, b.Metrics.AnnualizedReturn)
	case domain.SortStrike:
		return cmp.Compare(a.Contract.Strike, b.Contract.Strike)
	case domain.SortPremium:
		return cmp.Compare(a.Contract.Premium, b.Contract.Premium)
	case domain.SortVolume:
		return cmp.Compare(a.Contract.Volume, b.Contract.Volume)
	case domain.SortOpenInterest:
		return cmp.Compare(a.Contract.OpenInterest, b.Contract.OpenInterest)
	case domain.SortImpliedVolatility:
		return cmp.Compare(a.Contract.ImpliedVolatility, b.Contract.ImpliedVolatility)
	case domain.SortDelta:
		return cmp.Compare(a.Contract.Delta.Value, b.Contract.Delta.Value)
	case domain.SortCalendarDays:
		return cmp.Compare(a.Metrics.CalendarDays, b.Metrics.CalendarDays)
	case domain.SortBusinessDays:
		return cmp.Compare(a.Metrics.BusinessDays, b.Metrics.BusinessDays)
	case domain.SortExpiration:
		return a.Contract.Expiration.Compare(b.Contract.Expiration)
	}
	return 0
}

func allTrue(p [numPredicates]bool) bool {
	for _, ok := range p {
		if !ok {
			return false
		}
	}
	return true
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
