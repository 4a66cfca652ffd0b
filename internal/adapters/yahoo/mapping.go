package yahoo

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pk-ux/put-options-trading/internal/domain"
)

// mapPuts convierte los puts de una expiración a domain.RawContract.
// El feed no publica delta: queda nil y lo calcula el normalizador.
func mapPuts(symbol string, chain expiryChain) []domain.RawContract {
	out := make([]domain.RawContract, 0, len(chain.Puts))
	for _, p := range chain.Puts {
		out = append(out, mapPut(symbol, p, chain.ExpirationDate))
	}
	return out
}

func mapPut(symbol string, p optionDTO, fallbackExp int64) domain.RawContract {
	exp := p.Expiration
	if exp == 0 {
		exp = fallbackExp
	}
	r := domain.RawContract{
		ContractID:   p.ContractSymbol,
		Symbol:       symbol,
		Strike:       p.Strike,
		LastPrice:    p.LastPrice,
		Volume:       p.Volume,
		OpenInterest: p.OpenInterest,
		Expiration:   unixDate(exp),
	}
	if p.ImpliedVolatility != nil {
		r.ImpliedVolatility = *p.ImpliedVolatility
	}
	return r
}

// unixDate convierte segundos epoch a fecha UTC. 0 → time.Time{}.
func unixDate(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

// expirationsWithin filtra las fechas de expiración a [0, maxDTE] días de asOf.
func expirationsWithin(dates []int64, asOf time.Time, maxDTE int) []int64 {
	out := make([]int64, 0, len(dates))
	for _, d := range dates {
		dte := domain.DaysBetween(asOf, unixDate(d))
		if dte >= 0 && dte <= maxDTE {
			out = append(out, d)
		}
	}
	return out
}

// Snapshot es una cadena completa ya decodificada: spot + puts de todas las expiraciones incluidas.
type Snapshot struct {
	Symbol    string
	Spot      float64
	Contracts []domain.RawContract
}

// DecodeSnapshot lee una respuesta del endpoint de opciones con una o más
// expiraciones en "options" (formato de los fixtures de -dry-run).
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	var resp optionsResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return Snapshot{}, fmt.Errorf("yahoo.DecodeSnapshot: %w", err)
	}
	if len(resp.OptionChain.Result) == 0 {
		return Snapshot{}, fmt.Errorf("yahoo.DecodeSnapshot: %w", domain.ErrNoChainData)
	}
	res := resp.OptionChain.Result[0]
	snap := Snapshot{Symbol: res.UnderlyingSymbol}
	if res.Quote.RegularMarketPrice != nil {
		snap.Spot = *res.Quote.RegularMarketPrice
	}
	for _, c := range res.Options {
		snap.Contracts = append(snap.Contracts, mapPuts(res.UnderlyingSymbol, c)...)
	}
	return snap, nil
}
