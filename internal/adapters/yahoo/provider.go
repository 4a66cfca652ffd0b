package yahoo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/pk-ux/put-options-trading/internal/domain"
)

// Provider implementa ports.MarketDataProvider sobre el endpoint de opciones.
type Provider struct {
	client *Client
}

// NewProvider crea un Provider sobre el Client dado.
func NewProvider(c *Client) *Provider {
	return &Provider{client: c}
}

func optionsPath(symbol string) string {
	return "/v7/finance/options/" + url.PathEscape(symbol)
}

// fetch obtiene la cadena de una expiración (date=0 → la más próxima + lista de fechas).
func (p *Provider) fetch(ctx context.Context, symbol string, date int64) (chainResult, error) {
	var q url.Values
	if date > 0 {
		q = url.Values{"date": {strconv.FormatInt(date, 10)}}
	}
	var resp optionsResponse
	if err := p.client.get(ctx, optionsPath(symbol), q, &resp); err != nil {
		if errors.Is(err, errNotFound) {
			return chainResult{}, fmt.Errorf("%w: %v", domain.ErrNoChainData, err)
		}
		return chainResult{}, err
	}
	if e := resp.OptionChain.Error; e != nil {
		return chainResult{}, fmt.Errorf("upstream error %s: %s", e.Code, e.Description)
	}
	if len(resp.OptionChain.Result) == 0 {
		return chainResult{}, domain.ErrNoChainData
	}
	return resp.OptionChain.Result[0], nil
}

// FetchSpotPrice devuelve regularMarketPrice del subyacente.
func (p *Provider) FetchSpotPrice(ctx context.Context, symbol string) (float64, error) {
	res, err := p.fetch(ctx, symbol, 0)
	if err != nil {
		return 0, fmt.Errorf("yahoo.FetchSpotPrice: %w", err)
	}
	if res.Quote.RegularMarketPrice == nil || *res.Quote.RegularMarketPrice <= 0 {
		return 0, fmt.Errorf("yahoo.FetchSpotPrice: %s: %w", symbol, domain.ErrSpotUnavailable)
	}
	return *res.Quote.RegularMarketPrice, nil
}

// FetchChain devuelve los puts de todas las expiraciones a como mucho maxDTE días.
// Una expiración que falla se registra y se omite; solo es error si fallan todas.
func (p *Provider) FetchChain(ctx context.Context, symbol string, maxDTE int, asOf time.Time) ([]domain.RawContract, error) {
	first, err := p.fetch(ctx, symbol, 0)
	if err != nil {
		return nil, fmt.Errorf("yahoo.FetchChain: expirations: %w", err)
	}

	dates := expirationsWithin(first.ExpirationDates, asOf, maxDTE)
	if len(dates) == 0 {
		slog.Debug("no expirations in window", "symbol", symbol, "max_dte", maxDTE)
		return nil, nil
	}

	var (
		out     []domain.RawContract
		lastErr error
		ok      int
	)
	for _, d := range dates {
		chain, err := p.expiry(ctx, symbol, d, first)
		if err != nil {
			lastErr = err
			slog.Warn("expiration skipped", "symbol", symbol, "expiration", unixDate(d).Format(time.DateOnly), "err", err)
			continue
		}
		ok++
		out = append(out, mapPuts(symbol, chain)...)
	}
	if ok == 0 {
		return nil, fmt.Errorf("yahoo.FetchChain: %w: %w", domain.ErrNoChainData, lastErr)
	}
	slog.Debug("chain fetched", "symbol", symbol, "expirations", ok, "puts", len(out))
	return out, nil
}

// expiry devuelve la cadena de la fecha d, reutilizando la primera respuesta si ya la contiene.
func (p *Provider) expiry(ctx context.Context, symbol string, d int64, first chainResult) (expiryChain, error) {
	for _, c := range first.Options {
		if c.ExpirationDate == d {
			return c, nil
		}
	}
	res, err := p.fetch(ctx, symbol, d)
	if err != nil {
		return expiryChain{}, err
	}
	for _, c := range res.Options {
		if c.ExpirationDate == d {
			return c, nil
		}
	}
	if len(res.Options) == 1 {
		return res.Options[0], nil
	}
	return expiryChain{}, domain.ErrNoChainData
}
