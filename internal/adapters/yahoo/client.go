package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://query2.finance.yahoo.com"
	userAgent      = "Mozilla/5.0 (compatible; put-screener/1.0)"

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Options configura el Client. Los valores cero usan defaults conservadores.
type Options struct {
	BaseURL         string
	RatePerSec      float64
	Timeout         time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration
	RetryWait       time.Duration
}

// Client es el HTTP client del endpoint de opciones con rate limiting,
// retries y un circuit breaker compartido por todos los símbolos.
type Client struct {
	http    *http.Client
	base    string
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	retry   time.Duration
}

// NewClient crea un Client. Si BaseURL está vacío usa el de producción.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 4
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 30 * time.Second
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = baseRetryWait
	}

	failures := opts.BreakerFailures
	st := gobreaker.Settings{
		Name:    "yahoo-options",
		Timeout: opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Un 404 es una respuesta válida del upstream (símbolo sin opciones).
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	}

	return &Client{
		http:    &http.Client{Timeout: opts.Timeout},
		base:    strings.TrimRight(opts.BaseURL, "/"),
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSec), 2),
		breaker: gobreaker.NewCircuitBreaker(st),
		retry:   opts.RetryWait,
	}
}

var errNotFound = errors.New("not found")

// statusError es una respuesta 4xx del upstream.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("client error %d: %s", e.Code, e.Body)
}

func (e *statusError) Is(target error) bool {
	return target == errNotFound && e.Code == http.StatusNotFound
}

// get hace un GET a base+path a través del breaker, con rate limiting y retries.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.doWithRetry(ctx, u, out)
	})
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	return nil
}

// doWithRetry ejecuta el request con backoff exponencial, respetando el contexto.
func (c *Client) doWithRetry(ctx context.Context, u string, out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			slog.Warn("rate limited by API", "attempt", attempt+1)
			if attempt == maxRetries {
				return fmt.Errorf("rate limited after %d retries", maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return &statusError{Code: resp.StatusCode, Body: string(body)}
		}

		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * c.retry
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
