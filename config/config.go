package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pk-ux/put-options-trading/internal/domain"
)

// DefaultWatchlist es la lista de símbolos sembrada cuando el YAML no define ninguna.
var DefaultWatchlist = []string{
	"AAPL", "MSFT", "GOOGL", "SPY", "QQQ", "TSLA", "APP", "IBIT", "PLTR",
	"AVGO", "MSTR", "COIN", "SVXY", "NVDA", "AMD", "INTC", "META",
}

// Config es la configuración completa del screener.
type Config struct {
	Watchlist []string       `yaml:"watchlist"`
	Strategy  StrategyConfig `yaml:"strategy"`
	Criteria  CriteriaConfig `yaml:"criteria"`
	Output    OutputConfig   `yaml:"output"`
	Provider  ProviderConfig `yaml:"provider"`
	Storage   StorageConfig  `yaml:"storage"`
	Log       LogConfig      `yaml:"log"`
	Server    ServerConfig   `yaml:"server"`
}

// StrategyConfig define la ventana de vencimientos y la liquidez mínima.
type StrategyConfig struct {
	MaxDTE          *int   `yaml:"max_dte"`
	MinDTE          *int   `yaml:"min_dte"`
	MinVolume       *int64 `yaml:"min_volume"`
	MinOpenInterest *int64 `yaml:"min_open_interest"`
}

// CriteriaConfig define los umbrales de retorno y la banda de delta.
type CriteriaConfig struct {
	MinAnnualizedReturn *float64 `yaml:"min_annualized_return"` // porcentaje, 20 = 20%
	MinDelta            *float64 `yaml:"min_delta"`
	MaxDelta            *float64 `yaml:"max_delta"`
	DayCount            string   `yaml:"day_count"` // business | calendar
}

// OutputConfig controla el orden y el tamaño de la tabla de resultados.
type OutputConfig struct {
	SortBy     []string `yaml:"sort_by"`
	SortOrder  string   `yaml:"sort_order"` // ascending | descending
	MaxResults *int     `yaml:"max_results"`
}

// ProviderConfig controla el cliente HTTP del proveedor de cadenas.
type ProviderConfig struct {
	BaseURL               string  `yaml:"base_url"`
	RatePerSec            float64 `yaml:"rate_per_sec"`
	TimeoutSeconds        int     `yaml:"timeout_seconds"`
	BreakerFailures       uint32  `yaml:"breaker_failures"`
	BreakerTimeoutSeconds int     `yaml:"breaker_timeout_seconds"`
}

// StorageConfig controla dónde se persisten configuración y watch-list.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// ServerConfig controla la API HTTP.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
// Un path vacío usa sólo defaults + entorno.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.Screening().Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// Screening convierte las secciones strategy/criteria/output en la configuración del filtro.
// Los campos ausentes quedan con los valores por defecto.
func (c *Config) Screening() domain.ScreeningConfig {
	sc := domain.DefaultScreeningConfig()
	if v := c.Strategy.MaxDTE; v != nil {
		sc.MaxDTE = *v
	}
	if v := c.Strategy.MinDTE; v != nil {
		sc.MinDTE = *v
	}
	if v := c.Strategy.MinVolume; v != nil {
		sc.MinVolume = *v
	}
	if v := c.Strategy.MinOpenInterest; v != nil {
		sc.MinOpenInterest = *v
	}
	if v := c.Criteria.MinAnnualizedReturn; v != nil {
		sc.MinAnnualizedReturn = *v
	}
	if v := c.Criteria.MinDelta; v != nil {
		sc.MinDelta = *v
	}
	if v := c.Criteria.MaxDelta; v != nil {
		sc.MaxDelta = *v
	}
	if c.Criteria.DayCount != "" {
		sc.DayCount = domain.DayCount(c.Criteria.DayCount)
	}
	if len(c.Output.SortBy) > 0 {
		sc.SortBy = make([]domain.SortKey, len(c.Output.SortBy))
		for i, k := range c.Output.SortBy {
			sc.SortBy[i] = domain.SortKey(k)
		}
	}
	if c.Output.SortOrder != "" {
		sc.SortOrder = domain.SortOrder(c.Output.SortOrder)
	}
	if v := c.Output.MaxResults; v != nil {
		sc.MaxResults = *v
	}
	return sc
}

// ProviderTimeout devuelve el timeout por request HTTP.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Provider.TimeoutSeconds) * time.Second
}

// BreakerTimeout devuelve cuánto permanece abierto el circuit breaker.
func (c *Config) BreakerTimeout() time.Duration {
	return time.Duration(c.Provider.BreakerTimeoutSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("SCREENER_DB"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("SCREENER_PROVIDER_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("SCREENER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if len(cfg.Watchlist) == 0 {
		cfg.Watchlist = append([]string(nil), DefaultWatchlist...)
	}
	if cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = "https://query2.finance.yahoo.com"
	}
	if cfg.Provider.RatePerSec <= 0 {
		cfg.Provider.RatePerSec = 4
	}
	if cfg.Provider.TimeoutSeconds <= 0 {
		cfg.Provider.TimeoutSeconds = 15
	}
	if cfg.Provider.BreakerFailures == 0 {
		cfg.Provider.BreakerFailures = 5
	}
	if cfg.Provider.BreakerTimeoutSeconds <= 0 {
		cfg.Provider.BreakerTimeoutSeconds = 30
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "screener.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
}
