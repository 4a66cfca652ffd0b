package storage

// sqlite.go — configuración versionada y watch-list.
//
//   - `config_versions`: una fila por SaveConfig. Nunca se actualiza ni se borra;
//     LoadConfig lee la de mayor versión.
//   - `watchlist`: un símbolo por fila, ordenado por posición de alta.
//   - Al abrir una base nueva (sin versiones) se siembra con la config y la
//     watch-list del YAML. Después el YAML ya no toca la watch-list.

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pk-ux/put-options-trading/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS config_versions (
    version  INTEGER PRIMARY KEY AUTOINCREMENT,
    saved_at DATETIME NOT NULL,
    body     TEXT     NOT NULL
);

CREATE TABLE IF NOT EXISTS watchlist (
    symbol   TEXT PRIMARY KEY,
    position INTEGER  NOT NULL,
    added_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_watchlist_pos ON watchlist(position);
`

// SQLiteStore implementa ports.ConfigStore usando SQLite (pure Go, sin CGo).
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex // serializa AddSymbol (check + insert)
}

// NewSQLiteStore abre (o crea) la base de datos en la ruta dada, aplica el schema
// y, si está vacía, la siembra con seed y seedWatchlist.
func NewSQLiteStore(path string, seed domain.ScreeningConfig, seedWatchlist []string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: apply schema: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.seed(context.Background(), seed, seedWatchlist); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) seed(ctx context.Context, cfg domain.ScreeningConfig, symbols []string) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM config_versions`).Scan(&n); err != nil {
		return fmt.Errorf("count config versions: %w", err)
	}
	if n > 0 {
		return nil
	}

	// Solo en la primera apertura: una watch-list vaciada por el usuario se respeta.
	if _, err := s.SaveConfig(ctx, cfg); err != nil {
		return fmt.Errorf("seed config: %w", err)
	}
	for _, sym := range symbols {
		if _, err := s.AddSymbol(ctx, sym); err != nil && !errors.Is(err, domain.ErrDuplicateSymbol) {
			return fmt.Errorf("seed watchlist: %w", err)
		}
	}
	return nil
}

// LoadConfig devuelve la última versión guardada.
func (s *SQLiteStore) LoadConfig(ctx context.Context) (domain.ScreeningConfig, error) {
	var (
		version int
		body    string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT version, body FROM config_versions ORDER BY version DESC LIMIT 1`,
	).Scan(&version, &body)
	if err != nil {
		return domain.ScreeningConfig{}, fmt.Errorf("storage.LoadConfig: %w", err)
	}

	var cfg domain.ScreeningConfig
	if err := json.Unmarshal([]byte(body), &cfg); err != nil {
		return domain.ScreeningConfig{}, fmt.Errorf("storage.LoadConfig: decode v%d: %w", version, err)
	}
	cfg.Version = version
	return cfg, nil
}

// SaveConfig valida cfg y la inserta como nueva versión.
func (s *SQLiteStore) SaveConfig(ctx context.Context, cfg domain.ScreeningConfig) (domain.ScreeningConfig, error) {
	if err := cfg.Validate(); err != nil {
		return domain.ScreeningConfig{}, fmt.Errorf("storage.SaveConfig: %w", err)
	}
	cfg = cfg.Clone()
	cfg.Version = 0
	body, err := json.Marshal(cfg)
	if err != nil {
		return domain.ScreeningConfig{}, fmt.Errorf("storage.SaveConfig: encode: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO config_versions (saved_at, body) VALUES (?, ?)`,
		time.Now().UTC(), string(body),
	)
	if err != nil {
		return domain.ScreeningConfig{}, fmt.Errorf("storage.SaveConfig: insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.ScreeningConfig{}, fmt.Errorf("storage.SaveConfig: last insert id: %w", err)
	}
	cfg.Version = int(id)
	return cfg, nil
}

// ConfigVersions devuelve cuántas versiones hay guardadas (GET /api/config/versions).
func (s *SQLiteStore) ConfigVersions(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM config_versions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage.ConfigVersions: %w", err)
	}
	return n, nil
}

// Watchlist devuelve los símbolos en el orden en que se añadieron.
func (s *SQLiteStore) Watchlist(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol FROM watchlist ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("storage.Watchlist: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("storage.Watchlist: scan: %w", err)
		}
		out = append(out, sym)
	}
	return out, rows.Err()
}

// AddSymbol añade el símbolo al final de la watch-list.
func (s *SQLiteStore) AddSymbol(ctx context.Context, symbol string) (string, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" || strings.ContainsAny(sym, " /,") {
		return "", fmt.Errorf("storage.AddSymbol: %w", &domain.ConfigError{Field: "symbol", Reason: fmt.Sprintf("invalid symbol %q", symbol)})
	}
	if strings.EqualFold(sym, domain.SummarySymbol) {
		return "", fmt.Errorf("storage.AddSymbol: %w", &domain.ConfigError{Field: "symbol", Reason: fmt.Sprintf("%q is reserved", domain.SummarySymbol)})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM watchlist WHERE symbol = ?`, sym).Scan(&exists); err != nil {
		return "", fmt.Errorf("storage.AddSymbol: %w", err)
	}
	if exists > 0 {
		return "", fmt.Errorf("storage.AddSymbol: %s: %w", sym, domain.ErrDuplicateSymbol)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO watchlist (symbol, position, added_at)
		 VALUES (?, COALESCE((SELECT MAX(position) FROM watchlist), 0) + 1, ?)`,
		sym, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("storage.AddSymbol: insert: %w", err)
	}
	return sym, nil
}

// RemoveSymbol elimina el símbolo; no falla si no existía.
func (s *SQLiteStore) RemoveSymbol(ctx context.Context, symbol string) error {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if _, err := s.db.ExecContext(ctx, `DELETE FROM watchlist WHERE symbol = ?`, sym); err != nil {
		return fmt.Errorf("storage.RemoveSymbol: %w", err)
	}
	return nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
