package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pk-ux/put-options-trading/config"
	"github.com/pk-ux/put-options-trading/internal/adapters/fixture"
	"github.com/pk-ux/put-options-trading/internal/adapters/httpapi"
	"github.com/pk-ux/put-options-trading/internal/adapters/metrics"
	"github.com/pk-ux/put-options-trading/internal/adapters/notify"
	"github.com/pk-ux/put-options-trading/internal/adapters/storage"
	"github.com/pk-ux/put-options-trading/internal/adapters/yahoo"
	"github.com/pk-ux/put-options-trading/internal/domain"
	"github.com/pk-ux/put-options-trading/internal/ports"
	"github.com/pk-ux/put-options-trading/internal/screener"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	symbolsFlag := flag.String("symbols", "", "comma-separated symbols to screen (default: whole watch-list)")
	dryRun := flag.Bool("dry-run", false, "use recorded chains from testdata/fixtures/chains instead of the live API")
	fixturesDir := flag.String("fixtures", "testdata/fixtures/chains", "fixture directory for -dry-run")
	verbose := flag.Bool("verbose", false, "set log level to debug and print per-criterion counts")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	output := flag.String("output", notify.FormatTable, "result output: table|json")
	serve := flag.Bool("serve", false, "run the HTTP API instead of a one-shot screening")
	add := flag.String("add", "", "add a symbol to the watch-list and exit")
	remove := flag.String("remove", "", "remove a symbol from the watch-list and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("put screener starting",
		"config", *configPath,
		"dry_run", *dryRun,
		"serve", *serve,
		"day_count", cfg.Screening().DayCount,
	)

	dsn := cfg.Storage.DSN
	if *dryRun {
		dsn = ":memory:"
	}
	store, err := storage.NewSQLiteStore(dsn, cfg.Screening(), cfg.Watchlist)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", dsn)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *add != "" || *remove != "" {
		if err := editWatchlist(ctx, store, *add, *remove); err != nil {
			slog.Error("watch-list update failed", "err", err)
			os.Exit(1)
		}
		return
	}

	var provider ports.MarketDataProvider
	opts := []screener.Option{}
	if *dryRun {
		provider = fixture.NewProvider(*fixturesDir)
		opts = append(opts, screener.WithClock(func() time.Time { return fixture.SnapshotTime }))
	} else {
		provider = yahoo.NewProvider(yahoo.NewClient(yahoo.Options{
			BaseURL:         cfg.Provider.BaseURL,
			RatePerSec:      cfg.Provider.RatePerSec,
			Timeout:         cfg.ProviderTimeout(),
			BreakerFailures: cfg.Provider.BreakerFailures,
			BreakerTimeout:  cfg.BreakerTimeout(),
		}))
	}
	recorder := metrics.NewRecorder()
	opts = append(opts, screener.WithRecorder(recorder))

	if *serve {
		orch := screener.NewOrchestrator(provider, opts...)
		if err := runServer(ctx, cfg.Server.Addr, httpapi.NewServer(orch, store, recorder.Handler())); err != nil {
			slog.Error("server exited with error", "err", err)
			os.Exit(1)
		}
		slog.Info("put screener stopped cleanly")
		return
	}

	opts = append(opts, screener.WithNotifier(notify.NewConsole(*output, *verbose)))
	orch := screener.NewOrchestrator(provider, opts...)
	if err := runOnce(ctx, orch, store, splitSymbols(*symbolsFlag)); err != nil {
		slog.Error("screening failed", "err", err)
		os.Exit(1)
	}
}

// runOnce screens symbols (or the watch-list) once with the latest stored config.
func runOnce(ctx context.Context, orch *screener.Orchestrator, store ports.ConfigStore, symbols []string) error {
	sc, err := store.LoadConfig(ctx)
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		if symbols, err = store.Watchlist(ctx); err != nil {
			return err
		}
	}

	req, err := orch.Start(ctx, symbols, sc)
	if err != nil {
		return err
	}
	rep, err := req.Wait(context.Background())
	if err != nil {
		return err
	}

	counts := map[domain.JobState]int{}
	for _, st := range rep.States {
		counts[st]++
	}
	slog.Info("screening finished",
		"request_id", rep.RequestID,
		"symbols", len(rep.States),
		"succeeded", counts[domain.JobSucceeded],
		"empty", counts[domain.JobEmptyResult],
		"failed", counts[domain.JobFailed],
		"cancelled", counts[domain.JobCancelled],
	)
	return nil
}

func runServer(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		slog.Info("http api listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func editWatchlist(ctx context.Context, store ports.ConfigStore, add, remove string) error {
	if add != "" {
		sym, err := store.AddSymbol(ctx, add)
		if err != nil {
			return err
		}
		slog.Info("symbol added", "symbol", sym)
	}
	if remove != "" {
		if err := store.RemoveSymbol(ctx, remove); err != nil {
			return err
		}
		slog.Info("symbol removed", "symbol", strings.ToUpper(strings.TrimSpace(remove)))
	}
	wl, err := store.Watchlist(ctx)
	if err != nil {
		return err
	}
	fmt.Println(strings.Join(wl, " "))
	return nil
}

func splitSymbols(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
