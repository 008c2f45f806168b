package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/unitstats/internal/api"
	"github.com/udisondev/unitstats/internal/catalog"
	"github.com/udisondev/unitstats/internal/config"
	"github.com/udisondev/unitstats/internal/data"
	"github.com/udisondev/unitstats/internal/db"
	"github.com/udisondev/unitstats/internal/engine"
	"github.com/udisondev/unitstats/internal/feed"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config FIRST to determine log level
	cfgPath := config.Path()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	slog.Info("unitstats service starting", "config", cfgPath, "log_level", cfg.LogLevel)

	table, err := data.LoadModifierTable(cfg.Data.ModifierTable)
	if err != nil {
		return fmt.Errorf("loading modifier table: %w", err)
	}
	builtinMods, err := data.LoadModCatalog(cfg.Data.ModCatalog)
	if err != nil {
		return fmt.Errorf("loading mod catalog: %w", err)
	}

	policy, err := engine.ParseRarityPolicy(cfg.Engine.RarityPolicy)
	if err != nil {
		return fmt.Errorf("engine config: %w", err)
	}
	eng := engine.New(table,
		engine.WithMaxLevel(cfg.Engine.MaxLevel),
		engine.WithRarityPolicy(policy),
	)

	feedClient := feed.NewClient(feed.Sources{
		UnitsURL: cfg.Feed.UnitsURL,
		ModsURL:  cfg.Feed.ModsURL,
		TiersURL: cfg.Feed.TiersURL,
	}, cfg.Feed.Timeout)

	opts := []catalog.Option{
		catalog.WithBuiltinMods(builtinMods),
		catalog.WithRefreshInterval(cfg.Feed.RefreshInterval),
	}

	if cfg.Database.Enabled {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		opts = append(opts, catalog.WithStore(db.NewSnapshotRepository(database.Pool())))
	}

	cat := catalog.New(feedClient, opts...)
	if err := cat.Load(ctx); err != nil {
		// Сервис поднимается и без данных: /healthz отдаёт 503 до первого успешного refresh
		slog.Error("initial catalog load failed", "error", err)
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddress, strconv.Itoa(cfg.Port)),
		Handler:           api.NewHandler(cat, eng).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := cat.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("catalog refresher: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		slog.Info("starting http server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
