package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Amit7053/lucky-draw/internal/api"
	"github.com/Amit7053/lucky-draw/internal/events"
	kafkaevents "github.com/Amit7053/lucky-draw/internal/events/kafka"
	"github.com/Amit7053/lucky-draw/internal/game"
	"github.com/Amit7053/lucky-draw/internal/infra/balancecache"
	"github.com/Amit7053/lucky-draw/internal/infra/logging"
	"github.com/Amit7053/lucky-draw/internal/infra/metrics"
	"github.com/Amit7053/lucky-draw/internal/infra/pgutils"
	"github.com/Amit7053/lucky-draw/internal/services/settlement"
	"github.com/Amit7053/lucky-draw/internal/services/wallet"
	"github.com/Amit7053/lucky-draw/pkg/envconf"
	"github.com/Amit7053/lucky-draw/pkg/shutdownqueue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	dbConns, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	var cache balancecache.Cache = balancecache.Noop{}

	if cfg.RedisAddr != "" {
		redisCache, err := balancecache.NewRedis(ctx, cfg.RedisAddr, cfg.BalanceCacheTTL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}

		shutdownqueue.Add(func(context.Context) error {
			return redisCache.Close()
		})

		cache = redisCache
	}

	var pub events.Publisher = events.Noop{}

	if cfg.KafkaBrokers != "" {
		kafkaPub := kafkaevents.NewPublisher(strings.Split(cfg.KafkaBrokers, ","), cfg.LedgerEventTopic)

		shutdownqueue.Add(func(context.Context) error {
			return kafkaPub.Close()
		})

		pub = kafkaPub
	}

	// --- Services ---
	walletSrv := wallet.New(dbConns, cache, pub)

	engine := settlement.New(walletSrv, settlement.Config{
		Multiplier:   cfg.PayoutMultiplier,
		MaxAttempts:  cfg.SettleMaxAttempts,
		RetryBackoff: cfg.SettleRetryBackoff,
	})

	// --- Metrics server ---
	metricsSrv := metrics.NewServer(cfg.MetricsPort, dbConns.PingContext)

	go func() {
		merr := metricsSrv.ListenAndServe()
		if merr != nil && !errors.Is(merr, http.ErrServerClosed) {
			slog.Error("metrics server error", "error", merr)
		}
	}()

	shutdownqueue.Add(func(c context.Context) error {
		return metricsSrv.Shutdown(c)
	})

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, walletSrv, engine, game.CryptoFlipper{})

	// Register HTTP server graceful shutdown
	shutdownqueue.Add(func(c context.Context) error {
		slog.Info("Shut down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	// Run server
	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("API started", "port", cfg.Port, "metrics_port", cfg.MetricsPort)

	// --- Wait until either context cancels or server errors out ---
	select {
	case <-ctx.Done():
		// graceful path; deferred shutdownqueue.Shutdown will run
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}
