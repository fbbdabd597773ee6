package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"reminderd/internal/config"
	"reminderd/internal/dispatch"
	"reminderd/internal/httpapi"
	ledgerpg "reminderd/internal/ledger/pg"
	"reminderd/internal/logging"
	"reminderd/internal/observability"
	"reminderd/internal/provider/fcm"
	"reminderd/internal/relay"
	storepg "reminderd/internal/store/pg"
)

func main() {
	cfg := config.LoadAPI()
	logging.Init("api", cfg.LogFormat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := storepg.NewPool(ctx, cfg.DBDSN, storepg.PoolOptions{
		MaxConns:          cfg.DBPoolMaxConns,
		MaxConnLifetime:   cfg.DBPoolMaxConnLifetime,
		HealthCheckPeriod: cfg.DBPoolHealthCheckPeriod,
	})
	if err != nil {
		slog.Error("api db connect failed", "err", err)
		os.Exit(1)
	}

	observability.Register(prometheus.DefaultRegisterer)

	st := storepg.New(db)
	led := ledgerpg.New(db, mustDuration(cfg.ClaimStaleAfter))

	client := &fcm.Client{
		ServerKey: cfg.FCMServerKey,
		HTTP:      &http.Client{Timeout: 10 * time.Second},
		BaseURL:   cfg.FCMBaseURL,
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.FCMRPSPerPod), cfg.FCMBurst)
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "fcm",
		MaxRequests: 3,
		Timeout:     20 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 10 },
	})

	engine := &dispatch.Engine{
		Ledger:      led,
		Sender:      client,
		Limiter:     limiter,
		Breaker:     cb,
		Concurrency: cfg.DispatchConcurrency,
		SendTimeout: mustDuration(cfg.SendTimeout),
	}
	orch := &dispatch.Orchestrator{
		Store:    st,
		Ledger:   led,
		Engine:   engine,
		ClaimTTL: mustDuration(cfg.ClaimTTL),
	}
	relaySvc := &relay.Service{Store: st, Sender: client}

	s := httpapi.New()
	api := &httpapi.API{Dispatcher: orch, Relay: relaySvc}
	api.Register(s.Mux)

	s.Mux.HandleFunc("/healthz", httpapi.Healthz())
	s.Mux.HandleFunc("/readyz", httpapi.Readyz(2*time.Second, func(ctx context.Context) error {
		return db.Ping(ctx)
	}))

	handler := httpapi.Logging(httpapi.Metrics(observability.APIRequests)(s.Mux))
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("api shutdown", "signal", sig.String())
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("api listening", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("api server failed", "err", err)
		os.Exit(1)
	}

	db.Close()
}

func mustDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		slog.Error("invalid duration in config", "value", s, "err", err)
		os.Exit(1)
	}
	return d
}
