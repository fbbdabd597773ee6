package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"reminderd/internal/awsutil"
	"reminderd/internal/config"
	"reminderd/internal/dispatch"
	"reminderd/internal/domain"
	"reminderd/internal/httpapi"
	ledgerpg "reminderd/internal/ledger/pg"
	"reminderd/internal/logging"
	"reminderd/internal/observability"
	"reminderd/internal/provider/fcm"
	sqsqueue "reminderd/internal/queue/sqs"
	"reminderd/internal/relay"
	storepg "reminderd/internal/store/pg"
	"reminderd/internal/util"
)

func main() {
	cfg := config.LoadWorker()
	logging.Init("worker", cfg.LogFormat)

	ctx, cancel := context.WithCancel(context.Background())

	db, err := storepg.NewPool(ctx, cfg.DBDSN, storepg.PoolOptions{
		MaxConns:          cfg.DBPoolMaxConns,
		MaxConnLifetime:   cfg.DBPoolMaxConnLifetime,
		HealthCheckPeriod: cfg.DBPoolHealthCheckPeriod,
	})
	if err != nil {
		slog.Error("worker db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	sqsClient, err := awsutil.NewSQSClient(ctx, cfg.AWSRegion, cfg.LocalstackEndpoint)
	if err != nil {
		slog.Error("worker sqs client init failed", "err", err)
		os.Exit(1)
	}

	startupCtx, startupCancel := context.WithTimeout(ctx, 3*time.Second)
	defer startupCancel()

	if err := db.Ping(startupCtx); err != nil {
		slog.Error("db not reachable", "err", err)
		os.Exit(1)
	}
	if _, err := sqsClient.GetQueueAttributes(startupCtx, &sqs.GetQueueAttributesInput{
		QueueUrl:       &cfg.SQSQueueURL,
		AttributeNames: []types.QueueAttributeName{types.QueueAttributeNameQueueArn},
	}); err != nil {
		slog.Error("sqs not reachable", "err", err)
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

	consumer := &sqsqueue.Consumer{
		SQS: sqsClient, QueueURL: cfg.SQSQueueURL,
		WaitTimeSeconds:   cfg.SQSWaitTime,
		MaxMessages:       cfg.SQSMaxMsgs,
		VisibilityTimeout: cfg.SQSVizTimeout,
	}

	// health server (liveness + readiness)
	healthMux := httpapi.New().Mux
	healthMux.HandleFunc("/healthz", httpapi.Healthz())
	healthMux.HandleFunc("/readyz", httpapi.Readyz(2*time.Second,
		func(c context.Context) error { return db.Ping(c) },
		func(c context.Context) error {
			_, err := sqsClient.GetQueueAttributes(c, &sqs.GetQueueAttributesInput{
				QueueUrl:       &cfg.SQSQueueURL,
				AttributeNames: []types.QueueAttributeName{types.QueueAttributeNameQueueArn},
			})
			return err
		},
	))

	healthSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httpapi.Logging(healthMux),
	}

	healthErrCh := make(chan error, 1)
	go func() {
		slog.Info("worker health listening", "port", cfg.Port)
		healthErrCh <- healthSrv.ListenAndServe()
	}()

	handle := func(ctx context.Context, job sqsqueue.Job) error {
		switch job.Type {
		case sqsqueue.JobEventReminder:
			lead, err := domain.ParseLeadTime(job.MinutesBefore)
			if err != nil {
				slog.Error("dropping tick with unknown lead time", "minutes_before", job.MinutesBefore)
				return nil
			}
			_, err = orch.Dispatch(ctx, lead, util.NowUTC())
			return err
		case sqsqueue.JobNewRegistration:
			_, err := relaySvc.NotifyRegistration(ctx, domain.RelayRequest{
				EventID:   job.EventID,
				StudentID: job.StudentID,
			})
			if errors.Is(err, domain.ErrNotFound) {
				// Nothing to retry; the event is gone.
				slog.Info("registration target not found", "event_id", job.EventID)
				return nil
			}
			return err
		}
		return nil
	}

	pollErrCh := make(chan error, 1)
	go func() {
		slog.Info("worker starting poll", "queue_url", cfg.SQSQueueURL)
		pollErrCh <- consumer.PollConcurrent(ctx, cfg.WorkerConcurrency, func(ctx context.Context, job sqsqueue.Job) (err error) {
			start := time.Now()
			slog.Info("worker job start", "job_type", job.Type)
			defer func() {
				status := "ok"
				if err != nil {
					status = "error"
				}
				slog.Info("worker job finish",
					"job_type", job.Type,
					"status", status,
					"duration", time.Since(start),
					"err", err,
				)
			}()
			err = handle(ctx, job)
			return err
		})
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-pollErrCh:
		if err != nil && err != context.Canceled {
			slog.Error("worker poll failed", "err", err)
			os.Exit(1)
		}
	case err := <-healthErrCh:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("worker health server failed", "err", err)
			os.Exit(1)
		}
	case sig := <-sigCh:
		slog.Info("worker shutdown", "signal", sig.String())
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = healthSrv.Shutdown(shutdownCtx)

	select {
	case <-pollErrCh:
	case <-time.After(10 * time.Second):
		slog.Info("worker shutdown timeout waiting for poll loop")
	}
}

func mustDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		slog.Error("invalid duration in config", "value", s, "err", err)
		os.Exit(1)
	}
	return d
}
