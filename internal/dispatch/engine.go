package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"reminderd/internal/domain"
	"reminderd/internal/ledger"
	"reminderd/internal/message"
	"reminderd/internal/observability"
	"reminderd/internal/provider/fcm"
	"reminderd/internal/store"
	"reminderd/internal/util"
)

type Sender interface {
	Send(ctx context.Context, req fcm.SendRequest) (fcm.SendResponse, int, []byte, error)
}

// Unit is one claimed-or-skipped outbound reminder: an (event, recipient)
// pair for a given lead time.
type Unit struct {
	Event     store.Event
	Recipient store.Recipient
	Lead      domain.LeadTime
	Key       ledger.Key
}

// Engine fans out units to the provider with bounded concurrency. A unit
// is sent only after its claim is durably won; per-unit failures are
// captured as results and never abort siblings. There is no in-engine
// retry: a failed or stale claim is reclaimed by a later cycle.
type Engine struct {
	Ledger  ledger.Ledger
	Sender  Sender
	Limiter *rate.Limiter
	Breaker *gobreaker.CircuitBreaker

	Concurrency int
	SendTimeout time.Duration
}

// Deliver processes all units and returns per-recipient results plus the
// count of units skipped because their claim was rejected or errored.
// Result ordering is not guaranteed.
func (e *Engine) Deliver(ctx context.Context, now time.Time, units []Unit) ([]domain.DeliveryResult, int) {
	workers := e.Concurrency
	if workers <= 0 {
		workers = 1
	}

	var (
		mu      sync.Mutex
		results []domain.DeliveryResult
		skipped int
	)

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for _, u := range units {
		wg.Add(1)
		sem <- struct{}{}
		go func(u Unit) {
			defer wg.Done()
			defer func() { <-sem }()

			res, skip := e.process(ctx, now, u)
			mu.Lock()
			if skip {
				skipped++
			} else {
				results = append(results, res)
			}
			mu.Unlock()
		}(u)
	}
	wg.Wait()
	return results, skipped
}

func (e *Engine) process(ctx context.Context, now time.Time, u Unit) (domain.DeliveryResult, bool) {
	claimed, err := e.Ledger.TryClaim(ctx, u.Key, now)
	if err != nil {
		// Never send without a claim on record.
		observability.Claims.WithLabelValues("error").Inc()
		slog.Error("claim failed, skipping send",
			"event_id", u.Key.EventID,
			"recipient_id", u.Key.RecipientID,
			"bucket", u.Key.Bucket,
			"err", err,
		)
		return domain.DeliveryResult{}, true
	}
	if !claimed {
		observability.Claims.WithLabelValues("duplicate").Inc()
		return domain.DeliveryResult{}, true
	}
	observability.Claims.WithLabelValues("claimed").Inc()

	res := domain.DeliveryResult{
		EventID:       u.Event.ID,
		EventName:     u.Event.Name,
		RecipientID:   u.Recipient.ID,
		RecipientName: u.Recipient.Name,
	}

	if err := e.send(ctx, u); err != nil {
		res.Outcome = domain.OutcomeFailure
		res.Error = err.Error()
		_ = e.Ledger.MarkFailed(context.WithoutCancel(ctx), u.Key, util.NowUTC())
		return res, false
	}

	res.Outcome = domain.OutcomeSuccess
	if err := e.Ledger.MarkSent(context.WithoutCancel(ctx), u.Key, util.NowUTC()); err != nil {
		slog.Error("mark sent failed", "event_id", u.Key.EventID, "recipient_id", u.Key.RecipientID, "err", err)
	}
	return res, false
}

func (e *Engine) send(ctx context.Context, u Unit) error {
	if e.Limiter != nil {
		waitCtx, cancelWait := context.WithTimeout(ctx, 2*time.Second)
		err := e.Limiter.Wait(waitCtx)
		cancelWait()
		if err != nil {
			observability.FCMSend.WithLabelValues("rate_limited_local", "0").Inc()
			return err
		}
	}

	// The claim is already on record, so the send runs detached from the
	// cycle's cancellation: an aborted cycle must not strand
	// claimed-but-unsent keys behind an in-flight request.
	sendCtx := context.WithoutCancel(ctx)
	timeout := e.SendTimeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	sendCtx, cancel := context.WithTimeout(sendCtx, timeout)
	defer cancel()

	start := time.Now()
	_, httpStatus, _, err := e.executeWithBreaker(sendCtx, fcm.SendRequest{
		Token: u.Recipient.Token,
		Title: message.ReminderTitle,
		Body:  message.ReminderBody(u.Event, u.Lead),
		Data:  message.ReminderData(u.Event.ID, u.Lead),
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		observability.FCMSend.WithLabelValues("cb_open", "0").Inc()
		return err
	}
	if err != nil {
		observability.FCMSend.WithLabelValues("error", strconv.Itoa(httpStatus)).Inc()
		return err
	}

	observability.FCMSend.WithLabelValues("ok", strconv.Itoa(httpStatus)).Inc()
	observability.FCMLatency.Observe(time.Since(start).Seconds())
	return nil
}

func (e *Engine) executeWithBreaker(ctx context.Context, req fcm.SendRequest) (fcm.SendResponse, int, []byte, error) {
	call := func() (any, error) {
		resp, httpStatus, raw, callErr := e.Sender.Send(ctx, req)
		if callErr != nil {
			return nil, fcmCallError{err: callErr, httpStatus: httpStatus, raw: raw}
		}
		return sendResult{resp: resp, httpStatus: httpStatus, raw: raw}, nil
	}

	var resAny any
	var err error
	if e.Breaker == nil {
		resAny, err = call()
	} else {
		resAny, err = e.Breaker.Execute(call)
	}
	if err != nil {
		var fce fcmCallError
		if errors.As(err, &fce) {
			return fcm.SendResponse{}, fce.httpStatus, fce.raw, fce.err
		}
		return fcm.SendResponse{}, 0, nil, err
	}
	r := resAny.(sendResult)
	return r.resp, r.httpStatus, r.raw, nil
}

type sendResult struct {
	resp       fcm.SendResponse
	httpStatus int
	raw        []byte
}

type fcmCallError struct {
	err        error
	httpStatus int
	raw        []byte
}

func (e fcmCallError) Error() string { return e.err.Error() }
func (e fcmCallError) Unwrap() error { return e.err }
