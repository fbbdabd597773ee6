package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"reminderd/internal/domain"
)

type fakeDispatcher struct {
	gotLead domain.LeadTime
	summary domain.DispatchSummary
	err     error
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, lead domain.LeadTime, now time.Time) (domain.DispatchSummary, error) {
	f.gotLead = lead
	return f.summary, f.err
}

type fakeRelay struct {
	resp domain.RelayResponse
	err  error
}

func (f *fakeRelay) NotifyRegistration(ctx context.Context, req domain.RelayRequest) (domain.RelayResponse, error) {
	return f.resp, f.err
}

func newTestServer(d Dispatcher, r RegistrationNotifier) *httptest.Server {
	s := New()
	api := &API{Dispatcher: d, Relay: r}
	api.Register(s.Mux)
	return httptest.NewServer(s.Mux)
}

func TestDispatchDefaultsLeadTime(t *testing.T) {
	d := &fakeDispatcher{summary: domain.DispatchSummary{LeadMinutes: 30}}
	srv := newTestServer(d, &fakeRelay{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/reminders/dispatch", "application/json", strings.NewReader(""))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if d.gotLead != domain.Lead30Min {
		t.Fatalf("empty body should default to 30m, got %d", d.gotLead)
	}
}

func TestDispatchRejectsUnknownLeadTime(t *testing.T) {
	srv := newTestServer(&fakeDispatcher{}, &fakeRelay{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/reminders/dispatch", "application/json",
		strings.NewReader(`{"minutesBefore": 45}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestDispatchZeroMatchesIs200(t *testing.T) {
	d := &fakeDispatcher{summary: domain.DispatchSummary{LeadMinutes: 30}}
	srv := newTestServer(d, &fakeRelay{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/reminders/dispatch", "application/json",
		strings.NewReader(`{"minutesBefore": 30}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("zero matches must be 200, got %d", resp.StatusCode)
	}

	var summary domain.DispatchSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.MatchedEvents != 0 || summary.Attempted != 0 {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
}

func TestDispatchFatalErrorIs500(t *testing.T) {
	d := &fakeDispatcher{err: context.DeadlineExceeded}
	srv := newTestServer(d, &fakeRelay{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/reminders/dispatch", "application/json",
		strings.NewReader(`{"minutesBefore": 30}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}

func TestNotifyRegistrationNotFoundIs404(t *testing.T) {
	srv := newTestServer(&fakeDispatcher{}, &fakeRelay{err: domain.ErrNotFound})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/registrations/notify", "application/json",
		strings.NewReader(`{"eventId":"ev1","studentId":"s1"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestNotifyRegistrationValidation(t *testing.T) {
	srv := newTestServer(&fakeDispatcher{}, &fakeRelay{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/registrations/notify", "application/json",
		strings.NewReader(`{"eventId":"ev1"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestNotifyRegistrationSuccess(t *testing.T) {
	srv := newTestServer(&fakeDispatcher{}, &fakeRelay{resp: domain.RelayResponse{Success: true}})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/registrations/notify", "application/json",
		strings.NewReader(`{"eventId":"ev1","studentId":"s1"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var out domain.RelayResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Success {
		t.Fatalf("expected success response, got %+v", out)
	}
}
