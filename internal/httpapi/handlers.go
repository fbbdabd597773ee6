package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"reminderd/internal/domain"
	"reminderd/internal/util"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, lead domain.LeadTime, now time.Time) (domain.DispatchSummary, error)
}

type RegistrationNotifier interface {
	NotifyRegistration(ctx context.Context, req domain.RelayRequest) (domain.RelayResponse, error)
}

type API struct {
	Dispatcher Dispatcher
	Relay      RegistrationNotifier
}

func (a *API) Register(m *mux.Router) {
	m.HandleFunc("/v1/reminders/dispatch", a.handleDispatch).Methods(http.MethodPost)
	m.HandleFunc("/v1/registrations/notify", a.handleNotifyRegistration).Methods(http.MethodPost)
}

func (a *API) handleDispatch(w http.ResponseWriter, r *http.Request) {
	// An empty body means "use the default lead time".
	var req domain.DispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, ErrInvalidJSON, http.StatusBadRequest)
		return
	}

	lead, err := domain.ParseLeadTime(req.MinutesBefore)
	if err != nil {
		http.Error(w, ErrLeadTime, http.StatusBadRequest)
		return
	}

	summary, err := a.Dispatcher.Dispatch(r.Context(), lead, util.NowUTC())
	if err != nil {
		slog.Error("dispatch cycle failed", "lead_minutes", lead.Minutes(), "err", err)
		http.Error(w, ErrDependency, http.StatusInternalServerError)
		return
	}

	// Zero matches is a normal 200, indistinguishable in status from a
	// cycle that sent something.
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(summary)
}

func (a *API) handleNotifyRegistration(w http.ResponseWriter, r *http.Request) {
	var req domain.RelayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, ErrInvalidJSON, http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := a.Relay.NotifyRegistration(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, ErrNotFound, http.StatusNotFound)
			return
		}
		slog.Error("registration notify failed", "event_id", req.EventID, "student_id", req.StudentID, "err", err)
		http.Error(w, ErrDependency, http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
