// mock-provider is a stand-in for the FCM legacy send endpoint, for
// local runs and integration testing. Outcomes are configurable: a fixed
// rotation of results or a random success rate.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/kelseyhightower/envconfig"
)

type config struct {
	Port        string  `envconfig:"PORT" default:"8080"`
	OutcomeMode string  `envconfig:"MOCK_OUTCOME_MODE" default:"fixed"`
	OutcomesRaw string  `envconfig:"MOCK_OUTCOMES" default:"ok"`
	SuccessRate float64 `envconfig:"MOCK_SUCCESS_RATE" default:"0.95"`
	DelayMs     int     `envconfig:"MOCK_DELAY_MS" default:"0"`

	Outcomes []string
	Delay    time.Duration
}

type sendPayload struct {
	To           string `json:"to"`
	Notification struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	} `json:"notification"`
	Data map[string]string `json:"data"`
}

type sendResponse struct {
	Success int          `json:"success"`
	Failure int          `json:"failure"`
	Results []sendResult `json:"results"`
}

type sendResult struct {
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

type server struct {
	cfg   config
	idx   uint64
	seq   uint64
	rng   *rand.Rand
	rngMu sync.Mutex
}

func main() {
	cfg := loadConfig()
	loggingInit()

	s := &server{
		cfg: cfg,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	router := mux.NewRouter()
	router.HandleFunc("/fcm/send", s.handleSend).Methods(http.MethodPost)

	slog.Info("mock provider listening", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, loggingMiddleware(router)); err != nil {
		slog.Error("mock provider server failed", "err", err)
		os.Exit(1)
	}
}

func (s *server) handleSend(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Delay > 0 {
		time.Sleep(s.cfg.Delay)
	}

	var payload sendPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if payload.To == "" {
		writeJSON(w, sendResponse{Failure: 1, Results: []sendResult{{Error: "MissingRegistration"}}})
		return
	}

	switch s.nextOutcome() {
	case "ok":
		id := atomic.AddUint64(&s.seq, 1)
		writeJSON(w, sendResponse{Success: 1, Results: []sendResult{{MessageID: fmt.Sprintf("0:mock%d", id)}}})
	case "invalid":
		writeJSON(w, sendResponse{Failure: 1, Results: []sendResult{{Error: "NotRegistered"}}})
	case "unavailable":
		http.Error(w, "Unavailable", http.StatusServiceUnavailable)
	default:
		writeJSON(w, sendResponse{Failure: 1, Results: []sendResult{{Error: "InternalServerError"}}})
	}
}

func (s *server) nextOutcome() string {
	if s.cfg.OutcomeMode == "random" {
		s.rngMu.Lock()
		roll := s.rng.Float64()
		s.rngMu.Unlock()
		if roll < s.cfg.SuccessRate {
			return "ok"
		}
		return "invalid"
	}
	if len(s.cfg.Outcomes) == 0 {
		return "ok"
	}
	i := atomic.AddUint64(&s.idx, 1) - 1
	return s.cfg.Outcomes[i%uint64(len(s.cfg.Outcomes))]
}

func writeJSON(w http.ResponseWriter, v any) {
	_ = json.NewEncoder(w).Encode(v)
}

func loadConfig() config {
	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		slog.Error("mock provider config load failed", "err", err)
		os.Exit(1)
	}
	cfg.OutcomeMode = strings.ToLower(cfg.OutcomeMode)
	for _, o := range strings.Split(cfg.OutcomesRaw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.Outcomes = append(cfg.Outcomes, o)
		}
	}
	cfg.Delay = time.Duration(cfg.DelayMs) * time.Millisecond
	return cfg
}

func loggingInit() {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(h))
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		slog.Info("mock provider request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
