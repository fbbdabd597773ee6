package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "reminderd_api_requests_total", Help: "API requests"},
		[]string{"endpoint", "status"},
	)
	DispatchCycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "reminderd_dispatch_cycles_total", Help: "Dispatch cycle outcomes"},
		[]string{"result"},
	)
	MatchedEvents = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "reminderd_matched_events_total", Help: "Events matched by the time-window matcher"},
	)
	Claims = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "reminderd_claims_total", Help: "Dispatch claim attempts"},
		[]string{"result"},
	)
	FCMSend = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fcm_send_total", Help: "FCM send outcomes"},
		[]string{"result", "http_status"},
	)
	FCMLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "fcm_send_latency_seconds", Help: "FCM send latency"},
	)
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(APIRequests, DispatchCycles, MatchedEvents, Claims, FCMSend, FCMLatency)
}
