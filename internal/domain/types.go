package domain

import "errors"

// LeadTime is how far before an event's start a reminder fires.
// The set is closed; callers pick one per dispatch cycle.
type LeadTime int

const (
	Lead10Min LeadTime = 10
	Lead15Min LeadTime = 15
	Lead30Min LeadTime = 30
	Lead1Hour LeadTime = 60
	Lead1Day  LeadTime = 1440
)

const DefaultLeadTime = Lead30Min

var ErrUnknownLeadTime = errors.New("unknown lead time")

// ParseLeadTime maps a minutes value onto the closed lead-time set.
// Zero means "not provided" and yields the default.
func ParseLeadTime(minutes int) (LeadTime, error) {
	switch minutes {
	case 0:
		return DefaultLeadTime, nil
	case 10, 15, 30, 60, 1440:
		return LeadTime(minutes), nil
	}
	return 0, ErrUnknownLeadTime
}

func (l LeadTime) Minutes() int { return int(l) }

type DispatchRequest struct {
	MinutesBefore int `json:"minutesBefore"`
}

type RelayRequest struct {
	EventID   string `json:"eventId"`
	StudentID string `json:"studentId"`
}

func (r RelayRequest) Validate() error {
	if r.EventID == "" || r.StudentID == "" {
		return ErrMissingFields
	}
	return nil
}

var ErrMissingFields = errors.New("missing required fields")

// ErrNotFound signals an absent event or owner; ErrNoToken an owner
// without a delivery token. The two must stay distinguishable: the relay
// endpoint maps the first to 404 and the second to a 200 skip.
var (
	ErrNotFound = errors.New("not found")
	ErrNoToken  = errors.New("no delivery token")
)

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

type DeliveryResult struct {
	EventID       string  `json:"eventId"`
	EventName     string  `json:"eventName"`
	RecipientID   string  `json:"recipientId"`
	RecipientName string  `json:"recipientName,omitempty"`
	Outcome       Outcome `json:"outcome"`
	Error         string  `json:"error,omitempty"`
}

// DispatchSummary is the cycle-level aggregate returned to the caller.
// Skipped counts claim rejections (another cycle already owns the key);
// they are not failures.
type DispatchSummary struct {
	CycleID       string           `json:"cycleId"`
	LeadMinutes   int              `json:"leadMinutes"`
	MatchedEvents int              `json:"matchedEvents"`
	Attempted     int              `json:"attempted"`
	Succeeded     int              `json:"succeeded"`
	Failed        int              `json:"failed"`
	Skipped       int              `json:"skipped"`
	Details       []DeliveryResult `json:"details"`
}

type RelayResponse struct {
	Success          bool   `json:"success"`
	Skipped          string `json:"skipped,omitempty"`
	ProviderResponse any    `json:"providerResponse,omitempty"`
}
