package sqsqueue

import "errors"

const (
	JobEventReminder   = "event_reminder"
	JobNewRegistration = "new_registration"
)

// Job is the queue envelope for both invocation kinds: scheduler ticks
// that trigger a reminder cycle, and registration events for the relay.
type Job struct {
	Type          string `json:"type"`
	MinutesBefore int    `json:"minutesBefore,omitempty"`
	EventID       string `json:"eventId,omitempty"`
	StudentID     string `json:"studentId,omitempty"`
}

func (j Job) Validate() error {
	switch j.Type {
	case JobEventReminder:
		return nil
	case JobNewRegistration:
		if j.EventID == "" || j.StudentID == "" {
			return errors.New("registration job missing ids")
		}
		return nil
	}
	return errors.New("unknown job type: " + j.Type)
}
