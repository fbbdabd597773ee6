// Package message renders notification text. Everything here is a pure
// function of its inputs so the exact wording per lead-time bucket is
// testable without touching the provider.
package message

import (
	"fmt"
	"strconv"

	"reminderd/internal/domain"
	"reminderd/internal/store"
)

const (
	ReminderTitle     = "⏰ Event reminder"
	RegistrationTitle = "New registration!"

	TypeEventReminder   = "event_reminder"
	TypeNewRegistration = "new_registration"
)

// leadPhrase is exhaustive over the lead-time enum. Unknown values are
// rejected at the API edge, so the default arm should be unreachable.
func leadPhrase(lead domain.LeadTime) string {
	switch lead {
	case domain.Lead10Min:
		return "in 10 minutes!"
	case domain.Lead15Min:
		return "in 15 minutes"
	case domain.Lead30Min:
		return "in 30 minutes"
	case domain.Lead1Hour:
		return "in 1 hour"
	case domain.Lead1Day:
		return "tomorrow"
	default:
		return "soon"
	}
}

func ReminderBody(ev store.Event, lead domain.LeadTime) string {
	body := fmt.Sprintf("%q starts %s", ev.Name, leadPhrase(lead))
	if ev.Location != "" {
		body += " at " + ev.Location
	}
	return body
}

func ReminderData(eventID string, lead domain.LeadTime) map[string]string {
	return map[string]string{
		"type":           TypeEventReminder,
		"event_id":       eventID,
		"minutes_before": strconv.Itoa(lead.Minutes()),
	}
}

func RegistrationBody(studentName, eventName string) string {
	if studentName == "" {
		studentName = "A student"
	}
	return fmt.Sprintf("%s registered for %q", studentName, eventName)
}

func RegistrationData(eventID string) map[string]string {
	return map[string]string{
		"type":     TypeNewRegistration,
		"event_id": eventID,
	}
}
