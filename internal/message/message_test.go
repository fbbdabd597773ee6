package message

import (
	"strings"
	"testing"

	"reminderd/internal/domain"
	"reminderd/internal/store"
)

func TestReminderBodyPerLeadTime(t *testing.T) {
	ev := store.Event{ID: "ev1", Name: "Tech Talk"}

	cases := []struct {
		lead domain.LeadTime
		want string
	}{
		{domain.Lead10Min, `"Tech Talk" starts in 10 minutes!`},
		{domain.Lead15Min, `"Tech Talk" starts in 15 minutes`},
		{domain.Lead30Min, `"Tech Talk" starts in 30 minutes`},
		{domain.Lead1Hour, `"Tech Talk" starts in 1 hour`},
		{domain.Lead1Day, `"Tech Talk" starts tomorrow`},
	}
	for _, c := range cases {
		if got := ReminderBody(ev, c.lead); got != c.want {
			t.Fatalf("lead %d: got %q, want %q", c.lead, got, c.want)
		}
	}
}

func TestReminderBodyIncludesLocation(t *testing.T) {
	ev := store.Event{Name: "Tech Talk", Location: "Auditorium B"}
	got := ReminderBody(ev, domain.Lead30Min)
	if !strings.HasSuffix(got, "at Auditorium B") {
		t.Fatalf("expected location suffix, got %q", got)
	}
}

func TestReminderData(t *testing.T) {
	data := ReminderData("ev1", domain.Lead1Hour)
	if data["type"] != TypeEventReminder {
		t.Fatalf("unexpected type %q", data["type"])
	}
	if data["event_id"] != "ev1" || data["minutes_before"] != "60" {
		t.Fatalf("unexpected data %v", data)
	}
}

func TestRegistrationBodyFallbackName(t *testing.T) {
	got := RegistrationBody("", "Tech Talk")
	if got != `A student registered for "Tech Talk"` {
		t.Fatalf("unexpected body %q", got)
	}

	got = RegistrationBody("Ana Soto", "Tech Talk")
	if got != `Ana Soto registered for "Tech Talk"` {
		t.Fatalf("unexpected body %q", got)
	}
}
