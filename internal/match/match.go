package match

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"reminderd/internal/domain"
	"reminderd/internal/store"
)

// Tolerance is the allowed deviation between an event's start and the
// computed target instant. Fixed regardless of lead time.
const Tolerance = 5 * time.Minute

// Target returns the instant a reminder cycle is aiming at.
func Target(now time.Time, lead domain.LeadTime) time.Time {
	return now.Add(time.Duration(lead) * time.Minute)
}

// Bucket is the claim-key time component for a matched event. It is the
// event's own start (date plus normalized HH:MM), not a rounded target
// instant: every cycle that matches the event derives the identical
// value, however their tolerance windows overlap. Rounding the target
// would split adjacent cycles across bucket boundaries (09:54 and 09:59
// truncate differently) and re-open the double-send window.
func Bucket(ev store.Event) string {
	min, ok := minutesOfDay(ev.StartTime)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%sT%02d:%02d", ev.Date.Format("2006-01-02"), min/60, min%60)
}

// Match selects the events whose start falls within tolerance of
// now+lead. Pure: no I/O, no clock reads. Events on a different day than
// the target, or with a missing/malformed time-of-day, are excluded
// silently. An empty result is success, not an error.
func Match(now time.Time, lead domain.LeadTime, tolerance time.Duration, events []store.Event) []store.Event {
	target := Target(now, lead)
	targetMin := target.Hour()*60 + target.Minute()
	tolMin := int(tolerance / time.Minute)

	var due []store.Event
	for _, ev := range events {
		if !ev.Date.IsZero() && !sameDay(ev.Date, target) {
			continue
		}
		evMin, ok := minutesOfDay(ev.StartTime)
		if !ok {
			continue
		}
		diff := evMin - targetMin
		if diff < 0 {
			diff = -diff
		}
		if diff <= tolMin {
			due = append(due, ev)
		}
	}
	return due
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// minutesOfDay parses "HH:MM" or "HH:MM:SS".
func minutesOfDay(s string) (int, bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
