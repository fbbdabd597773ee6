package match

import (
	"testing"
	"time"

	"reminderd/internal/domain"
	"reminderd/internal/store"
)

func day(hhmm string) store.Event {
	return store.Event{
		ID:        "ev-" + hhmm,
		Name:      "Event " + hhmm,
		Date:      time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		StartTime: hhmm,
	}
}

func at(hh, mm int) time.Time {
	return time.Date(2026, 8, 28, hh, mm, 0, 0, time.UTC)
}

func TestMatchWithinTolerance(t *testing.T) {
	// now=09:25, lead=30m, target=09:55: 09:58 (diff 3m) matches,
	// 10:05 (diff 10m) does not.
	now := at(9, 25)
	events := []store.Event{day("09:58"), day("10:05")}

	due := Match(now, domain.Lead30Min, Tolerance, events)
	if len(due) != 1 {
		t.Fatalf("expected 1 match, got %d", len(due))
	}
	if due[0].StartTime != "09:58" {
		t.Fatalf("expected 09:58 to match, got %s", due[0].StartTime)
	}
}

func TestMatchToleranceBoundary(t *testing.T) {
	now := at(9, 25) // target 09:55
	inclusive := Match(now, domain.Lead30Min, Tolerance, []store.Event{day("10:00")})
	if len(inclusive) != 1 {
		t.Fatalf("diff of exactly 5m must match, got %d matches", len(inclusive))
	}

	excluded := Match(now, domain.Lead30Min, Tolerance, []store.Event{day("10:01")})
	if len(excluded) != 0 {
		t.Fatalf("diff of 6m must not match, got %d matches", len(excluded))
	}
}

func TestMatchSkipsMalformedTime(t *testing.T) {
	now := at(9, 25)
	events := []store.Event{day(""), day("9am"), day("25:00"), day("09:61"), day("09:55")}

	due := Match(now, domain.Lead30Min, Tolerance, events)
	if len(due) != 1 {
		t.Fatalf("expected only the well-formed event, got %d", len(due))
	}
}

func TestMatchRequiresSameDay(t *testing.T) {
	now := at(9, 25)
	other := day("09:55")
	other.Date = other.Date.AddDate(0, 0, 1)

	due := Match(now, domain.Lead30Min, Tolerance, []store.Event{other})
	if len(due) != 0 {
		t.Fatalf("event on another day must not match, got %d", len(due))
	}
}

func TestMatchAcceptsSecondsSuffix(t *testing.T) {
	now := at(9, 25)
	due := Match(now, domain.Lead30Min, Tolerance, []store.Event{day("09:55:00")})
	if len(due) != 1 {
		t.Fatalf("HH:MM:SS start time should match, got %d", len(due))
	}
}

func TestBucketStableAcrossOverlappingCycles(t *testing.T) {
	// Cycles at 09:24 and 09:29 (lead 30m) both match an event at
	// 09:55; their claim buckets must be identical.
	ev := day("09:55")

	first := Match(at(9, 24), domain.Lead30Min, Tolerance, []store.Event{ev})
	second := Match(at(9, 29), domain.Lead30Min, Tolerance, []store.Event{ev})
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("both cycles should match: %d and %d", len(first), len(second))
	}

	if b1, b2 := Bucket(first[0]), Bucket(second[0]); b1 != b2 {
		t.Fatalf("buckets differ: %q vs %q", b1, b2)
	}
}

func TestBucketFormat(t *testing.T) {
	got := Bucket(day("09:55:30"))
	if got != "2026-08-28T09:55" {
		t.Fatalf("unexpected bucket %q", got)
	}
}

func TestTarget(t *testing.T) {
	got := Target(at(9, 25), domain.Lead1Day)
	want := time.Date(2026, 8, 29, 9, 25, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("target = %v, want %v", got, want)
	}
}
