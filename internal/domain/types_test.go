package domain

import (
	"errors"
	"testing"
)

func TestParseLeadTime(t *testing.T) {
	if lead, err := ParseLeadTime(0); err != nil || lead != Lead30Min {
		t.Fatalf("zero should default to 30m, got %d, %v", lead, err)
	}
	for _, m := range []int{10, 15, 30, 60, 1440} {
		lead, err := ParseLeadTime(m)
		if err != nil {
			t.Fatalf("minutes %d should parse: %v", m, err)
		}
		if lead.Minutes() != m {
			t.Fatalf("minutes %d round-tripped to %d", m, lead.Minutes())
		}
	}
	if _, err := ParseLeadTime(45); !errors.Is(err, ErrUnknownLeadTime) {
		t.Fatalf("45 must be rejected, got %v", err)
	}
	if _, err := ParseLeadTime(-10); !errors.Is(err, ErrUnknownLeadTime) {
		t.Fatalf("negative minutes must be rejected, got %v", err)
	}
}

func TestRelayRequestValidate(t *testing.T) {
	if err := (RelayRequest{EventID: "ev1", StudentID: "s1"}).Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
	if err := (RelayRequest{EventID: "ev1"}).Validate(); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("missing student must fail, got %v", err)
	}
}
