package store

import "time"

// Event is a read-only snapshot from the events table. StartTime is the
// raw time-of-day column value ("HH:MM" or "HH:MM:SS"); parsing and
// validation happen in the matcher, where a malformed value means
// "cannot match", not "error".
type Event struct {
	ID        string
	Name      string
	Date      time.Time
	StartTime string
	Location  string
}

// Recipient is a deliverable attendee or owner. Token is the opaque FCM
// registration token; the store layer only returns recipients for which
// it is non-empty, except for owner lookups where absence is reported.
type Recipient struct {
	ID    string
	Name  string
	Token string
}

// EventOwner pairs an event with its organizer. Token may be empty; the
// relay treats that as a reportable skip, not an error.
type EventOwner struct {
	Event     Event
	OwnerID   string
	OwnerName string
	Token     string
}
