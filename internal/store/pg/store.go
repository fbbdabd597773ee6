package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"reminderd/internal/store"
)

type Store struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Store { return &Store{DB: db} }

// EventsOnDate is the candidate query for a dispatch cycle. Time-of-day
// filtering happens in the matcher; this only narrows by exact date.
func (s *Store) EventsOnDate(ctx context.Context, date time.Time) ([]store.Event, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, name, event_date, COALESCE(to_char(start_time, 'HH24:MI'), ''), COALESCE(location, '')
		FROM events WHERE event_date = $1
	`, date.UTC().Truncate(24*time.Hour))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Event
	for rows.Next() {
		var ev store.Event
		if err := rows.Scan(&ev.ID, &ev.Name, &ev.Date, &ev.StartTime, &ev.Location); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Attendees returns the registered students of an event that have a
// delivery token. Token-less registrations are dropped here, in SQL, so
// they never show up as attempted recipients.
func (s *Store) Attendees(ctx context.Context, eventID string) ([]store.Recipient, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT st.id, u.name, u.fcm_token
		FROM registrations r
		JOIN students st ON st.id = r.student_id
		JOIN users u ON u.id = st.user_id
		WHERE r.event_id = $1 AND COALESCE(u.fcm_token, '') <> ''
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Recipient
	for rows.Next() {
		var rec store.Recipient
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Token); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// EventOwner resolves an event together with its organizer. Token may be
// empty; the caller decides whether that is fatal.
func (s *Store) EventOwner(ctx context.Context, eventID string) (store.EventOwner, bool, error) {
	row := s.DB.QueryRow(ctx, `
		SELECT e.id, e.name, e.event_date, COALESCE(to_char(e.start_time, 'HH24:MI'), ''), COALESCE(e.location, ''),
		       o.id, u.name, COALESCE(u.fcm_token, '')
		FROM events e
		JOIN organizers o ON o.id = e.organizer_id
		JOIN users u ON u.id = o.user_id
		WHERE e.id = $1
	`, eventID)

	var eo store.EventOwner
	err := row.Scan(&eo.Event.ID, &eo.Event.Name, &eo.Event.Date, &eo.Event.StartTime, &eo.Event.Location,
		&eo.OwnerID, &eo.OwnerName, &eo.Token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.EventOwner{}, false, nil
		}
		return store.EventOwner{}, false, err
	}
	return eo, true, nil
}

// StudentName returns the registering student's display name.
func (s *Store) StudentName(ctx context.Context, studentID string) (string, bool, error) {
	row := s.DB.QueryRow(ctx, `
		SELECT trim(u.name || ' ' || COALESCE(u.last_name, ''))
		FROM students st
		JOIN users u ON u.id = st.user_id
		WHERE st.id = $1
	`, studentID)

	var name string
	err := row.Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return name, true, nil
}
