// Package relay implements the registration notification path: one
// owner lookup, one push. No matching, no claims, no fan-out.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"reminderd/internal/domain"
	"reminderd/internal/message"
	"reminderd/internal/provider/fcm"
	"reminderd/internal/store"
)

type Store interface {
	EventOwner(ctx context.Context, eventID string) (store.EventOwner, bool, error)
	StudentName(ctx context.Context, studentID string) (string, bool, error)
}

type Sender interface {
	Send(ctx context.Context, req fcm.SendRequest) (fcm.SendResponse, int, []byte, error)
}

type Service struct {
	Store  Store
	Sender Sender
}

// NotifyRegistration tells an event's owner that a student registered.
// Returns domain.ErrNotFound when the event or owner is absent. A
// token-less owner is a reported skip, not an error.
func (s *Service) NotifyRegistration(ctx context.Context, req domain.RelayRequest) (domain.RelayResponse, error) {
	owner, found, err := s.Store.EventOwner(ctx, req.EventID)
	if err != nil {
		return domain.RelayResponse{}, fmt.Errorf("resolve event owner: %w", err)
	}
	if !found {
		return domain.RelayResponse{}, domain.ErrNotFound
	}
	if owner.Token == "" {
		slog.Info("owner has no delivery token", "event_id", req.EventID, "owner_id", owner.OwnerID)
		return domain.RelayResponse{Skipped: "owner has no delivery token"}, nil
	}

	// Best-effort name lookup; the notification still goes out with a
	// generic name when the student record is missing.
	studentName, nameFound, err := s.Store.StudentName(ctx, req.StudentID)
	if err != nil {
		slog.Error("resolve student name failed", "student_id", req.StudentID, "err", err)
		studentName = ""
	} else if !nameFound {
		studentName = ""
	}

	_, _, raw, err := s.Sender.Send(ctx, fcm.SendRequest{
		Token: owner.Token,
		Title: message.RegistrationTitle,
		Body:  message.RegistrationBody(studentName, owner.Event.Name),
		Data:  message.RegistrationData(req.EventID),
	})
	if err != nil {
		return domain.RelayResponse{}, fmt.Errorf("send registration notification: %w", err)
	}

	return domain.RelayResponse{Success: true, ProviderResponse: json.RawMessage(raw)}, nil
}
