package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
// It is append-only; there are no Update/Delete methods.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records authentication events. Callers treat it as best-effort.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s == nil || s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}
	if e.Type != EventTypeLoginFailed && e.ActorUserID == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

func (s *Service) LogLogin(ctx context.Context, userID, role, sessionID, ip string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeLogin,
		ActorUserID: userID,
		ActorRole:   role,
		SessionID:   sessionID,
		IPAddress:   ip,
		Message:     "login succeeded",
	})
}

func (s *Service) LogLoginFailed(ctx context.Context, username, ip string) error {
	return s.Append(ctx, Event{
		Type:      EventTypeLoginFailed,
		Username:  username,
		IPAddress: ip,
		Message:   "invalid credentials",
	})
}

func (s *Service) LogLogout(ctx context.Context, userID, role, sessionID, ip string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeLogout,
		ActorUserID: userID,
		ActorRole:   role,
		SessionID:   sessionID,
		IPAddress:   ip,
		Message:     "session ended",
	})
}

func (s *Service) LogRefresh(ctx context.Context, userID, role, sessionID, ip string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeRefresh,
		ActorUserID: userID,
		ActorRole:   role,
		SessionID:   sessionID,
		IPAddress:   ip,
		Message:     "tokens rotated",
	})
}
