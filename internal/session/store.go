package session

import (
	"context"
	"errors"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

var (
	// ErrNotFound is returned for unknown or expired sessions.
	ErrNotFound = errors.New("call session not found")
	// ErrStateMismatch is returned when a transition's expected state does
	// not hold. The current session is returned alongside it.
	ErrStateMismatch = errors.New("call session state mismatch")
)

// Store keeps in-flight call sessions.
type Store interface {
	Save(ctx context.Context, s *domain.CallSession) error
	Get(ctx context.Context, id string) (*domain.CallSession, error)
	// Transition atomically moves a session from one state to another.
	Transition(ctx context.Context, id string, from, to domain.SessionState) (*domain.CallSession, error)
}
