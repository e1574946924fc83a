package assistant

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/akashs101199/gcp-banking-personal-assistant/internal/domain"
)

// ErrTurnInFlight is returned when a turn starts while another is running.
var ErrTurnInFlight = errors.New("assistant: turn already in flight")

// Session is one connection's conversational state: an append-only turn
// history plus the single in-flight orchestration run. It lives only for
// the connection's lifetime and is owned by that connection's handler;
// Interrupt may be called from any goroutine.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time

	mu      sync.Mutex
	turns   []domain.Turn
	cancel  context.CancelFunc
	running bool
}

// NewSession creates an empty session for a user.
func NewSession(userID string) *Session {
	return &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now(),
	}
}

// Append adds a completed turn to the history.
func (s *Session) Append(turn domain.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, turn)
}

// History returns a copy of the turn history in append order.
func (s *Session) History() []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of turns recorded so far.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}

// begin claims the session's single run slot and derives the run context.
// Fails with ErrTurnInFlight if a run is already active.
func (s *Session) begin(parent context.Context) (context.Context, context.CancelFunc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil, nil, ErrTurnInFlight
	}

	ctx, cancel := context.WithCancel(parent)
	s.running = true
	s.cancel = cancel
	return ctx, cancel, nil
}

// end releases the run slot.
func (s *Session) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.cancel = nil
}

// Running reports whether an orchestration run is in flight.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Interrupt cancels the in-flight run, if any. The run observes the
// cancellation at its next suspension point and resets silently; no
// assistant turn is recorded for it.
func (s *Session) Interrupt() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
