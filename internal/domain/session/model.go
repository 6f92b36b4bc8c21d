package session

import (
	"errors"
	"time"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

// Session is the per-visitor client state. It starts with the intro
// animation unplayed and is discarded when the visitor ends the session.
type Session struct {
	ID          string
	CreatedAt   time.Time
	LastSeenAt  time.Time
	introPlayed bool
}

func New(id string, now time.Time) *Session {
	return &Session{
		ID:         id,
		CreatedAt:  now,
		LastSeenAt: now,
	}
}

func (s *Session) IntroPlayed() bool {
	return s.introPlayed
}

func (s *Session) MarkIntroPlayed() {
	s.introPlayed = true
}

func (s *Session) Touch(now time.Time) {
	s.LastSeenAt = now
}
