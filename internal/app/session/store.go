// Package session keeps per-visitor state: whether the intro animation has
// played and the visitor's dashboard loader.
package session

import (
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/dashboard"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/session"
	"github.com/google/uuid"
	"sync"
	"time"
)

const (
	DefaultIdleTimeout      = 24 * time.Hour
	DefaultFreshIdleTimeout = 10 * time.Minute
	DefaultMaxSessions      = 10000
)

type entry struct {
	session *session.Session
	loader  *dashboard.Loader
	// used is set once the visitor comes back with the session or acts on it.
	used bool
}

func (e *entry) expired(idleCutoff, freshCutoff time.Time) bool {
	if e.used {
		return e.session.LastSeenAt.Before(idleCutoff)
	}
	return e.session.LastSeenAt.Before(freshCutoff)
}

type Option func(s *Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func WithIdleTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.idle = d
	}
}

// WithFreshIdleTimeout sets how long a session that was never used again
// after creation is kept.
func WithFreshIdleTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.freshIdle = d
	}
}

// WithMaxSessions caps the number of live sessions. Zero means no cap.
func WithMaxSessions(n int) Option {
	return func(s *Store) {
		s.max = n
	}
}

type Store struct {
	mu        sync.Mutex
	sessions  map[string]*entry
	newLoader func() *dashboard.Loader
	now       func() time.Time
	idle      time.Duration
	freshIdle time.Duration
	max       int
}

func NewStore(newLoader func() *dashboard.Loader, opts ...Option) *Store {
	s := &Store{
		sessions:  make(map[string]*entry),
		newLoader: newLoader,
		now:       time.Now,
		idle:      DefaultIdleTimeout,
		freshIdle: DefaultFreshIdleTimeout,
		max:       DefaultMaxSessions,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start returns the session with id, creating a fresh one when id is empty
// or unknown. The boolean reports whether a session was created. When the
// store is full, expired sessions are dropped first and then the least
// recently seen one.
func (s *Store) Start(id string) (session.Session, bool) {
	s.mu.Lock()
	now := s.now()
	if e, ok := s.sessions[id]; ok && id != "" {
		e.used = true
		e.session.Touch(now)
		sess := *e.session
		s.mu.Unlock()
		return sess, false
	}

	var evicted []*entry
	if s.max > 0 && len(s.sessions) >= s.max {
		evicted = s.expireLocked(now)
		for len(s.sessions) >= s.max {
			evicted = append(evicted, s.evictOldestLocked())
		}
	}
	sess := session.New(uuid.NewString(), now)
	s.sessions[sess.ID] = &entry{session: sess}
	s.mu.Unlock()

	stopLoaders(evicted)
	return *sess, true
}

func (s *Store) Get(id string) (session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return session.Session{}, session.ErrSessionNotFound
	}
	return *e.session, nil
}

func (s *Store) MarkIntroPlayed(id string) (session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return session.Session{}, session.ErrSessionNotFound
	}
	e.used = true
	e.session.MarkIntroPlayed()
	e.session.Touch(s.now())
	return *e.session, nil
}

// Loader returns the session's dashboard loader, creating it on first use.
func (s *Store) Loader(id string) (*dashboard.Loader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	e.used = true
	if e.loader == nil {
		e.loader = s.newLoader()
	}
	return e.loader, nil
}

// End discards the session and abandons its dashboard load, if any.
func (s *Store) End(id string) error {
	s.mu.Lock()
	e, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return session.ErrSessionNotFound
	}
	stopLoaders([]*entry{e})
	return nil
}

// Sweep ends sessions idle for longer than their timeout and returns how
// many were removed. Sessions never used after creation get the shorter
// fresh timeout.
func (s *Store) Sweep() int {
	s.mu.Lock()
	expired := s.expireLocked(s.now())
	s.mu.Unlock()

	stopLoaders(expired)
	return len(expired)
}

func (s *Store) expireLocked(now time.Time) []*entry {
	idleCutoff, freshCutoff := now.Add(-s.idle), now.Add(-s.freshIdle)
	var expired []*entry
	for id, e := range s.sessions {
		if e.expired(idleCutoff, freshCutoff) {
			expired = append(expired, e)
			delete(s.sessions, id)
		}
	}
	return expired
}

func (s *Store) evictOldestLocked() *entry {
	var oldestID string
	var oldest *entry
	for id, e := range s.sessions {
		if oldest == nil || e.session.LastSeenAt.Before(oldest.session.LastSeenAt) {
			oldestID, oldest = id, e
		}
	}
	delete(s.sessions, oldestID)
	return oldest
}

func stopLoaders(entries []*entry) {
	for _, e := range entries {
		if e.loader != nil {
			e.loader.Stop()
		}
	}
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
