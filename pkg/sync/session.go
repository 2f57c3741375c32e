package sync

import (
	"context"
	stdsync "sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmgrok/mcp-mother-skills/pkg/errors"
	"github.com/dmgrok/mcp-mother-skills/pkg/observability"
)

// SessionTTL is how long a previewed session stays confirmable.
const SessionTTL = 5 * time.Minute

// Session is a computed-but-unapplied change set held for confirmation.
// Sessions are single-use handles: confirming one consumes it.
type Session struct {
	// ID is the generated session key. Empty when the preview produced
	// no pending changes and nothing was stored.
	ID string `json:"id,omitempty"`

	// Changes are the pending modifications, in plan order.
	Changes []Change `json:"changes"`

	// ManualNames lists skills present due to configured includes.
	ManualNames []string `json:"manualNames,omitempty"`

	// DiscoveredNames lists skills matched from detected evidence,
	// dependencies included.
	DiscoveredNames []string `json:"discoveredNames,omitempty"`

	// CreatedAt is when the preview was computed.
	CreatedAt time.Time `json:"createdAt"`
}

// SessionStore holds pending sessions between preview and confirm.
type SessionStore interface {
	// Put stores a session under a freshly generated id, returned on the
	// session itself, and sweeps expired sessions.
	Put(ctx context.Context, session *Session) string

	// Take removes and returns the session for id. Unknown and expired
	// ids fail identically with a session-not-found error.
	Take(ctx context.Context, id string) (*Session, error)
}

// MemoryStore is the process-lifetime SessionStore. Sessions are not
// persisted; a restart invalidates every pending id.
type MemoryStore struct {
	mu       stdsync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// StoreOption configures a MemoryStore.
type StoreOption func(*MemoryStore)

// WithStoreTTL overrides the session lifetime. Zero keeps SessionTTL.
func WithStoreTTL(ttl time.Duration) StoreOption {
	return func(s *MemoryStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithStoreClock overrides the wall clock, for deterministic expiry tests.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      SessionTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ SessionStore = (*MemoryStore)(nil)

// Put stores the session under a new uuid and stamps its creation time.
// Expired sessions are swept on every Put, so the table never grows past
// one TTL window of previews.
func (s *MemoryStore) Put(ctx context.Context, session *Session) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	swept := 0
	cutoff := s.now().Add(-s.ttl)
	for id, existing := range s.sessions {
		if existing.CreatedAt.Before(cutoff) {
			delete(s.sessions, id)
			swept++
		}
	}
	if swept > 0 {
		observability.Sync().OnExpire(ctx, swept)
	}

	session.ID = uuid.NewString()
	session.CreatedAt = s.now()
	s.sessions[session.ID] = session
	return session.ID
}

// Take removes and returns the stored session. Expiry is checked at
// lookup, so an aged session fails here even if no sweep has run.
func (s *MemoryStore) Take(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	if !ok || s.now().Sub(session.CreatedAt) >= s.ttl {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %s not found or expired", id)
	}
	return session, nil
}

// Len returns the number of stored sessions.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
