// Package session holds the browser-facing login state of the auth
// service: cookie sessions, the saved authorization request that lets
// login resume an interrupted flow, and the CSRF guard for the stateful
// surface. All of it lives in memory; a restart logs everyone out, the
// same way a restart invalidates all tokens.
package session

import (
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/galleria-app/galleria/pkg/cryptox"
)

// DefaultTTL is how long an idle browser session lives.
const DefaultTTL = 30 * time.Minute

// Session is one browser session. A session exists before login (it
// carries the CSRF token and any pending authorization request) and is
// upgraded in place when the user authenticates.
type Session struct {
	mu sync.Mutex

	ID        string
	CSRFToken string
	CreatedAt time.Time

	userID   string
	username string
	pending  *PendingAuthorizationRequest
}

// PendingAuthorizationRequest is a saved /oauth2/authorize request that
// arrived while the user was not yet logged in. After login the handler
// consumes it and replays the original query.
type PendingAuthorizationRequest struct {
	RawQuery  string
	CreatedAt time.Time
}

// Authenticated reports whether a user has logged in on this session.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID != ""
}

// User returns the logged-in user's id and username, or empty strings.
func (s *Session) User() (id, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID, s.username
}

func (s *Session) login(userID, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
	s.username = username
}

// SavePending stores the authorization request to resume after login,
// replacing any earlier one.
func (s *Session) SavePending(rawQuery string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &PendingAuthorizationRequest{
		RawQuery:  rawQuery,
		CreatedAt: time.Now(),
	}
}

// ConsumePending returns the saved authorization request and clears it.
func (s *Session) ConsumePending() (PendingAuthorizationRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return PendingAuthorizationRequest{}, false
	}
	p := *s.pending
	s.pending = nil
	return p, true
}

// Store keeps sessions in a TTL cache. Sessions expire after their TTL
// without activity; touch-on-hit keeps active users logged in.
type Store struct {
	cache *ttlcache.Cache[string, *Session]
}

// NewStore creates a session store whose entries expire after ttl of
// inactivity and starts the cleanup process.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	cache := ttlcache.New(
		ttlcache.WithTTL[string, *Session](ttl),
	)
	go cache.Start()

	return &Store{cache: cache}
}

// Create mints a new anonymous session with a fresh CSRF token.
func (st *Store) Create() (*Session, error) {
	id, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}
	csrf, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:        id,
		CSRFToken: csrf,
		CreatedAt: time.Now(),
	}
	st.cache.Set(id, s, ttlcache.DefaultTTL)
	return s, nil
}

// Get returns the session with the given id, or false if it does not
// exist or has expired.
func (st *Store) Get(id string) (*Session, bool) {
	item := st.cache.Get(id)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// Login authenticates the session under a fresh id and CSRF token, so
// a cookie value planted before login is worthless afterwards (session
// fixation). The pending authorization request carries over. Returns
// the replacement session.
func (st *Store) Login(id, userID, username string) (*Session, bool) {
	old, ok := st.Get(id)
	if !ok {
		return nil, false
	}

	fresh, err := st.Create()
	if err != nil {
		return nil, false
	}

	old.mu.Lock()
	pending := old.pending
	old.pending = nil
	old.mu.Unlock()

	fresh.login(userID, username)
	if pending != nil {
		fresh.mu.Lock()
		fresh.pending = pending
		fresh.mu.Unlock()
	}

	st.cache.Delete(id)
	return fresh, true
}

// Delete removes a session, logging the browser out.
func (st *Store) Delete(id string) {
	st.cache.Delete(id)
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	return st.cache.Len()
}

// Close stops the cleanup goroutine.
func (st *Store) Close() error {
	st.cache.Stop()
	return nil
}
