package memory

import (
	"errors"

	"intelliview-be/pkg/interview/session"

	"github.com/patrickmn/go-cache"
)

var ErrSessionExists = errors.New("session already registered")

// SessionRegistry is the process-wide index of live interview sessions.
// It references sessions; the websocket bridge owns them.
type SessionRegistry struct {
	cache *cache.Cache
}

func NewSessionRegistry() *SessionRegistry {
	// Live sessions never expire; the bridge removes them at teardown
	return &SessionRegistry{cache: cache.New(cache.NoExpiration, 0)}
}

// Register inserts the session only if its id is free.
func (r *SessionRegistry) Register(s *session.Session) error {
	if err := r.cache.Add(s.ID, s, cache.NoExpiration); err != nil {
		return ErrSessionExists
	}
	return nil
}

func (r *SessionRegistry) Get(sessionID string) (*session.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*session.Session), true
	}
	return nil, false
}

func (r *SessionRegistry) Remove(sessionID string) {
	r.cache.Delete(sessionID)
}

func (r *SessionRegistry) Count() int {
	return r.cache.ItemCount()
}
