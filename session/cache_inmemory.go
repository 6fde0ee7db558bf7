package session

import (
	"fmt"
	"sync"
)

// InMemoryCache is a process-local Cache. Sessions do not survive a restart.
type InMemoryCache struct {
	mu       sync.RWMutex
	sessions map[string]*Session // appID -> session
}

var _ Cache = (*InMemoryCache)(nil)

func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{
		sessions: make(map[string]*Session),
	}
}

func (c *InMemoryCache) Load(appID string) (*Session, error) {
	if appID == "" {
		return nil, fmt.Errorf("appID is required")
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.sessions[appID]
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

func (c *InMemoryCache) Save(appID string, s *Session) error {
	if appID == "" {
		return fmt.Errorf("appID is required")
	}
	if s == nil {
		return fmt.Errorf("session is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.sessions[appID] = s.Clone()
	return nil
}

func (c *InMemoryCache) Delete(appID string) error {
	if appID == "" {
		return fmt.Errorf("appID is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.sessions, appID)
	return nil
}
