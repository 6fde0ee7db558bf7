// Package filecache persists sessions as one file per app under a directory.
package filecache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-venmo-sdk/session"
)

// Cache is a session.Cache backed by the filesystem. Writes go to a temp file
// that is renamed over the target, so a reader never sees a partial session.
type Cache struct {
	dir    string
	sealer *session.Sealer
	mu     sync.Mutex
}

var _ session.Cache = (*Cache)(nil)

type Option func(*Cache)

// WithSealer encrypts every file with the given sealer.
func WithSealer(s *session.Sealer) Option {
	return func(c *Cache) {
		c.sealer = s
	}
}

func New(dir string, opts ...Option) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("[filecache New] dir is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("[filecache New] failed to create %s: %w", dir, err)
	}
	c := &Cache{dir: dir}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Cache) Load(appID string) (*session.Session, error) {
	path, err := c.path(appID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	payload, err := os.ReadFile(path)
	c.mu.Unlock()
	if errors.Is(err, os.ErrNotExist) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[filecache Load] %w", err)
	}
	return session.Decode(appID, payload, c.sealer)
}

func (c *Cache) Save(appID string, s *session.Session) error {
	path, err := c.path(appID)
	if err != nil {
		return err
	}
	payload, err := session.Encode(appID, s, c.sealer)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	tmp, err := os.CreateTemp(c.dir, ".session-*")
	if err != nil {
		return fmt.Errorf("[filecache Save] %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("[filecache Save] %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("[filecache Save] %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[filecache Save] %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("[filecache Save] %w", err)
	}
	return nil
}

func (c *Cache) Delete(appID string) error {
	path, err := c.path(appID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("[filecache Delete] %w", err)
	}
	return nil
}

// path hashes the app id so it can never escape the cache directory.
func (c *Cache) path(appID string) (string, error) {
	if appID == "" {
		return "", errors.New("appID is required")
	}
	sum := sha256.Sum256([]byte(appID))
	return filepath.Join(c.dir, "session-"+hex.EncodeToString(sum[:8])+".json"), nil
}
