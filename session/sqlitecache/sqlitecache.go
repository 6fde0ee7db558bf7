// Package sqlitecache persists sessions in a SQLite database, for hosts that
// already keep their local state there.
package sqlitecache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-venmo-sdk/session"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `CREATE TABLE IF NOT EXISTS venmo_sessions (
	app_id     TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// Cache is a session.Cache backed by a single table. Every write is one
// upsert statement, so readers see either the old or the new session.
type Cache struct {
	db      *sql.DB
	sealer  *session.Sealer
	nowTime func() time.Time
}

var _ session.Cache = (*Cache)(nil)

type Option func(*Cache)

func WithSealer(s *session.Sealer) Option {
	return func(c *Cache) {
		c.sealer = s
	}
}

// Open opens (or creates) the database file at path.
func Open(path string, opts ...Option) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("[sqlitecache Open] %w", err)
	}
	db.SetMaxOpenConns(1)
	c, err := New(db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// New uses an existing handle and creates the table if needed.
func New(db *sql.DB, opts ...Option) (*Cache, error) {
	if db == nil {
		return nil, errors.New("[sqlitecache New] db is required")
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("[sqlitecache New] failed to migrate: %w", err)
	}
	c := &Cache{db: db, nowTime: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Cache) Load(appID string) (*session.Session, error) {
	if appID == "" {
		return nil, errors.New("appID is required")
	}
	var payload []byte
	err := c.db.QueryRow(`SELECT payload FROM venmo_sessions WHERE app_id = ?`, appID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[sqlitecache Load] %w", err)
	}
	return session.Decode(appID, payload, c.sealer)
}

func (c *Cache) Save(appID string, s *session.Session) error {
	if appID == "" {
		return errors.New("appID is required")
	}
	payload, err := session.Encode(appID, s, c.sealer)
	if err != nil {
		return err
	}
	_, err = c.db.Exec(`INSERT INTO venmo_sessions (app_id, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(app_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		appID, payload, c.nowTime().UTC())
	if err != nil {
		return fmt.Errorf("[sqlitecache Save] %w", err)
	}
	return nil
}

func (c *Cache) Delete(appID string) error {
	if appID == "" {
		return errors.New("appID is required")
	}
	if _, err := c.db.Exec(`DELETE FROM venmo_sessions WHERE app_id = ?`, appID); err != nil {
		return fmt.Errorf("[sqlitecache Delete] %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}
