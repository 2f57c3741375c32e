package httputil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// entry is the on-disk form of one cached document.
type entry struct {
	FetchedAt time.Time       `json:"fetched_at"`
	Payload   json.RawMessage `json:"payload"`
}

// Cache persists fetched documents on disk. Each entry is a JSON file
// named by the SHA-256 of its key and records the time its payload was
// fetched; Get treats entries older than the TTL as absent. Deleting the
// cache directory is always safe and equivalent to a full refresh.
//
// A Cache is not goroutine-safe; callers sharing one instance must
// synchronize. Separate instances, including in other processes, can
// share a directory.
type Cache struct {
	dir    string
	ttl    time.Duration
	prefix string
	now    func() time.Time
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithCacheClock overrides the wall clock used to stamp and age entries,
// for deterministic freshness tests.
func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCache creates a Cache rooted at dir with the given entry lifetime.
// An empty dir defaults to ~/.cache/mother-skills. The directory is
// created if absent. A ttl of zero means entries never go stale.
func NewCache(dir string, ttl time.Duration, opts ...CacheOption) (*Cache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".cache", "mother-skills")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	c := &Cache{dir: dir, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// TTL returns the entry lifetime. Zero means entries never go stale.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Namespace returns a view of the cache whose keys carry the given
// prefix, keeping documents from different sources apart. The view shares
// the parent's directory, TTL, and clock.
func (c *Cache) Namespace(prefix string) *Cache {
	ns := *c
	ns.prefix = c.prefix + prefix
	return &ns
}

// GetRaw returns the cached payload for key. ok is false when no entry
// exists, the entry is stale, or its file no longer parses. Unparsable
// entries are removed so the next Set starts clean.
func (c *Cache) GetRaw(key string) (payload json.RawMessage, ok bool) {
	path := c.path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil || e.FetchedAt.IsZero() {
		_ = os.Remove(path)
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(e.FetchedAt) >= c.ttl {
		return nil, false
	}
	return e.Payload, true
}

// Get unmarshals the cached payload for key into v. A payload that does
// not unmarshal into v counts as a miss.
func (c *Cache) Get(key string, v any) bool {
	raw, ok := c.GetRaw(key)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// SetRaw stores payload under key, stamped with the current clock time.
// An existing entry is overwritten and its age resets.
func (c *Cache) SetRaw(key string, payload json.RawMessage) error {
	data, err := json.Marshal(entry{FetchedAt: c.now(), Payload: payload})
	if err != nil {
		return err
	}
	return os.WriteFile(c.path(key), data, 0o644)
}

// Set marshals v and stores it under key.
func (c *Cache) Set(key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.SetRaw(key, payload)
}

func (c *Cache) path(key string) string {
	sum := sha256.Sum256([]byte(c.prefix + key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}
