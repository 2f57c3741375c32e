package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dmgrok/mcp-mother-skills/pkg/httputil"
	"github.com/dmgrok/mcp-mother-skills/pkg/observability"
)

const (
	// DefaultTTL is the default catalog cache lifetime.
	DefaultTTL = 7 * 24 * time.Hour

	httpTimeout = 10 * time.Second
)

// Store fetches the skill catalog from prioritized sources and persists
// per-source caches on disk. Deleting the cache directory is equivalent to
// forcing a full refresh.
type Store struct {
	sources   []Source
	bundleURL string
	cache     *httputil.Cache
	ttl       time.Duration
	client    *http.Client
	logger    func(string, ...any)
	now       func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithBundleURL sets the bundle document location. Bundles share the
// catalog's caching discipline but keep independent TTL state.
func WithBundleURL(url string) Option {
	return func(s *Store) { s.bundleURL = url }
}

// WithTTL overrides the cache lifetime. Zero keeps DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLogger sets a callback for degraded-path warnings (unreachable or
// malformed sources). The default discards them.
func WithLogger(logger func(string, ...any)) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the wall clock, for deterministic freshness tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates a catalog store caching under cacheDir. If cacheDir is
// empty, ~/.cache/mother-skills/catalog is used. The directory is created
// if absent.
func NewStore(cacheDir string, sources []Source, opts ...Option) (*Store, error) {
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		cacheDir = filepath.Join(home, ".cache", "mother-skills", "catalog")
	}

	s := &Store{
		sources: append([]Source(nil), sources...),
		ttl:     DefaultTTL,
		client:  &http.Client{Timeout: httpTimeout},
		logger:  func(string, ...any) {},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	cache, err := httputil.NewCache(cacheDir, s.ttl, httputil.WithCacheClock(s.now))
	if err != nil {
		return nil, err
	}
	s.cache = cache

	// Ascending priority: 1 is highest and must be visited first.
	sort.SliceStable(s.sources, func(i, j int) bool {
		return s.sources[i].Priority < s.sources[j].Priority
	})
	return s, nil
}

// Dir returns the cache directory.
func (s *Store) Dir() string { return s.cache.Dir() }

// Sources returns the configured sources in visit order.
func (s *Store) Sources() []Source { return s.sources }

// Catalog returns the aggregated skill catalog. Sources are visited in
// ascending priority order; each is served from its disk cache when fresh,
// otherwise fetched and re-cached. With refresh set, freshness checks are
// bypassed for all sources.
//
// An unreachable or malformed source contributes nothing; the remaining
// sources still proceed. The returned slice preserves source order, with
// same-named entries from lower-priority sources suppressed. Names compare
// lowercase, matching the matcher and the planner.
func (s *Store) Catalog(ctx context.Context, refresh bool) ([]Skill, error) {
	var (
		aggregated []Skill
		seen       = make(map[string]bool)
	)

	for _, src := range s.sources {
		skills, err := s.loadSource(ctx, src, refresh)
		if err != nil {
			s.logger("catalog source %s unavailable: %v", src.Name, err)
			continue
		}
		for _, skill := range skills {
			key := strings.ToLower(skill.Name)
			if skill.Name == "" || seen[key] {
				continue
			}
			seen[key] = true
			aggregated = append(aggregated, skill)
		}
	}
	return aggregated, nil
}

// Bundles returns the curated skill bundles, or nil when no bundle URL is
// configured. The bundle cache is independent from the catalog caches.
func (s *Store) Bundles(ctx context.Context, refresh bool) ([]Bundle, error) {
	if s.bundleURL == "" {
		return nil, nil
	}

	raw, err := s.loadCached(ctx, "bundles", "bundle:"+s.bundleURL, s.bundleURL, refresh)
	if err != nil {
		return nil, err
	}
	var bundles []Bundle
	if err := json.Unmarshal(raw, &bundles); err != nil {
		return nil, fmt.Errorf("parse bundle document: %w", err)
	}
	return bundles, nil
}

// loadSource returns the skills from one source, using the disk cache when
// fresh.
func (s *Store) loadSource(ctx context.Context, src Source, refresh bool) ([]Skill, error) {
	raw, err := s.loadCached(ctx, src.Name, src.URL, src.URL, refresh)
	if err != nil {
		return nil, err
	}
	var skills []Skill
	if err := json.Unmarshal(raw, &skills); err != nil {
		return nil, fmt.Errorf("parse catalog from %s: %w", src.Name, err)
	}
	return skills, nil
}

// loadCached implements the shared cache-then-fetch discipline for both
// catalog sources and the bundle document. name is used for logging and
// hooks, cacheKey derives the cache filename, url is fetched on miss.
func (s *Store) loadCached(ctx context.Context, name, cacheKey, url string, refresh bool) (json.RawMessage, error) {
	if !refresh {
		if raw, ok := s.cache.GetRaw(cacheKey); ok {
			observability.Cache().OnCacheHit(ctx, name)
			return raw, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, name)

	raw, err := httputil.GetJSON(ctx, s.client, url, nil)
	if err != nil {
		return nil, err
	}

	// The freshly fetched payload overwrites the cache unconditionally,
	// even if a later source in the same aggregation fails.
	if err := s.cache.SetRaw(cacheKey, raw); err != nil {
		s.logger("failed to write catalog cache for %s: %v", name, err)
	} else {
		observability.Cache().OnCacheWrite(ctx, name, len(raw))
	}
	return raw, nil
}
