// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about detector runs, catalog cache
// operations, and sync sessions.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, plain logs)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetDetectorHooks(&myDetectorHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Detector().OnTierStart(ctx, tier)
//	// ... run the tier ...
//	observability.Detector().OnTierComplete(ctx, tier, found, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Detector Hooks
// =============================================================================

// DetectorHooks receives events from the detection pipeline.
type DetectorHooks interface {
	// OnTierStart records the start of one detector tier.
	OnTierStart(ctx context.Context, tier string)

	// OnTierComplete records a finished tier with its detection count.
	// err is non-nil when the tier failed and contributed nothing.
	OnTierComplete(ctx context.Context, tier string, detections int, duration time.Duration, err error)

	// OnMerge records the merge of all tiers into one stack.
	OnMerge(ctx context.Context, technologies int)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from catalog cache operations.
type CacheHooks interface {
	// OnCacheHit records a fresh cache hit for a catalog source.
	OnCacheHit(ctx context.Context, source string)

	// OnCacheMiss records a stale or absent cache entry.
	OnCacheMiss(ctx context.Context, source string)

	// OnCacheWrite records a cache write after a successful fetch.
	OnCacheWrite(ctx context.Context, source string, entries int)
}

// =============================================================================
// Sync Hooks
// =============================================================================

// SyncHooks receives events from the sync session lifecycle.
type SyncHooks interface {
	// OnPreview records a computed diff held for confirmation.
	OnPreview(ctx context.Context, sessionID string, pending int)

	// OnConfirm records a confirmed (or rejected) session application.
	OnConfirm(ctx context.Context, sessionID string, applied, failed int)

	// OnExpire records sessions removed by the background sweep.
	OnExpire(ctx context.Context, swept int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopDetectorHooks is a no-op implementation of DetectorHooks.
type NoopDetectorHooks struct{}

func (NoopDetectorHooks) OnTierStart(context.Context, string)                                  {}
func (NoopDetectorHooks) OnTierComplete(context.Context, string, int, time.Duration, error)    {}
func (NoopDetectorHooks) OnMerge(context.Context, int)                                         {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)        {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)       {}
func (NoopCacheHooks) OnCacheWrite(context.Context, string, int) {}

// NoopSyncHooks is a no-op implementation of SyncHooks.
type NoopSyncHooks struct{}

func (NoopSyncHooks) OnPreview(context.Context, string, int)      {}
func (NoopSyncHooks) OnConfirm(context.Context, string, int, int) {}
func (NoopSyncHooks) OnExpire(context.Context, int)               {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	detectorHooks DetectorHooks = NoopDetectorHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	syncHooks     SyncHooks     = NoopSyncHooks{}
	mu            sync.RWMutex
)

// SetDetectorHooks registers detector hooks. Call once at startup.
func SetDetectorHooks(h DetectorHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = NoopDetectorHooks{}
	}
	detectorHooks = h
}

// SetCacheHooks registers cache hooks. Call once at startup.
func SetCacheHooks(h CacheHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = NoopCacheHooks{}
	}
	cacheHooks = h
}

// SetSyncHooks registers sync hooks. Call once at startup.
func SetSyncHooks(h SyncHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = NoopSyncHooks{}
	}
	syncHooks = h
}

// Detector returns the registered detector hooks.
func Detector() DetectorHooks {
	mu.RLock()
	defer mu.RUnlock()
	return detectorHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	mu.RLock()
	defer mu.RUnlock()
	return cacheHooks
}

// Sync returns the registered sync hooks.
func Sync() SyncHooks {
	mu.RLock()
	defer mu.RUnlock()
	return syncHooks
}
