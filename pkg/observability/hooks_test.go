package observability

import (
	"context"
	"testing"
	"time"
)

type recordingDetectorHooks struct {
	NoopDetectorHooks
	tiers []string
}

func (h *recordingDetectorHooks) OnTierComplete(_ context.Context, tier string, _ int, _ time.Duration, _ error) {
	h.tiers = append(h.tiers, tier)
}

func TestSetDetectorHooks(t *testing.T) {
	rec := &recordingDetectorHooks{}
	SetDetectorHooks(rec)
	defer SetDetectorHooks(nil)

	Detector().OnTierComplete(context.Background(), "manifest", 3, time.Millisecond, nil)

	if len(rec.tiers) != 1 || rec.tiers[0] != "manifest" {
		t.Errorf("got tiers %v, want [manifest]", rec.tiers)
	}
}

func TestSetNilRestoresNoop(t *testing.T) {
	SetDetectorHooks(nil)
	SetCacheHooks(nil)
	SetSyncHooks(nil)

	// Must not panic.
	Detector().OnTierStart(context.Background(), "readme")
	Cache().OnCacheHit(context.Background(), "default")
	Sync().OnExpire(context.Background(), 0)
}

func TestDefaultsAreNoop(t *testing.T) {
	if _, ok := Detector().(NoopDetectorHooks); !ok {
		t.Skip("hooks replaced by another test")
	}
	Cache().OnCacheWrite(context.Background(), "default", 10)
	Sync().OnPreview(context.Background(), "id", 2)
}
