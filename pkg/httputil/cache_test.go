package httputil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCache_RoundTrip(t *testing.T) {
	c, err := NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewCache() failed: %v", err)
	}

	type doc struct {
		Name string `json:"name"`
	}
	if err := c.Set("catalog", doc{Name: "react"}); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	var got doc
	if !c.Get("catalog", &got) {
		t.Fatal("Get() missed a just-written entry")
	}
	if got.Name != "react" {
		t.Errorf("got %q, want react", got.Name)
	}
}

func TestCache_MissOnAbsentKey(t *testing.T) {
	c, _ := NewCache(t.TempDir(), time.Hour)
	if _, ok := c.GetRaw("never-set"); ok {
		t.Error("GetRaw() hit on a key that was never set")
	}
}

func TestCache_StaleEntryIsMiss(t *testing.T) {
	now := time.Now()
	clock := &now
	c, _ := NewCache(t.TempDir(), time.Hour,
		WithCacheClock(func() time.Time { return *clock }))

	if err := c.SetRaw("key", json.RawMessage(`"payload"`)); err != nil {
		t.Fatalf("SetRaw() failed: %v", err)
	}
	if _, ok := c.GetRaw("key"); !ok {
		t.Fatal("fresh entry should hit")
	}

	// Age the entry past the TTL by advancing the injected clock.
	later := now.Add(2 * time.Hour)
	clock = &later
	if _, ok := c.GetRaw("key"); ok {
		t.Error("stale entry should miss")
	}

	// Re-setting stamps the entry with the advanced clock.
	if err := c.SetRaw("key", json.RawMessage(`"payload"`)); err != nil {
		t.Fatalf("SetRaw() failed: %v", err)
	}
	if _, ok := c.GetRaw("key"); !ok {
		t.Error("rewritten entry should be fresh again")
	}
}

func TestCache_ZeroTTLNeverStale(t *testing.T) {
	now := time.Now()
	clock := &now
	c, _ := NewCache(t.TempDir(), 0,
		WithCacheClock(func() time.Time { return *clock }))

	if err := c.SetRaw("key", json.RawMessage(`1`)); err != nil {
		t.Fatalf("SetRaw() failed: %v", err)
	}
	later := now.Add(24 * 365 * time.Hour)
	clock = &later
	if _, ok := c.GetRaw("key"); !ok {
		t.Error("zero TTL entries must never go stale")
	}
}

func TestCache_CorruptEntryRemoved(t *testing.T) {
	c, _ := NewCache(t.TempDir(), time.Hour)

	path := c.path("key")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	if _, ok := c.GetRaw("key"); ok {
		t.Error("corrupt entry should miss")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed on read")
	}
}

func TestCache_EntryFormat(t *testing.T) {
	c, _ := NewCache(t.TempDir(), time.Hour)
	if err := c.SetRaw("key", json.RawMessage(`["skill"]`)); err != nil {
		t.Fatalf("SetRaw() failed: %v", err)
	}

	data, err := os.ReadFile(c.path("key"))
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	var e struct {
		FetchedAt time.Time       `json:"fetched_at"`
		Payload   json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &e); err != nil {
		t.Fatalf("entry is not valid JSON: %v", err)
	}
	if e.FetchedAt.IsZero() {
		t.Error("entry missing fetched_at")
	}
	if string(e.Payload) != `["skill"]` {
		t.Errorf("got payload %s, want the raw document", e.Payload)
	}
}

func TestCache_Namespace(t *testing.T) {
	c, _ := NewCache(t.TempDir(), time.Hour)
	catalog := c.Namespace("catalog:")
	depgraph := c.Namespace("depgraph:")

	if err := catalog.SetRaw("react", json.RawMessage(`"catalog"`)); err != nil {
		t.Fatalf("SetRaw() failed: %v", err)
	}
	if err := depgraph.SetRaw("react", json.RawMessage(`"depgraph"`)); err != nil {
		t.Fatalf("SetRaw() failed: %v", err)
	}

	raw, ok := catalog.GetRaw("react")
	if !ok || string(raw) != `"catalog"` {
		t.Errorf("got %s, %v; want the catalog-scoped payload", raw, ok)
	}
	raw, ok = depgraph.GetRaw("react")
	if !ok || string(raw) != `"depgraph"` {
		t.Errorf("got %s, %v; want the depgraph-scoped payload", raw, ok)
	}

	// Chained prefixes compose; the parent never sees scoped keys.
	if _, ok := c.GetRaw("react"); ok {
		t.Error("unscoped key must not see namespaced entries")
	}
	nested := catalog.Namespace("v2:")
	if err := nested.SetRaw("react", json.RawMessage(`2`)); err != nil {
		t.Fatalf("SetRaw() failed: %v", err)
	}
	if _, ok := catalog.GetRaw("v2:react"); !ok {
		t.Error("chained namespace should concatenate prefixes")
	}
}

func TestNewCache_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	c, err := NewCache("", time.Hour)
	if err != nil {
		t.Fatalf("NewCache() failed: %v", err)
	}
	want := filepath.Join(home, ".cache", "mother-skills")
	if c.Dir() != want {
		t.Errorf("got Dir = %s, want %s", c.Dir(), want)
	}
	if c.TTL() != time.Hour {
		t.Errorf("got TTL = %v, want 1h", c.TTL())
	}
}
