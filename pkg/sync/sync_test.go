package sync

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/dmgrok/mcp-mother-skills/pkg/catalog"
	"github.com/dmgrok/mcp-mother-skills/pkg/errors"
	"github.com/dmgrok/mcp-mother-skills/pkg/match"
	"github.com/dmgrok/mcp-mother-skills/pkg/skills"
	"github.com/dmgrok/mcp-mother-skills/pkg/stack"
)

type fakeMaterializer struct {
	installed []string
	removed   []string
	failOn    map[string]error
}

func (f *fakeMaterializer) Install(_ context.Context, skill catalog.Skill) error {
	if err := f.failOn[skill.Name]; err != nil {
		return err
	}
	f.installed = append(f.installed, skill.Name)
	return nil
}

func (f *fakeMaterializer) Uninstall(_ context.Context, name string) error {
	if err := f.failOn[name]; err != nil {
		return err
	}
	f.removed = append(f.removed, name)
	return nil
}

func discovered(name, version string) match.Match {
	return match.Match{
		Skill:      catalog.Skill{Name: name, Version: version},
		MatchedBy:  "detected technology " + name,
		Confidence: 0.95,
		Provenance: match.ProvenanceDiscovery,
	}
}

func TestPlan_Diff(t *testing.T) {
	matches := []match.Match{
		discovered("react", "1.0.0"),
		discovered("typescript", "1.0.0"),
		discovered("vitest", "2.0.0"),
	}
	installed := []skills.Installed{
		{Name: "typescript", Version: "0.9.0"},
		{Name: "vitest", Version: "2.0.0"},
		{Name: "orphan", Version: "1.0.0"},
	}

	changes := Plan(matches, installed, false)
	if len(changes) != 2 {
		t.Fatalf("Plan() returned %d changes, want add react + update typescript", len(changes))
	}

	byName := make(map[string]Change)
	for _, c := range changes {
		byName[c.Name()] = c
	}
	if c := byName["react"]; c.Action != ActionAdd {
		t.Errorf("react action = %q, want add", c.Action)
	}
	ts := byName["typescript"]
	if ts.Action != ActionUpdate || ts.OldVersion != "0.9.0" || ts.Match.Skill.Version != "1.0.0" {
		t.Errorf("typescript change = %+v, want update 0.9.0 -> 1.0.0", ts)
	}
	if _, ok := byName["orphan"]; ok {
		t.Error("unmatched install must be left alone without auto-remove")
	}
}

func TestPlan_AutoRemove(t *testing.T) {
	installed := []skills.Installed{{Name: "orphan", Version: "1.0.0"}}
	changes := Plan(nil, installed, true)
	if len(changes) != 1 || changes[0].Action != ActionRemove || changes[0].Name() != "orphan" {
		t.Fatalf("Plan() = %+v, want a single remove of orphan", changes)
	}
	if changes[0].OldVersion != "1.0.0" {
		t.Errorf("remove OldVersion = %q, want 1.0.0", changes[0].OldVersion)
	}
}

func TestEngine_PreviewConfirm(t *testing.T) {
	mat := &fakeMaterializer{}
	engine := NewEngine(NewMemoryStore(), mat)
	ctx := context.Background()

	session := engine.Preview(ctx, []match.Match{discovered("react", "1.0.0")}, nil)
	if session.ID == "" {
		t.Fatal("preview with pending changes must allocate a session id")
	}

	result, err := engine.Confirm(ctx, session.ID, nil, nil)
	if err != nil {
		t.Fatalf("Confirm() failed: %v", err)
	}
	if len(result.Applied) != 1 || result.Applied[0].Name() != "react" {
		t.Fatalf("applied = %+v, want react", result.Applied)
	}
	if len(mat.installed) != 1 || mat.installed[0] != "react" {
		t.Errorf("materializer installed %v, want react", mat.installed)
	}
}

func TestEngine_ConfirmSingleUse(t *testing.T) {
	engine := NewEngine(NewMemoryStore(), &fakeMaterializer{})
	ctx := context.Background()

	session := engine.Preview(ctx, []match.Match{discovered("react", "1.0.0")}, nil)
	if _, err := engine.Confirm(ctx, session.ID, nil, nil); err != nil {
		t.Fatalf("first Confirm() failed: %v", err)
	}
	_, err := engine.Confirm(ctx, session.ID, nil, nil)
	if errors.GetCode(err) != errors.ErrCodeSessionNotFound {
		t.Errorf("second Confirm() err = %v, want %s", err, errors.ErrCodeSessionNotFound)
	}
}

func TestEngine_ConfirmUnknownSession(t *testing.T) {
	engine := NewEngine(NewMemoryStore(), &fakeMaterializer{})
	_, err := engine.Confirm(context.Background(), "no-such-id", nil, nil)
	if errors.GetCode(err) != errors.ErrCodeSessionNotFound {
		t.Errorf("err = %v, want %s", err, errors.ErrCodeSessionNotFound)
	}
}

func TestEngine_RejectOverridesApprove(t *testing.T) {
	mat := &fakeMaterializer{}
	engine := NewEngine(NewMemoryStore(), mat)
	ctx := context.Background()

	session := engine.Preview(ctx, []match.Match{
		discovered("react", "1.0.0"),
		discovered("vitest", "2.0.0"),
	}, nil)

	result, err := engine.Confirm(ctx, session.ID, []string{"react", "vitest"}, []string{"vitest"})
	if err != nil {
		t.Fatalf("Confirm() failed: %v", err)
	}
	if len(result.Applied) != 1 || result.Applied[0].Name() != "react" {
		t.Errorf("applied = %+v, want only react; reject wins over approve", result.Applied)
	}
}

func TestEngine_PartialFailure(t *testing.T) {
	mat := &fakeMaterializer{failOn: map[string]error{"vitest": stderrors.New("disk full")}}
	engine := NewEngine(NewMemoryStore(), mat)

	result := engine.SyncImmediate(context.Background(), []match.Match{
		discovered("react", "1.0.0"),
		discovered("vitest", "2.0.0"),
		discovered("typescript", "1.0.0"),
	}, nil)

	if len(result.Applied) != 2 {
		t.Errorf("applied %d changes, want the two that could be written", len(result.Applied))
	}
	if len(result.Failed) != 1 || result.Failed[0].Change.Name() != "vitest" {
		t.Fatalf("failed = %+v, want the vitest write error itemized", result.Failed)
	}
}

func TestEngine_UpdateScenario(t *testing.T) {
	mat := &fakeMaterializer{}
	engine := NewEngine(NewMemoryStore(), mat)
	ctx := context.Background()

	installed := []skills.Installed{{Name: "typescript", Version: "0.9.0"}}
	session := engine.Preview(ctx, []match.Match{discovered("typescript", "1.0.0")}, installed)

	if len(session.Changes) != 1 {
		t.Fatalf("pending = %+v, want one update", session.Changes)
	}
	c := session.Changes[0]
	if c.Action != ActionUpdate || c.OldVersion != "0.9.0" || c.Match.Skill.Version != "1.0.0" {
		t.Errorf("change = %+v, want update with oldVersion 0.9.0 and version 1.0.0", c)
	}
}

func TestEngine_ManualIncludeScenario(t *testing.T) {
	skillsCatalog := []catalog.Skill{{Name: "react", Version: "1.0.0"}}
	matches := match.New(skillsCatalog, match.WithAlwaysInclude([]string{"react"})).Run(stack.New())

	engine := NewEngine(NewMemoryStore(), &fakeMaterializer{})
	session := engine.Preview(context.Background(), matches, nil)

	if len(session.Changes) != 1 || session.Changes[0].Name() != "react" {
		t.Fatalf("pending = %+v, want react added", session.Changes)
	}
	m := session.Changes[0].Match
	if m.Provenance != match.ProvenanceManual || m.Confidence != 1.0 {
		t.Errorf("match = %+v, want manual provenance with confidence 1.0", m)
	}
	if len(session.ManualNames) != 1 || session.ManualNames[0] != "react" {
		t.Errorf("manual names = %v, want [react]", session.ManualNames)
	}
}

func TestEngine_NoChangesNoSession(t *testing.T) {
	store := NewMemoryStore()
	engine := NewEngine(store, &fakeMaterializer{})

	installed := []skills.Installed{{Name: "react", Version: "1.0.0"}}
	session := engine.Preview(context.Background(), []match.Match{discovered("react", "1.0.0")}, installed)

	if session.ID != "" {
		t.Error("a no-op preview must not allocate a session id")
	}
	if store.Len() != 0 {
		t.Errorf("store holds %d sessions, want 0", store.Len())
	}
}

func TestMemoryStore_ExpiryAndSweep(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(WithStoreClock(func() time.Time { return now }))
	ctx := context.Background()

	id := store.Put(ctx, &Session{Changes: []Change{{Action: ActionAdd}}})

	now = now.Add(SessionTTL + time.Second)
	if _, err := store.Take(ctx, id); errors.GetCode(err) != errors.ErrCodeSessionNotFound {
		t.Errorf("expired Take() err = %v, want %s", err, errors.ErrCodeSessionNotFound)
	}

	// The sweep on a later Put drops anything past the TTL.
	stale := store.Put(ctx, &Session{})
	now = now.Add(SessionTTL + time.Second)
	fresh := store.Put(ctx, &Session{})
	if store.Len() != 1 {
		t.Errorf("store holds %d sessions after sweep, want 1", store.Len())
	}
	if _, err := store.Take(ctx, fresh); err != nil {
		t.Errorf("fresh session should survive the sweep: %v", err)
	}
	if _, err := store.Take(ctx, stale); err == nil {
		t.Error("stale session should have been swept")
	}
}
