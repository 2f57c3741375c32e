package sync

import (
	"context"
	"strings"

	"github.com/dmgrok/mcp-mother-skills/pkg/catalog"
	"github.com/dmgrok/mcp-mother-skills/pkg/match"
	"github.com/dmgrok/mcp-mother-skills/pkg/observability"
	"github.com/dmgrok/mcp-mother-skills/pkg/skills"
)

// Materializer applies individual changes to the installation directory.
type Materializer interface {
	Install(ctx context.Context, skill catalog.Skill) error
	Uninstall(ctx context.Context, name string) error
}

var _ Materializer = (*skills.Materializer)(nil)

// Result is the outcome of applying a change set. Failures are collected
// per skill, so a multi-skill sync reports partial success instead of
// aborting at the first bad write.
type Result struct {
	// Applied lists the changes that completed.
	Applied []Change `json:"applied"`

	// Failed lists the changes that did not, with their errors.
	Failed []Failure `json:"failed,omitempty"`
}

// Failure pairs a change with the error that stopped it.
type Failure struct {
	Change Change `json:"change"`
	Error  string `json:"error"`
}

// Engine orchestrates the two-phase sync protocol over a session store and
// a materializer.
type Engine struct {
	store      SessionStore
	mat        Materializer
	autoRemove bool
	logger     func(string, ...any)
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithAutoRemove enables removal of installed skills that no longer match.
// Without it the engine is additive: unmatched installs are left alone.
func WithAutoRemove(enabled bool) EngineOption {
	return func(e *Engine) { e.autoRemove = enabled }
}

// WithEngineLogger sets the diagnostic logger.
func WithEngineLogger(logger func(string, ...any)) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a sync engine.
func NewEngine(store SessionStore, mat Materializer, opts ...EngineOption) *Engine {
	e := &Engine{
		store:  store,
		mat:    mat,
		logger: func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Preview plans the diff between matches and installed skills and, when
// there is anything to do, parks it in the session store for confirmation.
// A preview with no pending changes returns an unstored session with an
// empty id.
func (e *Engine) Preview(ctx context.Context, matches []match.Match, installed []skills.Installed) *Session {
	session := &Session{Changes: Plan(matches, installed, e.autoRemove)}
	for _, m := range matches {
		if m.Provenance == match.ProvenanceManual {
			session.ManualNames = append(session.ManualNames, m.Skill.Name)
		} else {
			session.DiscoveredNames = append(session.DiscoveredNames, m.Skill.Name)
		}
	}
	if len(session.Changes) == 0 {
		return session
	}

	id := e.store.Put(ctx, session)
	observability.Sync().OnPreview(ctx, id, len(session.Changes))
	e.logger("preview %s: %d pending changes", id, len(session.Changes))
	return session
}

// Confirm consumes the session and applies its changes. With neither list
// given every pending change is applied; with an approve list only the
// named changes are; a name in the reject list is skipped even when it is
// also approved. Confirmation is single-use: a second confirm of the same
// id fails with a session-not-found error.
func (e *Engine) Confirm(ctx context.Context, id string, approve, reject []string) (*Result, error) {
	session, err := e.store.Take(ctx, id)
	if err != nil {
		return nil, err
	}

	result := e.apply(ctx, selectChanges(session.Changes, approve, reject))
	observability.Sync().OnConfirm(ctx, id, len(result.Applied), len(result.Failed))
	return result, nil
}

// SyncImmediate plans and applies in one step without allocating a
// session.
func (e *Engine) SyncImmediate(ctx context.Context, matches []match.Match, installed []skills.Installed) *Result {
	return e.apply(ctx, Plan(matches, installed, e.autoRemove))
}

// apply runs each change through the materializer, collecting per-skill
// failures.
func (e *Engine) apply(ctx context.Context, changes []Change) *Result {
	result := &Result{}
	for _, change := range changes {
		var err error
		switch change.Action {
		case ActionRemove:
			err = e.mat.Uninstall(ctx, change.Name())
		default:
			err = e.mat.Install(ctx, change.Match.Skill)
		}
		if err != nil {
			e.logger("%s %s failed: %v", change.Action, change.Name(), err)
			result.Failed = append(result.Failed, Failure{Change: change, Error: err.Error()})
			continue
		}
		result.Applied = append(result.Applied, change)
	}
	return result
}

// selectChanges filters pending changes by the approve and reject lists.
func selectChanges(changes []Change, approve, reject []string) []Change {
	approved := toSet(approve)
	rejected := toSet(reject)

	var out []Change
	for _, change := range changes {
		key := strings.ToLower(change.Name())
		if rejected[key] {
			continue
		}
		if len(approved) > 0 && !approved[key] {
			continue
		}
		out = append(out, change)
	}
	return out
}

func toSet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = true
	}
	return set
}
