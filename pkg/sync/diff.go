// Package sync plans and applies changes that bring an installation
// directory in line with a resolved skill match set.
//
// The flow is two-phase: Preview computes a diff and parks it in a
// time-boxed session; Confirm replays the session against the
// materializer. SyncImmediate collapses both phases for callers that do
// not want a confirmation step.
package sync

import (
	"fmt"
	"strings"

	"github.com/dmgrok/mcp-mother-skills/pkg/match"
	"github.com/dmgrok/mcp-mother-skills/pkg/skills"
)

// Action is the kind of change a sync applies to one skill.
type Action string

const (
	ActionAdd    Action = "add"
	ActionUpdate Action = "update"
	ActionRemove Action = "remove"
)

// Change is one pending modification of the installation directory.
type Change struct {
	// Action is what will happen to the skill.
	Action Action `json:"action"`

	// Match carries the catalog entry and its selection evidence. For
	// removals only Match.Skill.Name is populated.
	Match match.Match `json:"match"`

	// OldVersion is the currently installed version, set for updates
	// and removals.
	OldVersion string `json:"oldVersion,omitempty"`

	// Reason is a human-readable explanation of the change.
	Reason string `json:"reason"`
}

// Name returns the affected skill name.
func (c Change) Name() string { return c.Match.Skill.Name }

// Plan diffs the resolved match set against the installed skills.
//
// A matched skill that is not installed becomes an add; one installed at a
// different version becomes an update carrying the old version; identical
// versions produce no change. Installed skills without a match are left
// alone unless autoRemove is set, in which case they become removals. The
// model is additive by default.
func Plan(matches []match.Match, installed []skills.Installed, autoRemove bool) []Change {
	current := make(map[string]skills.Installed, len(installed))
	for _, inst := range installed {
		current[strings.ToLower(inst.Name)] = inst
	}

	var changes []Change
	matched := make(map[string]bool, len(matches))
	for _, m := range matches {
		key := strings.ToLower(m.Skill.Name)
		matched[key] = true

		inst, ok := current[key]
		switch {
		case !ok:
			changes = append(changes, Change{
				Action: ActionAdd,
				Match:  m,
				Reason: m.MatchedBy,
			})
		case inst.Version != m.Skill.Version:
			changes = append(changes, Change{
				Action:     ActionUpdate,
				Match:      m,
				OldVersion: inst.Version,
				Reason:     fmt.Sprintf("installed %s, catalog has %s", inst.Version, m.Skill.Version),
			})
		}
	}

	if autoRemove {
		for _, inst := range installed {
			if matched[strings.ToLower(inst.Name)] {
				continue
			}
			change := Change{
				Action:     ActionRemove,
				OldVersion: inst.Version,
				Reason:     "installed but no longer matched",
			}
			change.Match.Skill.Name = inst.Name
			changes = append(changes, change)
		}
	}
	return changes
}
