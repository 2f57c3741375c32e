// Package match turns a detected technology stack into a set of catalog
// skills, then expands that set across declared skill dependencies.
//
// Matching and resolution are pure in-memory computations over an already
// fetched catalog; a fresh match set is computed per invocation and never
// persisted.
package match

import (
	"fmt"
	"strings"

	"github.com/dmgrok/mcp-mother-skills/pkg/catalog"
	"github.com/dmgrok/mcp-mother-skills/pkg/stack"
)

// Provenance values describe how a match entered the set.
const (
	// ProvenanceManual marks skills forced in by configuration.
	ProvenanceManual = "manual"
	// ProvenanceDiscovery marks skills matched against detected evidence.
	ProvenanceDiscovery = "discovery"
	// ProvenanceDependency marks skills pulled in transitively.
	ProvenanceDependency = "dependency"
)

// Match is one selected skill with the evidence that selected it.
type Match struct {
	// Skill is the winning catalog entry for this name.
	Skill catalog.Skill `json:"skill"`

	// MatchedBy is a free-text explanation of the match.
	MatchedBy string `json:"matchedBy"`

	// Confidence is inherited from the matching detection, fixed at 1.0
	// for manual includes and decayed for dependencies.
	Confidence float64 `json:"confidence"`

	// Provenance is one of the Provenance* constants.
	Provenance string `json:"provenance"`
}

// Logger receives progress and diagnostic messages.
type Logger func(format string, args ...any)

// Option configures a Matcher.
type Option func(*Matcher)

// WithAlwaysInclude forces the named skills into every match set with
// confidence 1.0, whether or not anything was detected.
func WithAlwaysInclude(names []string) Option {
	return func(m *Matcher) { m.include = names }
}

// WithAlwaysExclude keeps the named skills out of every match set, even
// when a dependency of an included skill would pull them back in.
func WithAlwaysExclude(names []string) Option {
	return func(m *Matcher) {
		for _, n := range names {
			m.exclude[strings.ToLower(n)] = true
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger Logger) Option {
	return func(m *Matcher) { m.logger = logger }
}

// Matcher selects catalog skills for a detected stack.
type Matcher struct {
	skills  []catalog.Skill
	index   map[string]catalog.Skill
	include []string
	exclude map[string]bool
	logger  Logger
}

// New creates a Matcher over the aggregated catalog. The slice order is
// the catalog's precedence order and determines match output order.
func New(skills []catalog.Skill, opts ...Option) *Matcher {
	m := &Matcher{
		skills:  skills,
		index:   catalog.Index(skills),
		exclude: make(map[string]bool),
		logger:  func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match walks every catalog entry against the flattened stack and returns
// the direct match set: manual includes first, then discovery matches in
// catalog order. Excluded names never enter the set and skills marked
// manual-only are skipped by discovery entirely.
func (m *Matcher) Match(st *stack.Stack) []Match {
	var out []Match
	matched := make(map[string]bool)

	for _, name := range m.include {
		key := strings.ToLower(name)
		if matched[key] || m.exclude[key] {
			continue
		}
		skill, ok := m.index[key]
		if !ok {
			m.logger("always-include skill not in catalog: %s", name)
			continue
		}
		matched[key] = true
		out = append(out, Match{
			Skill:      skill,
			MatchedBy:  "configured always-include",
			Confidence: 1.0,
			Provenance: ProvenanceManual,
		})
	}

	techs := st.All()
	for _, skill := range m.skills {
		key := strings.ToLower(skill.Name)
		if matched[key] || m.exclude[key] || skill.Triggers.ManualOnly {
			continue
		}
		if hit, ok := m.discover(skill, techs); ok {
			matched[key] = true
			out = append(out, hit)
		}
	}
	return out
}

// discover tries the automatic match strategies in priority order and
// returns the first hit.
func (m *Matcher) discover(skill catalog.Skill, techs []stack.Technology) (Match, bool) {
	name := strings.ToLower(skill.Name)
	for _, tech := range techs {
		if tech.ID == name {
			return Match{
				Skill:      skill,
				MatchedBy:  fmt.Sprintf("detected technology %s", tech.ID),
				Confidence: tech.Confidence,
				Provenance: ProvenanceDiscovery,
			}, true
		}
	}
	for _, pkg := range skill.Triggers.Packages {
		needle := strings.ToLower(pkg)
		for _, tech := range techs {
			if strings.Contains(strings.ToLower(tech.Source), needle) {
				return Match{
					Skill:      skill,
					MatchedBy:  fmt.Sprintf("trigger package %s via %s", pkg, tech.Source),
					Confidence: tech.Confidence,
					Provenance: ProvenanceDiscovery,
				}, true
			}
		}
	}
	return Match{}, false
}

// Run matches the stack and resolves dependencies in one step.
func (m *Matcher) Run(st *stack.Stack) []Match {
	return m.Resolve(m.Match(st))
}
