// Package catalog fetches and caches the versioned skill catalog from one
// or more prioritized remote sources.
//
// Each source publishes a JSON document containing an array of skill
// entries. The package persists one cache file per source (keyed by a hash
// of the source URL) with the fetch timestamp, serves cached results while
// they are fresh, and aggregates entries across sources with
// first-seen-wins precedence: a skill name seen at a higher-priority source
// suppresses same-named entries from lower-priority sources.
package catalog

import (
	"strings"
)

// Skill is one installable skill description from a catalog source.
// Skills are immutable once fetched and identified by Name, not by
// Location.
type Skill struct {
	// Name is the unique skill identifier, also used as its directory
	// name under the installation directory.
	Name string `json:"name"`

	// Location is the base URL the skill content is fetched from.
	Location string `json:"sourceLocation"`

	// Version is the catalog-declared skill version.
	Version string `json:"version"`

	// Description is a short human-readable summary.
	Description string `json:"description,omitempty"`

	// Triggers describe when this skill should be matched against a
	// detected stack.
	Triggers Triggers `json:"triggers,omitempty"`

	// Dependencies lists names of other skills this one requires.
	Dependencies []string `json:"dependencies,omitempty"`

	// Resources lists auxiliary files fetched alongside SKILL.md,
	// relative to Location.
	Resources []string `json:"resources,omitempty"`

	// Tags are free-form labels used for browsing.
	Tags []string `json:"tags,omitempty"`
}

// Triggers describe the evidence that causes a skill to match.
type Triggers struct {
	// Packages are dependency names whose presence in a project
	// suggests this skill (matched against detection provenance).
	Packages []string `json:"packages,omitempty"`

	// Files are filenames whose presence suggests this skill.
	Files []string `json:"files,omitempty"`

	// ReadmeKeywords are free-text terms matched against documentation.
	ReadmeKeywords []string `json:"readmeKeywords,omitempty"`

	// ManualOnly excludes the skill from automatic matching entirely;
	// it can only be selected by explicit name.
	ManualOnly bool `json:"manualOnly,omitempty"`
}

// Source is one prioritized catalog location.
type Source struct {
	// Name identifies the source in logs and cache reporting.
	Name string `json:"name" toml:"name"`

	// URL is the catalog document location.
	URL string `json:"url" toml:"url"`

	// Priority orders sources; 1 is highest. When two sources declare
	// the same skill name, the higher-priority declaration wins whole,
	// including its dependency list.
	Priority int `json:"priority" toml:"priority"`
}

// Bundle is a curated named group of skill names, fetched from a separate
// bundle document with the same caching discipline as the catalog.
type Bundle struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Skills      []string `json:"skills"`
}

// Index builds a name-keyed lookup over skills. Later duplicates are
// ignored, which preserves the aggregation's first-seen-wins order.
func Index(skills []Skill) map[string]Skill {
	idx := make(map[string]Skill, len(skills))
	for _, s := range skills {
		key := strings.ToLower(s.Name)
		if _, ok := idx[key]; !ok {
			idx[key] = s
		}
	}
	return idx
}
