// Package stack defines the canonical detected technology stack and the
// merge rules that combine evidence from independent detector tiers.
package stack

// Category groups detected technologies by their role in a project.
type Category string

// The five stack categories. Every detection lands in exactly one.
const (
	CategoryLanguage       Category = "languages"
	CategoryFramework      Category = "frameworks"
	CategoryDatabase       Category = "databases"
	CategoryInfrastructure Category = "infrastructure"
	CategoryTool           Category = "tools"
)

// Categories lists all categories in canonical order.
var Categories = []Category{
	CategoryLanguage,
	CategoryFramework,
	CategoryDatabase,
	CategoryInfrastructure,
	CategoryTool,
}

// Technology is one detected technology with a confidence score and the
// provenance of its detection.
type Technology struct {
	// ID is the stable lowercase key for the technology (e.g. "react").
	ID string `json:"id"`

	// Name is an optional display name (e.g. "React").
	Name string `json:"name,omitempty"`

	// Version is the detected version, when the evidence carries one.
	Version string `json:"version,omitempty"`

	// Confidence is the tier-assigned score in [0, 1].
	Confidence float64 `json:"confidence"`

	// Source is free-text provenance, e.g. `package.json (react)`.
	Source string `json:"source"`
}

// Stack is the canonical detected stack: five ordered collections, each
// unique by technology ID. A Stack is mutated only through Add and is never
// shared across concurrent detection runs.
type Stack struct {
	categories map[Category][]Technology
}

// New creates an empty stack.
func New() *Stack {
	return &Stack{categories: make(map[Category][]Technology)}
}

// Add merges one detection into the stack.
//
// If no entry exists for (category, id), the technology is inserted. If an
// entry exists, the one with the higher confidence is kept — but a missing
// version is always backfilled from the incoming entry, even when its
// confidence is lower. Version information is monotonically additive;
// confidence is not.
func (s *Stack) Add(cat Category, tech Technology) {
	entries := s.categories[cat]
	for i, existing := range entries {
		if existing.ID != tech.ID {
			continue
		}
		if tech.Confidence > existing.Confidence {
			if tech.Version == "" {
				tech.Version = existing.Version
			}
			entries[i] = tech
		} else if existing.Version == "" && tech.Version != "" {
			entries[i].Version = tech.Version
		}
		return
	}
	s.categories[cat] = append(entries, tech)
}

// Get returns the technology with the given id in cat, if present.
func (s *Stack) Get(cat Category, id string) (Technology, bool) {
	for _, t := range s.categories[cat] {
		if t.ID == id {
			return t, true
		}
	}
	return Technology{}, false
}

// Category returns the technologies detected in cat, in insertion order.
// The returned slice is owned by the stack; callers must not mutate it.
func (s *Stack) Category(cat Category) []Technology {
	return s.categories[cat]
}

// All returns every detected technology flattened across categories, in
// canonical category order.
func (s *Stack) All() []Technology {
	var out []Technology
	for _, cat := range Categories {
		out = append(out, s.categories[cat]...)
	}
	return out
}

// Len returns the total number of detected technologies.
func (s *Stack) Len() int {
	n := 0
	for _, entries := range s.categories {
		n += len(entries)
	}
	return n
}

// IsEmpty reports whether the stack holds no detections at all.
func (s *Stack) IsEmpty() bool { return s.Len() == 0 }

// MarshalCategories returns the stack as a plain category-keyed map,
// suitable for JSON output on the tool surface.
func (s *Stack) MarshalCategories() map[Category][]Technology {
	out := make(map[Category][]Technology, len(Categories))
	for _, cat := range Categories {
		out[cat] = append([]Technology(nil), s.categories[cat]...)
	}
	return out
}
