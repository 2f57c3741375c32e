package match

import (
	"fmt"
	"strings"
)

// DependencyDecay scales a dependency's confidence relative to the match
// that pulled it in.
const DependencyDecay = 0.8

// Resolve expands matches across declared skill dependencies using a
// work-list closure. Each popped match contributes its dependency names;
// a name is looked up in the catalog, added with dependency provenance and
// decayed confidence, and queued for further expansion.
//
// Resolution is keyed by lowercase skill name. The resolved set is checked
// before any enqueue, so cyclic dependency declarations terminate with each
// name appearing exactly once. Dependency names absent from the catalog are
// dropped silently. Excluded names are filtered from the final set even
// when a dependency reintroduces them.
func (m *Matcher) Resolve(matches []Match) []Match {
	resolved := make(map[string]bool, len(matches))
	for _, match := range matches {
		resolved[strings.ToLower(match.Skill.Name)] = true
	}

	queue := append([]Match(nil), matches...)
	out := make([]Match, 0, len(matches))

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		out = append(out, current)

		for _, dep := range current.Skill.Dependencies {
			key := strings.ToLower(dep)
			if resolved[key] {
				continue
			}
			skill, ok := m.index[key]
			if !ok {
				m.logger("dependency %s of %s not in catalog, skipping", dep, current.Skill.Name)
				continue
			}
			resolved[key] = true
			queue = append(queue, Match{
				Skill:      skill,
				MatchedBy:  fmt.Sprintf("dependency of %s", current.Skill.Name),
				Confidence: current.Confidence * DependencyDecay,
				Provenance: ProvenanceDependency,
			})
		}
	}

	if len(m.exclude) == 0 {
		return out
	}
	kept := out[:0]
	for _, match := range out {
		if m.exclude[strings.ToLower(match.Skill.Name)] {
			m.logger("excluding %s from resolved set", match.Skill.Name)
			continue
		}
		kept = append(kept, match)
	}
	return kept
}
