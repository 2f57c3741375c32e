package stack

import (
	"reflect"
	"testing"
)

func TestAdd_Insert(t *testing.T) {
	s := New()
	s.Add(CategoryFramework, Technology{ID: "react", Confidence: 0.9, Source: "package.json (react)"})

	got, ok := s.Get(CategoryFramework, "react")
	if !ok {
		t.Fatal("expected react to be present")
	}
	if got.Confidence != 0.9 {
		t.Errorf("got confidence %v, want 0.9", got.Confidence)
	}
}

func TestAdd_ConfidenceWinsVersionUnions(t *testing.T) {
	tests := []struct {
		name        string
		first       Technology
		second      Technology
		wantConf    float64
		wantVersion string
	}{
		{
			name:        "low confidence with version, then high confidence without",
			first:       Technology{ID: "react", Version: "18.2.0", Confidence: 0.6, Source: "README.md"},
			second:      Technology{ID: "react", Confidence: 0.95, Source: "package.json (react)"},
			wantConf:    0.95,
			wantVersion: "18.2.0",
		},
		{
			name:        "high confidence without version, then low confidence with",
			first:       Technology{ID: "react", Confidence: 0.95, Source: "package.json (react)"},
			second:      Technology{ID: "react", Version: "18.2.0", Confidence: 0.6, Source: "README.md"},
			wantConf:    0.95,
			wantVersion: "18.2.0",
		},
		{
			name:        "higher confidence replaces source",
			first:       Technology{ID: "react", Version: "17.0.0", Confidence: 0.6, Source: "README.md"},
			second:      Technology{ID: "react", Version: "18.2.0", Confidence: 0.95, Source: "package.json (react)"},
			wantConf:    0.95,
			wantVersion: "18.2.0",
		},
		{
			name:        "lower confidence never downgrades version",
			first:       Technology{ID: "react", Version: "18.2.0", Confidence: 0.95, Source: "package.json (react)"},
			second:      Technology{ID: "react", Version: "17.0.0", Confidence: 0.6, Source: "README.md"},
			wantConf:    0.95,
			wantVersion: "18.2.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			s.Add(CategoryFramework, tt.first)
			s.Add(CategoryFramework, tt.second)

			if got := len(s.Category(CategoryFramework)); got != 1 {
				t.Fatalf("got %d entries, want 1", got)
			}
			got, _ := s.Get(CategoryFramework, "react")
			if got.Confidence != tt.wantConf {
				t.Errorf("got confidence %v, want %v", got.Confidence, tt.wantConf)
			}
			if got.Version != tt.wantVersion {
				t.Errorf("got version %q, want %q", got.Version, tt.wantVersion)
			}
		})
	}
}

func TestAdd_Idempotent(t *testing.T) {
	tech := Technology{ID: "typescript", Version: "5.4.0", Confidence: 0.9, Source: "package.json (typescript)"}

	once := New()
	once.Add(CategoryLanguage, tech)

	twice := New()
	twice.Add(CategoryLanguage, tech)
	twice.Add(CategoryLanguage, tech)

	if !reflect.DeepEqual(once.Category(CategoryLanguage), twice.Category(CategoryLanguage)) {
		t.Errorf("merging twice differs from merging once:\n once: %+v\ntwice: %+v",
			once.Category(CategoryLanguage), twice.Category(CategoryLanguage))
	}
}

func TestAdd_SameIDDifferentCategories(t *testing.T) {
	s := New()
	s.Add(CategoryDatabase, Technology{ID: "redis", Confidence: 0.9})
	s.Add(CategoryTool, Technology{ID: "redis", Confidence: 0.85})

	if s.Len() != 2 {
		t.Errorf("got %d entries, want 2 (one per category)", s.Len())
	}
}

func TestAll_FlattensInCategoryOrder(t *testing.T) {
	s := New()
	s.Add(CategoryTool, Technology{ID: "docker", Confidence: 0.9})
	s.Add(CategoryLanguage, Technology{ID: "go", Confidence: 0.95})
	s.Add(CategoryFramework, Technology{ID: "gin", Confidence: 0.9})

	var ids []string
	for _, tech := range s.All() {
		ids = append(ids, tech.ID)
	}
	want := []string{"go", "gin", "docker"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("got order %v, want %v", ids, want)
	}
}

func TestIsEmpty(t *testing.T) {
	s := New()
	if !s.IsEmpty() {
		t.Error("new stack should be empty")
	}
	s.Add(CategoryLanguage, Technology{ID: "python", Confidence: 0.9})
	if s.IsEmpty() {
		t.Error("stack with one entry should not be empty")
	}
}
