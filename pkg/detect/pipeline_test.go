package detect

import (
	"context"
	"errors"
	"testing"

	"github.com/dmgrok/mcp-mother-skills/pkg/stack"
)

type stubDetector struct {
	name       string
	detections []Detection
	err        error
}

func (s stubDetector) Name() string { return s.name }
func (s stubDetector) Detect(context.Context, string) ([]Detection, error) {
	return s.detections, s.err
}

func detection(cat stack.Category, id, version string, confidence float64, source string) Detection {
	return Detection{Category: cat, Tech: stack.Technology{
		ID: id, Version: version, Confidence: confidence, Source: source,
	}}
}

func TestPipeline_MergesTiers(t *testing.T) {
	p := NewPipeline([]Detector{
		stubDetector{name: "readme", detections: []Detection{
			detection(stack.CategoryFramework, "react", "18.2.0", ConfidenceReadme, "README.md mention (react)"),
		}},
		stubDetector{name: "manifest", detections: []Detection{
			detection(stack.CategoryFramework, "react", "", ConfidenceManifest, "package.json (react)"),
		}},
	})

	merged, report := p.Run(context.Background(), t.TempDir())

	react, ok := merged.Get(stack.CategoryFramework, "react")
	if !ok {
		t.Fatal("react missing from merged stack")
	}
	if react.Confidence != ConfidenceManifest {
		t.Errorf("got confidence %v, want manifest tier to win", react.Confidence)
	}
	if react.Version != "18.2.0" {
		t.Errorf("got version %q, want version backfilled from weaker tier", react.Version)
	}
	if len(report.Failures()) != 0 {
		t.Errorf("got failures %+v, want none", report.Failures())
	}
}

func TestPipeline_FailedTierContributesNothing(t *testing.T) {
	var warned bool
	p := NewPipeline([]Detector{
		stubDetector{name: "dependency-graph", err: errors.New("network unreachable")},
		stubDetector{name: "manifest", detections: []Detection{
			detection(stack.CategoryLanguage, "go", "", ConfidenceManifestWeak, "go.mod"),
		}},
	}, WithPipelineLogger(func(string, ...any) { warned = true }))

	merged, report := p.Run(context.Background(), t.TempDir())

	if merged.Len() != 1 {
		t.Errorf("got %d technologies, want 1 from the surviving tier", merged.Len())
	}
	failures := report.Failures()
	if len(failures) != 1 || failures[0].Tier != "dependency-graph" {
		t.Fatalf("got failures %+v, want exactly the dependency-graph tier", failures)
	}
	if failures[0].Error == "" {
		t.Error("failure reason must be preserved in the report")
	}
	if !warned {
		t.Error("tier failure should be logged")
	}
}

func TestPipeline_OrderIndependent(t *testing.T) {
	a := stubDetector{name: "a", detections: []Detection{
		detection(stack.CategoryFramework, "react", "18.0.0", 0.6, "README.md"),
	}}
	b := stubDetector{name: "b", detections: []Detection{
		detection(stack.CategoryFramework, "react", "", 0.95, "package.json (react)"),
	}}

	forward, _ := NewPipeline([]Detector{a, b}).Run(context.Background(), t.TempDir())
	backward, _ := NewPipeline([]Detector{b, a}).Run(context.Background(), t.TempDir())

	fr, _ := forward.Get(stack.CategoryFramework, "react")
	br, _ := backward.Get(stack.CategoryFramework, "react")

	if fr.Confidence != br.Confidence || fr.Version != br.Version {
		t.Errorf("tier order changed the result: %+v vs %+v", fr, br)
	}
}

func TestPipeline_EmptyProject(t *testing.T) {
	merged, report := NewPipeline([]Detector{
		NewManifestDetector(),
		NewReadmeDetector(),
	}).Run(context.Background(), t.TempDir())

	if !merged.IsEmpty() {
		t.Errorf("got %d detections for an empty directory, want none", merged.Len())
	}
	if len(report.Tiers) != 2 {
		t.Errorf("got %d tier results, want 2", len(report.Tiers))
	}
}
