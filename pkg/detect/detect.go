// Package detect discovers a project's technology stack by running
// independent detector tiers over distinct evidence sources and merging
// their output into one canonical stack.
//
// Tiers never see each other's output and a failing tier never aborts the
// pipeline; it simply contributes nothing and is reported as failed in the
// run report. Confidence scores are fixed by tier convention: manifest file
// matches score highest, static-analysis matches slightly lower, remote
// dependency-graph matches 0.95, and free-text documentation mentions 0.6.
package detect

import (
	"context"

	"github.com/dmgrok/mcp-mother-skills/pkg/stack"
)

// Tier confidence conventions. Free-text mentions score lowest since they
// are unreliable signals.
const (
	ConfidenceManifest     = 0.95
	ConfidenceManifestWeak = 0.9
	ConfidenceAnalysis     = 0.9
	ConfidenceAnalysisWeak = 0.85
	ConfidenceDepGraph     = 0.95
	ConfidenceReadme       = 0.6
)

// Detection is one technology guess produced by a detector tier.
type Detection struct {
	Category stack.Category   `json:"category"`
	Tech     stack.Technology `json:"technology"`
}

// Detector is one independent evidence tier.
type Detector interface {
	// Name returns the tier identifier (e.g. "manifest", "readme").
	Name() string

	// Detect scans the project directory and returns zero or more
	// technology guesses. An error means the whole tier failed; partial
	// results alongside an error are discarded.
	Detect(ctx context.Context, dir string) ([]Detection, error)
}

// TierResult records the outcome of one tier in a detection run.
type TierResult struct {
	Tier       string `json:"tier"`
	Detections int    `json:"detections"`
	Error      string `json:"error,omitempty"`
}

// Failed reports whether the tier contributed nothing due to an error.
func (r TierResult) Failed() bool { return r.Error != "" }

// Report aggregates per-tier results for one detection run, preserving
// failure visibility without aborting the pipeline.
type Report struct {
	Tiers []TierResult `json:"tiers"`
}

// Failures returns the results of tiers that failed.
func (r Report) Failures() []TierResult {
	var out []TierResult
	for _, t := range r.Tiers {
		if t.Failed() {
			out = append(out, t)
		}
	}
	return out
}
