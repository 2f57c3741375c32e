package detect

import (
	"context"
	"time"

	"github.com/dmgrok/mcp-mother-skills/pkg/observability"
	"github.com/dmgrok/mcp-mother-skills/pkg/stack"
)

// Pipeline runs detector tiers sequentially and merges their detections
// into one canonical stack. Tiers are independent; their relative order
// does not affect the merged result.
type Pipeline struct {
	detectors []Detector
	logger    func(string, ...any)
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithPipelineLogger sets a callback for tier failure warnings.
func WithPipelineLogger(logger func(string, ...any)) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline creates a pipeline over the given detectors.
func NewPipeline(detectors []Detector, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		detectors: detectors,
		logger:    func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes every tier against dir and merges the results. A failed
// tier is recorded in the report and skipped; the merged stack always
// reflects exactly the tiers that succeeded.
func (p *Pipeline) Run(ctx context.Context, dir string) (*stack.Stack, Report) {
	merged := stack.New()
	report := Report{}

	for _, d := range p.detectors {
		observability.Detector().OnTierStart(ctx, d.Name())
		start := time.Now()

		detections, err := d.Detect(ctx, dir)
		observability.Detector().OnTierComplete(ctx, d.Name(), len(detections), time.Since(start), err)

		result := TierResult{Tier: d.Name(), Detections: len(detections)}
		if err != nil {
			result.Error = err.Error()
			result.Detections = 0
			p.logger("detector tier %s failed: %v", d.Name(), err)
			report.Tiers = append(report.Tiers, result)
			continue
		}

		for _, det := range detections {
			merged.Add(det.Category, det.Tech)
		}
		report.Tiers = append(report.Tiers, result)
	}

	observability.Detector().OnMerge(ctx, merged.Len())
	return merged, report
}
