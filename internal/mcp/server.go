// Package mcp exposes the detection, catalog, and sync engine as a Model
// Context Protocol stdio server.
//
// Each caller-facing operation maps to one MCP tool. The server owns the
// session store, so a preview issued through one tool call can be
// confirmed by a later call within the same process lifetime. Sessions are
// not persisted; a restart invalidates pending ids.
package mcp

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/dmgrok/mcp-mother-skills/internal/config"
	"github.com/dmgrok/mcp-mother-skills/pkg/buildinfo"
	"github.com/dmgrok/mcp-mother-skills/pkg/catalog"
	"github.com/dmgrok/mcp-mother-skills/pkg/detect"
	"github.com/dmgrok/mcp-mother-skills/pkg/match"
	"github.com/dmgrok/mcp-mother-skills/pkg/skills"
	"github.com/dmgrok/mcp-mother-skills/pkg/sync"
)

// Server wires the engine components behind an MCP stdio transport.
type Server struct {
	mcpServer *mcpserver.MCPServer

	cfg    config.Config
	store  *catalog.Store
	mat    *skills.Materializer
	engine *sync.Engine
	logger *log.Logger
}

// NewServer assembles all engine components from the configuration and
// registers the tool surface.
func NewServer(cfg config.Config, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}

	store, err := catalog.NewStore(cfg.CacheDir, cfg.Sources,
		catalog.WithTTL(cfg.TTL()),
		catalog.WithBundleURL(cfg.BundleURL),
		catalog.WithLogger(logger.Warnf),
	)
	if err != nil {
		return nil, err
	}
	mat, err := skills.NewMaterializer(cfg.SkillsDir, skills.WithLogger(logger.Debugf))
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:    cfg,
		store:  store,
		mat:    mat,
		logger: logger,
		engine: sync.NewEngine(sync.NewMemoryStore(), mat,
			sync.WithAutoRemove(cfg.AutoRemove),
			sync.WithEngineLogger(logger.Warnf),
		),
	}

	s.mcpServer = mcpserver.NewMCPServer(
		"mother-skills",
		buildinfo.Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
		mcpserver.WithInstructions("Detect a project's technology stack, browse the skill catalog, and sync matching skills into the local skills directory. Use preview_skill_sync followed by confirm_skill_sync for a reviewable two-step sync, or sync_skills to apply immediately."),
	)
	s.registerTools()
	return s, nil
}

// ServeStdio serves MCP over stdin/stdout until the stream closes or ctx
// is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	stdio := mcpserver.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(s.logger.StandardLog())
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// newPipeline assembles the detector tiers, mirroring the CLI wiring.
func (s *Server) newPipeline() (*detect.Pipeline, error) {
	detectors := []detect.Detector{
		detect.NewManifestDetector(),
		detect.NewAnalyzerDetector(),
	}
	if s.cfg.GitHub.Repository != "" {
		dg, err := detect.NewDepGraphDetector(s.cfg.GitHub.Repository,
			detect.WithDepGraphToken(s.cfg.GitHub.Token))
		if err != nil {
			return nil, err
		}
		detectors = append(detectors, dg)
	}
	detectors = append(detectors, detect.NewReadmeDetector())
	return detect.NewPipeline(detectors, detect.WithPipelineLogger(s.logger.Debugf)), nil
}

// newMatcher creates a matcher with the configured include and exclude
// lists.
func (s *Server) newMatcher(catalogSkills []catalog.Skill) *match.Matcher {
	return match.New(catalogSkills,
		match.WithAlwaysInclude(s.cfg.AlwaysInclude),
		match.WithAlwaysExclude(s.cfg.AlwaysExclude),
		match.WithLogger(s.logger.Warnf),
	)
}
