// Package cli implements the mother-skills command-line interface.
//
// This package provides commands for detecting a project's technology
// stack, browsing the skill catalog, syncing skills into the installation
// directory, and running the MCP stdio server. The CLI is built using
// cobra and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - detect: Report the detected technology stack of a project
//   - catalog: Browse the aggregated skill catalog and bundles
//   - sync: Preview and apply skill changes for a project
//   - install/uninstall/list: Manage individual skills
//   - cache: Manage the catalog cache
//   - serve: Run the MCP stdio server
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dmgrok/mcp-mother-skills/internal/config"
	"github.com/dmgrok/mcp-mother-skills/pkg/buildinfo"
	"github.com/dmgrok/mcp-mother-skills/pkg/catalog"
	"github.com/dmgrok/mcp-mother-skills/pkg/detect"
	"github.com/dmgrok/mcp-mother-skills/pkg/match"
	"github.com/dmgrok/mcp-mother-skills/pkg/skills"
	"github.com/dmgrok/mcp-mother-skills/pkg/stack"
	"github.com/dmgrok/mcp-mother-skills/pkg/sync"
)

// appName is the application name used for directories and display.
const appName = "mother-skills"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands
// registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Detects project tech stacks and syncs matching skills",
		Long:         `mother-skills detects the technology stack of a project, matches it against a versioned skill catalog, and installs the matching skills (with their dependencies) into a local skills directory.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/mother-skills/config.toml)")

	root.AddCommand(c.detectCommand())
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.syncCommand())
	root.AddCommand(c.installCommand())
	root.AddCommand(c.uninstallCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the configuration once and caches it for the rest of the
// invocation.
func (c *CLI) config() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	c.cfg = &cfg
	return cfg, nil
}

// newStore creates the catalog store from the loaded configuration.
func (c *CLI) newStore() (*catalog.Store, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	return catalog.NewStore(cfg.CacheDir, cfg.Sources,
		catalog.WithTTL(cfg.TTL()),
		catalog.WithBundleURL(cfg.BundleURL),
		catalog.WithLogger(c.Logger.Warnf),
	)
}

// newMaterializer creates the skills materializer from the loaded
// configuration.
func (c *CLI) newMaterializer() (*skills.Materializer, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	return skills.NewMaterializer(cfg.SkillsDir, skills.WithLogger(c.Logger.Debugf))
}

// newPipeline assembles the detector tiers for dir. The dependency-graph
// tier only runs when a GitHub repository is configured.
func (c *CLI) newPipeline() (*detect.Pipeline, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}

	detectors := []detect.Detector{
		detect.NewManifestDetector(),
		detect.NewAnalyzerDetector(),
	}
	if cfg.GitHub.Repository != "" {
		dg, err := detect.NewDepGraphDetector(cfg.GitHub.Repository,
			detect.WithDepGraphToken(cfg.GitHub.Token))
		if err != nil {
			return nil, err
		}
		detectors = append(detectors, dg)
	}
	detectors = append(detectors, detect.NewReadmeDetector())

	return detect.NewPipeline(detectors, detect.WithPipelineLogger(c.Logger.Debugf)), nil
}

// newMatcher creates a matcher over the given catalog with the configured
// include and exclude lists applied.
func (c *CLI) newMatcher(catalogSkills []catalog.Skill) (*match.Matcher, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	return match.New(catalogSkills,
		match.WithAlwaysInclude(cfg.AlwaysInclude),
		match.WithAlwaysExclude(cfg.AlwaysExclude),
		match.WithLogger(c.Logger.Warnf),
	), nil
}

// newEngine creates a sync engine over a fresh in-memory session store.
func (c *CLI) newEngine(mat sync.Materializer) (*sync.Engine, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	return sync.NewEngine(sync.NewMemoryStore(), mat,
		sync.WithAutoRemove(cfg.AutoRemove),
		sync.WithEngineLogger(c.Logger.Warnf),
	), nil
}

// detectStack runs the detection pipeline against dir with a spinner.
func (c *CLI) detectStack(ctx context.Context, dir string) (*stack.Stack, detect.Report, error) {
	pipeline, err := c.newPipeline()
	if err != nil {
		return nil, detect.Report{}, err
	}
	spinner := newSpinnerWithContext(ctx, "Detecting technology stack...")
	spinner.Start()
	st, report := pipeline.Run(ctx, dir)
	spinner.Stop()
	return st, report, nil
}

// cacheDir returns the catalog cache directory, honoring XDG_CACHE_HOME.
func (c *CLI) cacheDir() (string, error) {
	if cfg, err := c.config(); err == nil && cfg.CacheDir != "" {
		return cfg.CacheDir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName, "catalog"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName, "catalog"), nil
}
