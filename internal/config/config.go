// Package config loads the mother-skills configuration file.
//
// Configuration lives in a TOML file, by default
// ~/.config/mother-skills/config.toml. A missing file yields the built-in
// defaults; a present but invalid file is an error. The GitHub token can
// also come from the GITHUB_TOKEN environment variable, which takes
// precedence over the file.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/dmgrok/mcp-mother-skills/pkg/catalog"
	"github.com/dmgrok/mcp-mother-skills/pkg/errors"
)

// DefaultRegistryURL is the catalog used when no sources are configured.
const DefaultRegistryURL = "https://raw.githubusercontent.com/dmgrok/mother-skills/main/registry/skills.json"

// DefaultBundleURL is the bundle document matching the default registry.
const DefaultBundleURL = "https://raw.githubusercontent.com/dmgrok/mother-skills/main/registry/bundles.json"

// GitHub configures the remote dependency-graph detector tier.
type GitHub struct {
	// Repository is the "owner/name" slug queried for its SBOM.
	Repository string `toml:"repository"`

	// Token is an optional bearer credential. GITHUB_TOKEN overrides it.
	Token string `toml:"token"`
}

// Config is the full application configuration.
type Config struct {
	// SkillsDir is the installation directory. Empty means
	// ~/.claude/skills.
	SkillsDir string `toml:"skills_dir"`

	// CacheDir is the catalog cache directory. Empty means
	// ~/.cache/mother-skills/catalog.
	CacheDir string `toml:"cache_dir"`

	// TTLDays is the catalog cache lifetime in days. Zero keeps the
	// default of 7.
	TTLDays int `toml:"ttl_days"`

	// Sources are the prioritized catalog locations.
	Sources []catalog.Source `toml:"sources"`

	// BundleURL is the curated bundle document location.
	BundleURL string `toml:"bundle_url"`

	// AlwaysInclude names skills forced into every sync.
	AlwaysInclude []string `toml:"always_include"`

	// AlwaysExclude names skills kept out of every sync.
	AlwaysExclude []string `toml:"always_exclude"`

	// AutoRemove enables removal of installed skills that no longer
	// match. Off by default.
	AutoRemove bool `toml:"auto_remove"`

	// GitHub configures the dependency-graph tier. Optional.
	GitHub GitHub `toml:"github"`
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "mother-skills", "config.toml"), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		TTLDays: 7,
		Sources: []catalog.Source{
			{Name: "official", URL: DefaultRegistryURL, Priority: 1},
		},
		BundleURL: DefaultBundleURL,
	}
}

// Load reads the configuration from path. An empty path means the default
// location; a missing file at either yields Default(). The GITHUB_TOKEN
// environment variable overrides any file-configured token.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return cfg, err
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		applyEnv(&cfg)
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	// File sources replace the defaults entirely rather than merging.
	cfg.Sources = nil
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = Default().Sources
	}
	if cfg.TTLDays <= 0 {
		cfg.TTLDays = Default().TTLDays
	}

	applyEnv(&cfg)
	return cfg, cfg.validate()
}

// TTL returns the catalog cache lifetime as a duration.
func (c Config) TTL() time.Duration {
	return time.Duration(c.TTLDays) * 24 * time.Hour
}

func (c Config) validate() error {
	for _, src := range c.Sources {
		if src.Name == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "catalog source missing a name")
		}
		if err := errors.ValidateSourceURL(src.URL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "catalog source %s", src.Name)
		}
	}
	if c.BundleURL != "" {
		if err := errors.ValidateSourceURL(c.BundleURL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "bundle url")
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.GitHub.Token = token
	}
}
