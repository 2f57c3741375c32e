package skills

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmgrok/mcp-mother-skills/pkg/catalog"
	"github.com/dmgrok/mcp-mother-skills/pkg/errors"
	"github.com/dmgrok/mcp-mother-skills/pkg/httputil"
)

const fetchTimeout = 30 * time.Second

// Materializer writes skills into the installation directory and removes
// them again. Both directions are idempotent: installing overwrites any
// previous content, uninstalling a missing skill is a no-op.
type Materializer struct {
	dir    string
	client *http.Client
	logger func(string, ...any)
}

// MaterializerOption configures a Materializer.
type MaterializerOption func(*Materializer)

// WithHTTPClient overrides the fetch client.
func WithHTTPClient(client *http.Client) MaterializerOption {
	return func(m *Materializer) {
		if client != nil {
			m.client = client
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger func(string, ...any)) MaterializerOption {
	return func(m *Materializer) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMaterializer creates a materializer rooted at dir. If dir is empty,
// ~/.claude/skills is used. The directory is created if absent.
func NewMaterializer(dir string, opts ...MaterializerOption) (*Materializer, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".claude", "skills")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	m := &Materializer{
		dir:    dir,
		client: &http.Client{Timeout: fetchTimeout},
		logger: func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Dir returns the installation directory.
func (m *Materializer) Dir() string { return m.dir }

// List returns the skills currently installed under the materializer's
// directory.
func (m *Materializer) List() ([]Installed, error) { return List(m.dir) }

// Install writes the skill's primary document and declared resources under
// its own subdirectory, fetched from the catalog entry's source location.
// Existing files are overwritten.
func (m *Materializer) Install(ctx context.Context, skill catalog.Skill) error {
	if err := errors.ValidateSkillName(skill.Name); err != nil {
		return err
	}
	if skill.Location == "" {
		return errors.New(errors.ErrCodeInvalidSkill, "skill %s has no source location", skill.Name)
	}

	target := filepath.Join(m.dir, skill.Name)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, err, "create skill directory %s", target)
	}

	files := append([]string{Document}, skill.Resources...)
	for _, name := range files {
		rel, err := safeRelPath(name)
		if err != nil {
			return err
		}
		data, err := m.fetch(ctx, joinLocation(skill.Location, rel))
		if err != nil {
			return errors.Wrap(errors.ErrCodeSourceUnavailable, err, "fetch %s for %s", rel, skill.Name)
		}
		dest := filepath.Join(target, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeWriteFailed, err, "create resource directory for %s", rel)
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeWriteFailed, err, "write %s for %s", rel, skill.Name)
		}
		m.logger("wrote %s", dest)
	}
	return nil
}

// Uninstall removes the named skill's directory. A missing directory is
// not an error.
func (m *Materializer) Uninstall(ctx context.Context, name string) error {
	if err := errors.ValidateSkillName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(m.dir, name))
}

// fetch retrieves one skill file. http(s) locations get retried on
// transient failures; file locations are read directly, which supports
// local catalog mirrors.
func (m *Materializer) fetch(ctx context.Context, location string) ([]byte, error) {
	if after, ok := strings.CutPrefix(location, "file://"); ok {
		return os.ReadFile(filepath.FromSlash(after))
	}

	var data []byte
	err := httputil.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return err
		}
		resp, err := m.client.Do(req)
		if err != nil {
			return &httputil.RetryableError{Err: err}
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode >= 500:
			return &httputil.RetryableError{Err: fmt.Errorf("status %d from %s", resp.StatusCode, location)}
		default:
			return fmt.Errorf("status %d from %s", resp.StatusCode, location)
		}

		data, err = io.ReadAll(resp.Body)
		return err
	})
	return data, err
}

// safeRelPath normalizes a declared resource path and rejects anything
// escaping the skill directory.
func safeRelPath(name string) (string, error) {
	cleaned := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	if cleaned == "." || cleaned == ".." ||
		strings.HasPrefix(cleaned, "../") || strings.HasPrefix(cleaned, "/") {
		return "", errors.New(errors.ErrCodeInvalidSkill, "invalid resource path: %s", name)
	}
	return cleaned, nil
}

// joinLocation appends a relative file path to a skill source location.
func joinLocation(location, rel string) string {
	if u, err := url.Parse(location); err == nil && u.Scheme != "" {
		u.Path = path.Join(u.Path, rel)
		return u.String()
	}
	return strings.TrimSuffix(location, "/") + "/" + rel
}
