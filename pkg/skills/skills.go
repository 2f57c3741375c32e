// Package skills materializes catalog skills on disk and discovers what is
// currently installed.
//
// The installation directory is the source of truth: one subdirectory per
// skill holding its primary SKILL.md document plus optional resource files.
// There is no separate index; discovery is a directory listing that reads
// each skill's own declared metadata back out of its document.
package skills

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Document is the primary file every installed skill carries.
const Document = "SKILL.md"

// Installed is one skill found in the installation directory.
type Installed struct {
	// Name is the skill's declared name, falling back to its directory
	// name when the document carries no metadata.
	Name string `json:"name"`

	// Version is the declared version, empty when absent.
	Version string `json:"version,omitempty"`

	// Description is the declared summary, empty when absent.
	Description string `json:"description,omitempty"`

	// InstalledAt is the document's modification time.
	InstalledAt time.Time `json:"installedAt"`

	// Path is the skill's directory.
	Path string `json:"path"`
}

// frontmatter is the YAML header of a SKILL.md document.
type frontmatter struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
}

// List scans dir and returns one entry per immediate subdirectory that
// contains a SKILL.md document. A missing installation directory yields an
// empty list, not an error.
func List(dir string) ([]Installed, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var installed []Installed
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		docPath := filepath.Join(path, Document)
		info, err := os.Stat(docPath)
		if err != nil {
			continue
		}

		skill := Installed{
			Name:        entry.Name(),
			InstalledAt: info.ModTime(),
			Path:        path,
		}
		if data, err := os.ReadFile(docPath); err == nil {
			if meta, ok := parseFrontmatter(data); ok {
				if meta.Name != "" {
					skill.Name = meta.Name
				}
				skill.Version = meta.Version
				skill.Description = meta.Description
			}
		}
		installed = append(installed, skill)
	}
	return installed, nil
}

// parseFrontmatter extracts the YAML header delimited by "---" lines at the
// top of a skill document.
func parseFrontmatter(data []byte) (frontmatter, bool) {
	var meta frontmatter

	text := strings.ReplaceAll(string(bytes.TrimLeft(data, "\xef\xbb\xbf")), "\r\n", "\n")
	if !strings.HasPrefix(text, "---\n") {
		return meta, false
	}
	rest := text[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return meta, false
	}
	if err := yaml.Unmarshal([]byte(rest[:end]), &meta); err != nil {
		return meta, false
	}
	return meta, true
}
