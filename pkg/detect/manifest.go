package detect

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/dmgrok/mcp-mother-skills/pkg/stack"
)

// ManifestDetector is the manifest-file evidence tier. It reads the
// package manager manifests present at the project root and maps their
// declared dependencies to technologies.
//
// Manifest evidence is the strongest signal: a dependency declared in
// package.json scores 0.95, while presence-only signals (the manifest file
// itself, infrastructure files) score 0.9.
type ManifestDetector struct{}

// NewManifestDetector creates the manifest tier.
func NewManifestDetector() *ManifestDetector { return &ManifestDetector{} }

// Name returns the tier identifier.
func (d *ManifestDetector) Name() string { return "manifest" }

// Detect scans dir for known manifest files.
func (d *ManifestDetector) Detect(ctx context.Context, dir string) ([]Detection, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("project directory: %w", err)
	}

	var out []Detection
	parsers := []struct {
		file  string
		parse func(path string) ([]Detection, error)
	}{
		{"package.json", parsePackageJSON},
		{"go.mod", parseGoMod},
		{"requirements.txt", parseRequirements},
		{"pyproject.toml", parsePyProject},
		{"Cargo.toml", parseCargoToml},
		{"Gemfile", parseGemfile},
		{"composer.json", parseComposerJSON},
		{"pom.xml", parsePomXML},
	}

	for _, p := range parsers {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		path := filepath.Join(dir, p.file)
		if _, err := os.Stat(path); err != nil {
			continue
		}

		if lang, ok := manifestLanguages[strings.ToLower(p.file)]; ok {
			out = append(out, presenceDetection(lang, p.file))
		}

		detections, err := p.parse(path)
		if err != nil {
			// One unreadable manifest should not hide the others.
			continue
		}
		out = append(out, detections...)
	}

	out = append(out, detectInfraFiles(dir)...)
	return out, nil
}

// presenceDetection builds a detection for a manifest or infra file whose
// mere existence implies a technology.
func presenceDetection(r rule, file string) Detection {
	return Detection{
		Category: r.Category,
		Tech: stack.Technology{
			ID:         r.ID,
			Name:       r.Name,
			Confidence: ConfidenceManifestWeak,
			Source:     file,
		},
	}
}

// depDetection builds a detection for one declared dependency, if the
// dependency name is in the rules table.
func depDetection(name, version, file string) (Detection, bool) {
	r, ok := packageRules[name]
	if !ok {
		return Detection{}, false
	}
	return Detection{
		Category: r.Category,
		Tech: stack.Technology{
			ID:         r.ID,
			Name:       r.Name,
			Version:    cleanVersion(version),
			Confidence: ConfidenceManifest,
			Source:     fmt.Sprintf("%s (%s)", file, name),
		},
	}, true
}

// cleanVersion strips range operators from a declared version constraint,
// keeping only the concrete part ("^18.2.0" -> "18.2.0"). Constraints that
// carry no concrete version (e.g. "*") yield an empty string.
func cleanVersion(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimLeft(v, "^~>=< ")
	if v == "*" || v == "latest" {
		return ""
	}
	if i := strings.IndexAny(v, " ,|"); i >= 0 {
		v = v[:i]
	}
	return v
}

// ----------------------------------------------------------------------------
// package.json

type packageFile struct {
	Name            string            `json:"name"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func parsePackageJSON(path string) ([]Detection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pkg packageFile
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}

	var out []Detection
	for _, deps := range []map[string]string{pkg.Dependencies, pkg.DevDependencies} {
		for name, version := range deps {
			if det, ok := depDetection(name, version, "package.json"); ok {
				out = append(out, det)
			}
		}
	}
	return out, nil
}

// ----------------------------------------------------------------------------
// go.mod

var goModRequire = regexp.MustCompile(`^\s*([\w./-]+)\s+(v[\w.+-]+)`)

func parseGoMod(path string) ([]Detection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var out []Detection
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimPrefix(strings.TrimSpace(line), "require ")
		m := goModRequire.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if det, ok := depDetection(m[1], strings.TrimPrefix(m[2], "v"), "go.mod"); ok {
			out = append(out, det)
		}
	}
	return out, nil
}

// ----------------------------------------------------------------------------
// requirements.txt

var requirementLine = regexp.MustCompile(`^([A-Za-z0-9._-]+)\s*(?:[=<>~!]=?\s*([\w.]+))?`)

func parseRequirements(path string) ([]Detection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var out []Detection
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		m := requirementLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if det, ok := depDetection(strings.ToLower(m[1]), m[2], "requirements.txt"); ok {
			out = append(out, det)
		}
	}
	return out, nil
}

// ----------------------------------------------------------------------------
// pyproject.toml

type pyProjectFile struct {
	Project struct {
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Dependencies map[string]any `toml:"dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

func parsePyProject(path string) ([]Detection, error) {
	var pf pyProjectFile
	if _, err := toml.DecodeFile(path, &pf); err != nil {
		return nil, err
	}

	var out []Detection
	for _, spec := range pf.Project.Dependencies {
		m := requirementLine.FindStringSubmatch(strings.TrimSpace(spec))
		if m == nil {
			continue
		}
		if det, ok := depDetection(strings.ToLower(m[1]), m[2], "pyproject.toml"); ok {
			out = append(out, det)
		}
	}
	for name, spec := range pf.Tool.Poetry.Dependencies {
		version := ""
		if s, ok := spec.(string); ok {
			version = s
		}
		if det, ok := depDetection(strings.ToLower(name), version, "pyproject.toml"); ok {
			out = append(out, det)
		}
	}
	return out, nil
}

// ----------------------------------------------------------------------------
// Cargo.toml

type cargoFile struct {
	Dependencies map[string]any `toml:"dependencies"`
}

func parseCargoToml(path string) ([]Detection, error) {
	var cf cargoFile
	if _, err := toml.DecodeFile(path, &cf); err != nil {
		return nil, err
	}

	var out []Detection
	for name, spec := range cf.Dependencies {
		version := ""
		switch s := spec.(type) {
		case string:
			version = s
		case map[string]any:
			if v, ok := s["version"].(string); ok {
				version = v
			}
		}
		if det, ok := depDetection(name, version, "Cargo.toml"); ok {
			out = append(out, det)
		}
	}
	return out, nil
}

// ----------------------------------------------------------------------------
// Gemfile

var gemLine = regexp.MustCompile(`^\s*gem\s+['"]([\w-]+)['"](?:\s*,\s*['"]([^'"]+)['"])?`)

func parseGemfile(path string) ([]Detection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var out []Detection
	for _, line := range strings.Split(string(data), "\n") {
		m := gemLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if det, ok := depDetection(m[1], m[2], "Gemfile"); ok {
			out = append(out, det)
		}
	}
	return out, nil
}

// ----------------------------------------------------------------------------
// composer.json

type composerFile struct {
	Require    map[string]string `json:"require"`
	RequireDev map[string]string `json:"require-dev"`
}

func parseComposerJSON(path string) ([]Detection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cf composerFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	var out []Detection
	for _, deps := range []map[string]string{cf.Require, cf.RequireDev} {
		for name, version := range deps {
			if det, ok := depDetection(name, version, "composer.json"); ok {
				out = append(out, det)
			}
		}
	}
	return out, nil
}

// ----------------------------------------------------------------------------
// pom.xml

type pomFile struct {
	Dependencies struct {
		Dependency []struct {
			ArtifactID string `xml:"artifactId"`
			Version    string `xml:"version"`
		} `xml:"dependency"`
	} `xml:"dependencies"`
}

func parsePomXML(path string) ([]Detection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pf pomFile
	if err := xml.Unmarshal(data, &pf); err != nil {
		return nil, err
	}

	var out []Detection
	for _, dep := range pf.Dependencies.Dependency {
		if det, ok := depDetection(dep.ArtifactID, dep.Version, "pom.xml"); ok {
			out = append(out, det)
		}
	}
	return out, nil
}

// ----------------------------------------------------------------------------
// Infrastructure files

func detectInfraFiles(dir string) []Detection {
	var out []Detection

	infra := []struct {
		file string
		rule rule
	}{
		{"Dockerfile", rule{stack.CategoryInfrastructure, "docker", "Docker"}},
		{"docker-compose.yml", rule{stack.CategoryInfrastructure, "docker-compose", "Docker Compose"}},
		{"docker-compose.yaml", rule{stack.CategoryInfrastructure, "docker-compose", "Docker Compose"}},
		{"main.tf", rule{stack.CategoryInfrastructure, "terraform", "Terraform"}},
		{"serverless.yml", rule{stack.CategoryInfrastructure, "serverless", "Serverless Framework"}},
	}
	for _, entry := range infra {
		if _, err := os.Stat(filepath.Join(dir, entry.file)); err == nil {
			out = append(out, presenceDetection(entry.rule, entry.file))
		}
	}

	if entries, err := os.ReadDir(filepath.Join(dir, ".github", "workflows")); err == nil && len(entries) > 0 {
		out = append(out, presenceDetection(
			rule{stack.CategoryInfrastructure, "github-actions", "GitHub Actions"},
			".github/workflows"))
	}
	return out
}
