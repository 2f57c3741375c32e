package detect

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/dmgrok/mcp-mother-skills/pkg/stack"
)

// ReadmeDetector is the free-text documentation tier. It scans README
// files for technology mentions. Documentation mentions are the weakest
// evidence (0.6): a README saying "migrating away from Angular" still
// mentions Angular.
type ReadmeDetector struct {
	maxBytes int64
}

const readmeMaxBytes = 256 * 1024

// readmeNames are the filenames checked, in order; the first one present
// is scanned.
var readmeNames = []string{"README.md", "README.rst", "README.txt", "README", "readme.md"}

// NewReadmeDetector creates the documentation tier.
func NewReadmeDetector() *ReadmeDetector {
	return &ReadmeDetector{maxBytes: readmeMaxBytes}
}

// Name returns the tier identifier.
func (d *ReadmeDetector) Name() string { return "readme" }

// Detect scans the first README found in dir for keyword mentions.
func (d *ReadmeDetector) Detect(ctx context.Context, dir string) ([]Detection, error) {
	path, name := d.findReadme(dir)
	if path == "" {
		return nil, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > d.maxBytes {
		data = data[:d.maxBytes]
	}
	text := strings.ToLower(string(data))

	// Keywords are visited in sorted order so that aliased ids always
	// report the same winning keyword and detections keep a stable order.
	keywords := make([]string, 0, len(readmeKeywords))
	for keyword := range readmeKeywords {
		keywords = append(keywords, keyword)
	}
	sort.Strings(keywords)

	var out []Detection
	seen := make(map[string]bool)
	for _, keyword := range keywords {
		r := readmeKeywords[keyword]
		if seen[r.ID] || !containsWord(text, keyword) {
			continue
		}
		seen[r.ID] = true
		out = append(out, Detection{
			Category: r.Category,
			Tech: stack.Technology{
				ID:         r.ID,
				Name:       r.Name,
				Confidence: ConfidenceReadme,
				Source:     name + " mention (" + keyword + ")",
			},
		})
	}
	return out, nil
}

func (d *ReadmeDetector) findReadme(dir string) (path, name string) {
	for _, candidate := range readmeNames {
		p := filepath.Join(dir, candidate)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, candidate
		}
	}
	return "", ""
}

// containsWord reports whether text contains keyword on word boundaries,
// so "express" does not match "expression".
func containsWord(text, keyword string) bool {
	return wordPatterns[keyword].MatchString(text)
}

// wordPatterns holds one precompiled boundary pattern per keyword.
var wordPatterns = func() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(readmeKeywords))
	for keyword := range readmeKeywords {
		patterns[keyword] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
	}
	return patterns
}()
