package detect

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-enry/go-enry/v2"

	"github.com/dmgrok/mcp-mother-skills/pkg/stack"
)

// AnalyzerDetector is the deep static-analysis tier. It classifies source
// files with the enry language analyzer (the Go port of GitHub's linguist)
// and reports the languages that make up a meaningful share of the tree.
//
// Analysis evidence scores slightly below manifest evidence: a dominant
// language scores 0.9, minority languages 0.85.
type AnalyzerDetector struct {
	maxFiles  int
	sampleLen int
}

// Analysis thresholds. A language must account for at least minShare of
// classified files to be reported; majorShare marks it as dominant.
const (
	analyzerMaxFiles  = 2000
	analyzerSampleLen = 16 * 1024
	minShare          = 0.05
	majorShare        = 0.25
)

// skipDirs are directory names never descended into during analysis.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"target":       true,
	".venv":        true,
	"__pycache__":  true,
}

// NewAnalyzerDetector creates the static-analysis tier.
func NewAnalyzerDetector() *AnalyzerDetector {
	return &AnalyzerDetector{maxFiles: analyzerMaxFiles, sampleLen: analyzerSampleLen}
}

// Name returns the tier identifier.
func (d *AnalyzerDetector) Name() string { return "analyzer" }

// Detect walks the project tree and classifies source files by language.
func (d *AnalyzerDetector) Detect(ctx context.Context, dir string) ([]Detection, error) {
	counts := make(map[string]int)
	classified := 0

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() {
			if skipDirs[entry.Name()] || (strings.HasPrefix(entry.Name(), ".") && entry.Name() != "." && path != dir) {
				return filepath.SkipDir
			}
			return nil
		}
		if classified >= d.maxFiles {
			return filepath.SkipAll
		}

		lang := d.classify(path, entry)
		if lang == "" {
			return nil
		}
		counts[lang]++
		classified++
		return nil
	})
	if err != nil {
		return nil, err
	}
	if classified == 0 {
		return nil, nil
	}

	return d.toDetections(counts, classified), nil
}

// classify returns the enry language for one file, or "" when the file is
// not classifiable source code.
func (d *AnalyzerDetector) classify(path string, entry fs.DirEntry) string {
	if enry.IsVendor(path) || enry.IsDotFile(path) {
		return ""
	}

	content, err := readSample(path, d.sampleLen)
	if err != nil {
		return ""
	}
	if enry.IsBinary(content) {
		return ""
	}

	lang := enry.GetLanguage(filepath.Base(path), content)
	if lang == "" || enry.GetLanguageType(lang) != enry.Programming {
		// Keep a couple of non-programming classifications that still
		// signal infrastructure choices.
		if lang != "Dockerfile" && lang != "HCL" && lang != "SQL" {
			return ""
		}
	}
	return lang
}

// toDetections converts language counts into detections, ordered by
// descending share so the merged stack lists dominant languages first.
func (d *AnalyzerDetector) toDetections(counts map[string]int, total int) []Detection {
	langs := make([]string, 0, len(counts))
	for lang := range counts {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool {
		if counts[langs[i]] != counts[langs[j]] {
			return counts[langs[i]] > counts[langs[j]]
		}
		return langs[i] < langs[j]
	})

	var out []Detection
	for _, lang := range langs {
		share := float64(counts[lang]) / float64(total)
		if share < minShare {
			continue
		}
		r, ok := analyzerLanguages[lang]
		if !ok {
			continue
		}

		confidence := ConfidenceAnalysisWeak
		if share >= majorShare {
			confidence = ConfidenceAnalysis
		}
		out = append(out, Detection{
			Category: r.Category,
			Tech: stack.Technology{
				ID:         r.ID,
				Name:       r.Name,
				Confidence: confidence,
				Source:     fmt.Sprintf("static analysis (%d %s files)", counts[lang], lang),
			},
		})
	}
	return out
}

// readSample reads at most n bytes from the head of a file.
func readSample(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := f.Read(buf)
	if err != nil && read == 0 {
		return nil, err
	}
	return buf[:read], nil
}
