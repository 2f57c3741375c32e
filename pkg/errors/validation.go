package errors

import (
	"strings"
	"unicode"
)

// ValidateSkillName validates a skill name for safety and correctness.
// Skill names become directory names under the installation directory, so
// anything that could escape that directory is rejected.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateSkillName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidSkill, "skill name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidSkill, "skill name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidSkill, "skill name contains control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidSkill, "skill name contains invalid sequence: %q", pattern)
		}
	}

	return nil
}

// ValidateSourceURL performs a shallow sanity check on a catalog source URL.
// Full URL parsing happens at fetch time; this only rejects obviously
// unusable values early, before they are written into cache keys.
func ValidateSourceURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return New(ErrCodeInvalidSource, "source URL cannot be empty")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") && !strings.HasPrefix(raw, "file://") {
		return New(ErrCodeInvalidSource, "source URL must use http, https, or file scheme: %s", raw)
	}
	return nil
}
