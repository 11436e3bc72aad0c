package nzb

import (
	"regexp"
	"strings"
)

const maxNameLength = 200

var unsafeNameChars = regexp.MustCompile(`[\/\\:*?"<>|]+`)

// SafeName replaces filesystem-hostile characters with underscores and caps
// the length. Empty input becomes "unnamed".
func SafeName(name string) string {
	if name == "" {
		name = "unnamed"
	}
	cleaned := unsafeNameChars.ReplaceAllString(name, "_")
	if len(cleaned) > maxNameLength {
		cleaned = cleaned[:maxNameLength]
	}
	return cleaned
}

// FileName derives the output filename for a release, guaranteeing a .nzb
// suffix.
func FileName(release string) string {
	base := release
	if base == "" {
		base = "unnamed"
	}
	if !strings.HasSuffix(strings.ToLower(base), ".nzb") {
		base += ".nzb"
	}
	return SafeName(base)
}
