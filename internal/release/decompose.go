package release

import (
	"path"
	"strings"
)

// Sentinels used when a path yields no usable release name or category.
const (
	UnnamedRelease = "unnamed"
	Uncategorized  = "uncategorized"
)

// contentRoot is the first segment of the fixed two-level content taxonomy
// (content/<category>/<release>/...).
const contentRoot = "content"

// extractionArtifacts are directory names produced by post-processing tools.
// They sit one level below the real release directory and are never release
// names themselves.
var extractionArtifacts = map[string]struct{}{
	"_extracted_": {},
	"extracted":   {},
	"repack":      {},
}

// Location identifies the release that owns a file path.
type Location struct {
	// Dir is the release root directory; empty when the path was malformed.
	Dir string
	// Category is a directory-derived label or the literal "uncategorized".
	Category string
	// Name is the raw release folder name, "unnamed" when no segment is usable.
	Name string
}

// Decompose derives the release location for a file path. It never fails:
// malformed input degrades to sentinel values. Many file paths inside the
// same release collapse onto a single Location, which is what lets callers
// group per-file database rows into releases.
func Decompose(p string) Location {
	if p == "" || !strings.HasPrefix(p, "/") {
		return Location{Category: Uncategorized, Name: lastSegment(p)}
	}

	parts := splitSegments(p)

	if len(parts) >= 3 && parts[0] == contentRoot {
		return Location{
			Dir:      "/" + strings.Join(parts[:3], "/"),
			Category: parts[1],
			Name:     parts[2],
		}
	}

	if len(parts) >= 2 {
		if isExtractionArtifact(parts[len(parts)-1]) {
			return Decompose(parentDir(p))
		}
		// The general rule treats the input as a file path: the release is
		// the parent directory. When that directory is itself an extraction
		// artifact, resolve from its parent so that a bare artifact directory
		// and a file inside it land on the same release.
		if isExtractionArtifact(parts[len(parts)-2]) {
			return Decompose(parentDir(parentDir(p)))
		}
		return Location{
			Dir:      "/" + strings.Join(parts[:len(parts)-1], "/"),
			Category: Uncategorized,
			Name:     parts[len(parts)-2],
		}
	}

	if len(parts) == 1 {
		return Location{Dir: "/" + parts[0], Category: Uncategorized, Name: parts[0]}
	}

	return Location{Dir: p, Category: Uncategorized, Name: UnnamedRelease}
}

func isExtractionArtifact(segment string) bool {
	_, ok := extractionArtifacts[strings.ToLower(segment)]
	return ok
}

func splitSegments(p string) []string {
	raw := strings.Split(p, "/")
	parts := make([]string, 0, len(raw))
	for _, segment := range raw {
		if segment != "" {
			parts = append(parts, segment)
		}
	}
	return parts
}

func parentDir(p string) string {
	return path.Dir(strings.TrimRight(p, "/"))
}

func lastSegment(p string) string {
	parts := splitSegments(p)
	if len(parts) == 0 {
		return UnnamedRelease
	}
	return parts[len(parts)-1]
}
