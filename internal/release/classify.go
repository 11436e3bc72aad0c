package release

import (
	"regexp"
	"strings"
)

// Classification is the media kind derived from a release name and category hint.
type Classification int

const (
	Unclassified Classification = iota
	Movie
	Series
)

// String returns a stable lowercase label for logging and persistence.
func (c Classification) String() string {
	switch c {
	case Movie:
		return "movie"
	case Series:
		return "series"
	default:
		return "unclassified"
	}
}

var seriesCategories = map[string]struct{}{
	"tv":         {},
	"series":     {},
	"shows":      {},
	"television": {},
}

var movieCategories = map[string]struct{}{
	"movie":  {},
	"movies": {},
	"films":  {},
	"film":   {},
}

var (
	// seriesMarker matches SxxEyy, bare Sxx, and "Season N" tokens. The bare
	// Sxx form can misfire on titles that coincidentally contain S followed by
	// digits; this is a known accepted false-positive source.
	seriesMarker = regexp.MustCompile(`(?i)(S\d{1,2}E\d{1,3}|S\d{1,2}\b|Season[ ._-]*\d{1,2}\b)`)

	// yearToken matches four-digit years in the range 1900-2099.
	yearToken = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
)

var separatorReplacer = strings.NewReplacer(".", " ", "_", " ")

func normalizeSeparators(name string) string {
	return separatorReplacer.Replace(name)
}

// IsSeries reports whether the release looks like a TV series, either from a
// category hint or a season/episode marker in the name.
func IsSeries(name, categoryHint string) bool {
	if _, ok := seriesCategories[strings.ToLower(categoryHint)]; ok {
		return true
	}
	return seriesMarker.MatchString(normalizeSeparators(name))
}

// IsMovie reports whether the release looks like a movie. The check is
// series-exclusive: a name carrying a season marker is never a movie, even
// when it also contains a year token.
func IsMovie(name, categoryHint string) bool {
	if _, ok := movieCategories[strings.ToLower(categoryHint)]; ok {
		return true
	}
	return yearToken.MatchString(name) && !IsSeries(name, categoryHint)
}

// Classify resolves a release name and category hint to a Classification,
// applying the documented fallback when neither predicate fires on the hint:
// a season/episode marker in the raw name wins over a bare year token.
func Classify(name, categoryHint string) Classification {
	switch {
	case IsSeries(name, categoryHint):
		return Series
	case IsMovie(name, categoryHint):
		return Movie
	case seriesMarker.MatchString(name):
		return Series
	case yearToken.MatchString(name):
		return Movie
	default:
		return Unclassified
	}
}
