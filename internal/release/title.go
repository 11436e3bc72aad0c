package release

import (
	"regexp"
	"strings"
)

var (
	// seriesTitleCut captures everything before the first season/episode marker.
	seriesTitleCut = regexp.MustCompile(`(?i)^(.*?)[ ._-]*(S\d{1,2}E\d{1,3}|S\d{1,2}\b|Season[ ._-]*\d{1,2}\b)`)

	// Release-artifact keyword scans used when no marker or year anchors the
	// title fragment. The movie variant additionally knows bluray spellings.
	seriesKeywordScan = regexp.MustCompile(`(?i)\b(dvdrip|brrip|webrip|720p|1080p|2160p|4k|x264|x265|hdtv|complete)\b`)
	movieKeywordScan  = regexp.MustCompile(`(?i)\b(dvdrip|brrip|webrip|720p|1080p|2160p|4k|x264|x265|hdtv|bluray|blu-ray)\b`)

	// trailingGroupTag strips "-GROUP" or ".GROUP123" release-group suffixes.
	trailingGroupTag = regexp.MustCompile(`[-.]([A-Z]{2,}|[A-Z]+[0-9]+)$`)

	// Bracket groups are stripped only when their contents look like release
	// metadata, so legitimate parentheses in titles survive.
	squareBracketNoise = regexp.MustCompile(`(?i)\[[^\[\]]*(?:rip|web|dvd|blu|x264|x265|h264|h265|720p|1080p)[^\[\]]*\]`)
	parenBracketNoise  = regexp.MustCompile(`(?i)\([^()]*(?:rip|web|dvd|blu|x264|x265|h264|h265|720p|1080p)[^()]*\)`)

	whitespaceRun = regexp.MustCompile(`\s+`)

	// edgePunctuation trims leading/trailing punctuation while preserving
	// embedded apostrophes and hyphens ("Won't Back Down", "Spider-Man").
	edgePunctuation = regexp.MustCompile(`^[^\w\s'-]+|[^\w\s'-]+$`)
)

// ExtractSeriesTitle derives a clean display title from a series release name.
// The fragment before the first season/episode marker is preferred; without a
// marker the scan falls back to known release-artifact keywords, and finally
// to the whole string. Never returns an empty string.
func ExtractSeriesTitle(name string) string {
	if name == "" {
		return UnnamedRelease
	}

	s := normalizeSeparators(name)
	fragment := s
	if m := seriesTitleCut.FindStringSubmatch(s); m != nil {
		fragment = strings.TrimSpace(m[1])
	} else if loc := seriesKeywordScan.FindStringIndex(s); loc != nil {
		fragment = strings.TrimSpace(s[:loc[0]])
	}

	return gentleClean(fragment)
}

// ExtractMovieTitle derives a clean display title from a movie release name,
// suffixed with " (YYYY)" when a release year is present. When several year
// tokens appear the last one wins: later years in a release name are far more
// likely to be the release year than part of the title. A title that itself
// contains a year (a remake of "1984" released in 2021) therefore extracts
// correctly, while a year-titled film with no separate release year does not;
// that trade-off is deliberate and covered by tests.
func ExtractMovieTitle(name string) string {
	if name == "" {
		return UnnamedRelease
	}

	s := normalizeSeparators(name)
	fragment := s
	year := ""
	if matches := yearToken.FindAllStringIndex(s, -1); len(matches) > 0 {
		last := matches[len(matches)-1]
		year = s[last[0]:last[1]]
		fragment = strings.TrimSpace(s[:last[0]])
	} else if loc := movieKeywordScan.FindStringIndex(s); loc != nil {
		fragment = strings.TrimSpace(s[:loc[0]])
	}

	cleaned := gentleClean(fragment)
	if year != "" && cleaned != UnnamedRelease {
		// The "Title (YYYY)" form is what the external movie catalog's
		// fuzzy search expects.
		return cleaned + " (" + year + ")"
	}
	return cleaned
}

// gentleClean trims release-group tags, metadata brackets, whitespace runs,
// and edge punctuation from a title fragment without disturbing its core
// structure. Empty results collapse to the "unnamed" sentinel.
func gentleClean(fragment string) string {
	cleaned := strings.TrimSpace(fragment)
	if cleaned == "" {
		return UnnamedRelease
	}

	cleaned = trailingGroupTag.ReplaceAllString(cleaned, "")
	cleaned = squareBracketNoise.ReplaceAllString(cleaned, "")
	cleaned = parenBracketNoise.ReplaceAllString(cleaned, "")
	cleaned = whitespaceRun.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = edgePunctuation.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return UnnamedRelease
	}
	return cleaned
}
