package release

import (
	"regexp"
	"strconv"
)

// EpisodeSpec describes the season/episode structure parsed from a release
// name. An empty Episodes slice is the whole-season sentinel: the release
// covers the entire season rather than named episodes.
type EpisodeSpec struct {
	Season   int
	Episodes []int
}

// WholeSeason reports whether the spec carries no episode granularity.
func (e EpisodeSpec) WholeSeason() bool {
	return len(e.Episodes) == 0
}

// multiEpisodeWindow bounds how far past an SxxEyy match additional Eyy
// tokens are considered part of the same multi-episode release.
const multiEpisodeWindow = 20

var (
	seasonEpisodePattern = regexp.MustCompile(`(?i)S(\d{1,2})E(\d{1,3})`)
	extraEpisodePattern  = regexp.MustCompile(`(?i)E(\d{1,3})`)
	longFormPattern      = regexp.MustCompile(`(?i)Season\s*(\d{1,2})\s*Episode\s*(\d{1,3})`)
	// seasonOnlyPattern requires the digits not be followed by another digit
	// or E, so S01E02 and S012-style tokens don't register as season packs.
	seasonOnlyPattern = regexp.MustCompile(`(?i)S(\d{1,2})(?:\s|$|[^\dE])`)
)

// ParseSeasonEpisode extracts season and episode numbers from a release name.
// Multi-episode releases (S01E01E02) yield every episode in positional order.
// A bare season token yields the whole-season sentinel. Returns nil when no
// season/episode information is derivable; that is not an error.
func ParseSeasonEpisode(name string) *EpisodeSpec {
	if name == "" {
		return nil
	}

	s := normalizeSeparators(name)

	if m := seasonEpisodePattern.FindStringSubmatchIndex(s); m != nil {
		season := mustAtoi(s[m[2]:m[3]])
		episodes := []int{mustAtoi(s[m[4]:m[5]])}
		rest := s[m[1]:]
		if len(rest) > multiEpisodeWindow {
			rest = rest[:multiEpisodeWindow]
		}
		for _, extra := range extraEpisodePattern.FindAllStringSubmatch(rest, -1) {
			episodes = append(episodes, mustAtoi(extra[1]))
		}
		return &EpisodeSpec{Season: season, Episodes: episodes}
	}

	if m := longFormPattern.FindStringSubmatch(s); m != nil {
		return &EpisodeSpec{Season: mustAtoi(m[1]), Episodes: []int{mustAtoi(m[2])}}
	}

	if m := seasonOnlyPattern.FindStringSubmatch(s); m != nil {
		return &EpisodeSpec{Season: mustAtoi(m[1]), Episodes: []int{}}
	}

	return nil
}

// mustAtoi converts digits already validated by a \d pattern.
func mustAtoi(digits string) int {
	n, _ := strconv.Atoi(digits)
	return n
}
