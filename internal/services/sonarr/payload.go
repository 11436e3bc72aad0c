package sonarr

import (
	"path"
	"strings"
)

// PreparePayload builds the add-series request body from lookup metadata.
// Sonarr requires a title, quality profile, provider ID, root folder, and
// series path; anything less returns false.
func PreparePayload(series *Series) (map[string]any, bool) {
	if series == nil {
		return nil, false
	}

	rootFolder := series.RootFolderPath
	if rootFolder == "" && series.Path != "" {
		rootFolder = path.Dir(strings.TrimRight(series.Path, "/\\"))
		if rootFolder == "." {
			rootFolder = ""
		}
	}

	if series.Title == "" || series.QualityProfileID == 0 || rootFolder == "" || series.Path == "" {
		return nil, false
	}
	if series.TvdbID == 0 && series.ImdbID == "" && series.TmdbID == 0 {
		return nil, false
	}

	monitored := true
	if series.Monitored != nil {
		monitored = *series.Monitored
	}
	seasonFolder := true
	if series.SeasonFolder != nil {
		seasonFolder = *series.SeasonFolder
	}
	seriesType := series.SeriesType
	if seriesType == "" {
		seriesType = "standard"
	}
	tags := series.Tags
	if tags == nil {
		tags = []int64{}
	}
	seasons := series.Seasons
	if seasons == nil {
		seasons = []Season{}
	}

	payload := map[string]any{
		"title":             series.Title,
		"qualityProfileId":  series.QualityProfileID,
		"year":              series.Year,
		"monitored":         monitored,
		"seasonFolder":      seasonFolder,
		"seriesType":        seriesType,
		"useSceneNumbering": series.UseSceneNumbering,
		"rootFolderPath":    rootFolder,
		"path":              series.Path,
		"tags":              tags,
		"seasons":           seasons,
		"addOptions":        map[string]any{"monitor": "existing", "searchForMissingEpisodes": false},
	}
	if series.TitleSlug != "" {
		payload["titleSlug"] = series.TitleSlug
	}
	if series.LanguageProfileID != 0 {
		payload["languageProfileId"] = series.LanguageProfileID
	}
	if series.TvdbID != 0 {
		payload["tvdbId"] = series.TvdbID
	}
	if series.ImdbID != "" {
		payload["imdbId"] = series.ImdbID
	}
	if series.TmdbID != 0 {
		payload["tmdbId"] = series.TmdbID
	}
	return payload, true
}
