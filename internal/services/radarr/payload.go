package radarr

import (
	"path"
	"strings"
)

// PreparePayload builds the add-movie request body from lookup metadata.
// Returns false when required fields are missing; Radarr rejects adds
// without a title, quality profile, provider ID, and root folder.
func PreparePayload(movie *Movie) (map[string]any, bool) {
	if movie == nil {
		return nil, false
	}

	qualityProfileID := movie.QualityProfileID
	if qualityProfileID == 0 {
		qualityProfileID = movie.ProfileID
	}

	rootFolder := movie.RootFolderPath
	if rootFolder == "" && movie.Path != "" {
		rootFolder = path.Dir(strings.TrimRight(movie.Path, "/\\"))
		if rootFolder == "." {
			rootFolder = ""
		}
	}

	if movie.Title == "" || qualityProfileID == 0 || rootFolder == "" {
		return nil, false
	}
	if movie.TmdbID == 0 && movie.ImdbID == "" {
		return nil, false
	}

	slug := movie.TitleSlug
	if slug == "" {
		slug = movie.FolderName
	}
	moviePath := movie.Path
	if moviePath == "" {
		folder := slug
		if folder == "" {
			folder = movie.Title
		}
		moviePath = path.Join(rootFolder, folder)
	}

	monitored := true
	if movie.Monitored != nil {
		monitored = *movie.Monitored
	}
	availability := movie.MinimumAvailability
	if availability == "" {
		availability = "announced"
	}
	tags := movie.Tags
	if tags == nil {
		tags = []int64{}
	}

	payload := map[string]any{
		"title":               movie.Title,
		"qualityProfileId":    qualityProfileID,
		"year":                movie.Year,
		"monitored":           monitored,
		"minimumAvailability": availability,
		"rootFolderPath":      rootFolder,
		"path":                moviePath,
		"tags":                tags,
		"addOptions":          map[string]any{"searchForMovie": false},
	}
	if slug != "" {
		payload["titleSlug"] = slug
	}
	if movie.TmdbID != 0 {
		payload["tmdbId"] = movie.TmdbID
	}
	if movie.ImdbID != "" {
		payload["imdbId"] = movie.ImdbID
	}
	if movie.LanguageProfileID != 0 {
		payload["languageProfileId"] = movie.LanguageProfileID
	}
	return payload, true
}
