package sonarr

import (
	"context"
	"log/slog"
	"time"

	"nzbforge/internal/logging"
	"nzbforge/internal/release"
	"nzbforge/internal/titleindex"
)

// DeleteScope controls how much of a series gets deleted for a parsed
// episode spec.
type DeleteScope string

const (
	// ScopeEpisode deletes only the episodes named by the spec.
	ScopeEpisode DeleteScope = "episode"
	// ScopeSeason widens every spec to its whole season.
	ScopeSeason DeleteScope = "season"
)

// Service orchestrates the re-queue flow for a batch of series titles.
type Service struct {
	client *Client
	delay  time.Duration
	scope  DeleteScope
	logger *slog.Logger
}

// NewService wraps a client. delay is the pause between titles; zero
// disables pacing.
func NewService(client *Client, delay time.Duration, scope DeleteScope, logger *slog.Logger) *Service {
	if scope != ScopeSeason {
		scope = ScopeEpisode
	}
	return &Service{
		client: client,
		delay:  delay,
		scope:  scope,
		logger: logging.WithComponent(logger, "sonarr"),
	}
}

// TriggerSearches processes each title and returns the ones that ended in a
// successful search command. episodeSpecs maps cleaned titles to the
// season/episode info parsed from their release names; titles without specs
// get whole-series treatment.
func (s *Service) TriggerSearches(ctx context.Context, titles []string, episodeSpecs map[string][]release.EpisodeSpec) []string {
	if len(titles) == 0 {
		return nil
	}

	library, err := s.client.AllSeries(ctx)
	if err != nil {
		s.logger.Warn("library fetch failed, falling back to lookup only", slog.Any("error", err))
		library = nil
	}
	index := titleindex.Build(library, Series.Titles)
	libraryIDs := make(map[int64]struct{}, len(library))
	for _, entry := range library {
		if entry.ID != 0 {
			libraryIDs[entry.ID] = struct{}{}
		}
	}

	s.logger.Info("processing series titles",
		slog.Int("titles", len(titles)),
		slog.Int("library", len(library)))

	var successful []string
	for i, title := range titles {
		if ctx.Err() != nil {
			break
		}
		if s.processTitle(ctx, title, index, libraryIDs, episodeSpecs[title]) {
			successful = append(successful, title)
		}
		if s.delay > 0 && i < len(titles)-1 {
			select {
			case <-time.After(s.delay):
			case <-ctx.Done():
				return successful
			}
		}
	}
	return successful
}

func (s *Service) processTitle(ctx context.Context, title string, index titleindex.Index[Series], libraryIDs map[int64]struct{}, specs []release.EpisodeSpec) bool {
	logger := s.logger.With(slog.String("title", title))

	var (
		entry       *Series
		fromLibrary bool
	)
	if match, ok := index.First(title); ok {
		entry = &match
		_, fromLibrary = libraryIDs[match.ID]
	} else {
		results, err := s.client.Lookup(ctx, title)
		if err != nil {
			logger.Warn("lookup failed", slog.Any("error", err))
			return false
		}
		if len(results) == 0 {
			logger.Info("no lookup results")
			return false
		}
		entry = &results[0]
	}

	if fromLibrary && entry.ID != 0 {
		return s.refreshExisting(ctx, logger, entry, specs)
	}
	return s.addAndSearch(ctx, logger, title, entry)
}

// refreshExisting deletes episode files and triggers the narrowest search
// covering what was deleted.
func (s *Service) refreshExisting(ctx context.Context, logger *slog.Logger, entry *Series, specs []release.EpisodeSpec) bool {
	if s.scope == ScopeSeason {
		specs = widenToSeasons(specs)
	}

	episodes, err := s.client.Episodes(ctx, entry.ID)
	if err != nil {
		logger.Warn("episode listing failed", slog.Any("error", err))
		return false
	}

	var (
		deletedFiles    = map[int64]struct{}{}
		deletedEpisodes []int64
	)
	deleteEpisode := func(ep Episode) {
		if !ep.HasFile || ep.EpisodeFileID == 0 {
			return
		}
		if _, done := deletedFiles[ep.EpisodeFileID]; done {
			return
		}
		if err := s.client.DeleteEpisodeFile(ctx, ep.EpisodeFileID); err != nil {
			logger.Warn("episode file delete failed",
				slog.Int64("file_id", ep.EpisodeFileID), slog.Any("error", err))
			return
		}
		deletedFiles[ep.EpisodeFileID] = struct{}{}
		deletedEpisodes = append(deletedEpisodes, ep.ID)
	}

	if len(specs) > 0 {
		for _, spec := range specs {
			for _, ep := range episodes {
				if ep.SeasonNumber != spec.Season {
					continue
				}
				if !spec.WholeSeason() && !containsEpisode(spec.Episodes, ep.EpisodeNumber) {
					continue
				}
				deleteEpisode(ep)
			}
		}
	} else {
		// no parsed episode info: reset every file the series has
		for _, ep := range episodes {
			deleteEpisode(ep)
		}
	}

	logger.Info("existing entry reset",
		slog.Int("deleted_files", len(deletedFiles)),
		slog.Int("episode_specs", len(specs)))

	if len(deletedEpisodes) > 0 {
		if err := s.client.SearchEpisodes(ctx, deletedEpisodes); err != nil {
			logger.Warn("episode search command failed", slog.Any("error", err))
			return false
		}
		return true
	}
	if err := s.client.SearchSeries(ctx, entry.ID); err != nil {
		logger.Warn("series search command failed", slog.Any("error", err))
		return false
	}
	return true
}

func (s *Service) addAndSearch(ctx context.Context, logger *slog.Logger, title string, entry *Series) bool {
	payload, ok := PreparePayload(entry)
	if !ok {
		logger.Warn("insufficient metadata to add series")
		return false
	}

	added, err := s.client.Add(ctx, payload)
	if err != nil {
		logger.Warn("add failed", slog.Any("error", err))
		return false
	}

	if added != nil && added.ID != 0 {
		err = s.client.SearchNewSeries(ctx, []int64{added.ID})
	} else {
		err = s.client.SearchByQuery(ctx, title)
	}
	if err != nil {
		logger.Warn("search command failed", slog.Any("error", err))
	}
	logger.Info("series added and search triggered")
	return true
}

// widenToSeasons collapses specs to one whole-season spec per season.
func widenToSeasons(specs []release.EpisodeSpec) []release.EpisodeSpec {
	seen := map[int]struct{}{}
	out := make([]release.EpisodeSpec, 0, len(specs))
	for _, spec := range specs {
		if _, ok := seen[spec.Season]; ok {
			continue
		}
		seen[spec.Season] = struct{}{}
		out = append(out, release.EpisodeSpec{Season: spec.Season, Episodes: []int{}})
	}
	return out
}

func containsEpisode(episodes []int, number int) bool {
	for _, e := range episodes {
		if e == number {
			return true
		}
	}
	return false
}
