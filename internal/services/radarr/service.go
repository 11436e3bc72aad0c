package radarr

import (
	"context"
	"log/slog"
	"time"

	"nzbforge/internal/logging"
	"nzbforge/internal/titleindex"
)

// Service orchestrates the re-queue flow for a batch of movie titles.
type Service struct {
	client *Client
	delay  time.Duration
	logger *slog.Logger
}

// NewService wraps a client. delay is the pause between titles; zero
// disables pacing.
func NewService(client *Client, delay time.Duration, logger *slog.Logger) *Service {
	return &Service{
		client: client,
		delay:  delay,
		logger: logging.WithComponent(logger, "radarr"),
	}
}

// TriggerSearches processes each title and returns the ones that ended in a
// successful search command. Per-title failures are logged and skipped so
// one broken title cannot stall the batch.
func (s *Service) TriggerSearches(ctx context.Context, titles []string) []string {
	if len(titles) == 0 {
		return nil
	}

	library, err := s.client.Movies(ctx)
	if err != nil {
		s.logger.Warn("library fetch failed, falling back to lookup only", slog.Any("error", err))
		library = nil
	}
	index := titleindex.Build(library, Movie.Titles)
	libraryIDs := make(map[int64]struct{}, len(library))
	for _, movie := range library {
		if movie.ID != 0 {
			libraryIDs[movie.ID] = struct{}{}
		}
	}

	s.logger.Info("processing movie titles",
		slog.Int("titles", len(titles)),
		slog.Int("library", len(library)))

	var successful []string
	for i, title := range titles {
		if ctx.Err() != nil {
			break
		}
		if s.processTitle(ctx, title, library, index, libraryIDs) {
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

func (s *Service) processTitle(ctx context.Context, title string, library []Movie, index titleindex.Index[Movie], libraryIDs map[int64]struct{}) bool {
	logger := s.logger.With(slog.String("title", title))

	var (
		movie       *Movie
		fromLibrary bool
	)
	if match, ok := index.First(title); ok {
		movie = &match
		_, fromLibrary = libraryIDs[match.ID]
	} else {
		// Exact match failed; ask the lookup endpoint and reconcile by
		// TMDB ID in case the library knows the movie under another name.
		results, err := s.client.Lookup(ctx, title)
		if err != nil {
			logger.Warn("lookup failed", slog.Any("error", err))
			return false
		}
		if len(results) == 0 {
			logger.Info("no lookup results")
			return false
		}
		candidate := results[0]
		for i := range library {
			if library[i].TmdbID != 0 && library[i].TmdbID == candidate.TmdbID {
				movie = &library[i]
				fromLibrary = true
				break
			}
		}
		if movie == nil {
			movie = &candidate
		}
	}

	if fromLibrary && movie.ID != 0 {
		return s.refreshExisting(ctx, logger, movie)
	}
	return s.addAndSearch(ctx, logger, title, movie)
}

// refreshExisting deletes the movie's files but keeps the library entry,
// then triggers a targeted search.
func (s *Service) refreshExisting(ctx context.Context, logger *slog.Logger, movie *Movie) bool {
	files, err := s.client.MovieFiles(ctx, movie.ID)
	if err != nil {
		logger.Warn("movie file listing failed", slog.Any("error", err))
		return false
	}
	deleted := 0
	for _, file := range files {
		if file.ID == 0 {
			continue
		}
		if err := s.client.DeleteMovieFile(ctx, file.ID); err != nil {
			logger.Warn("file delete failed", slog.Int64("file_id", file.ID), slog.Any("error", err))
			continue
		}
		deleted++
	}
	logger.Info("existing entry reset", slog.Int("deleted_files", deleted))

	if err := s.client.SearchMovies(ctx, []int64{movie.ID}); err != nil {
		logger.Warn("search command failed", slog.Any("error", err))
		return false
	}
	return true
}

func (s *Service) addAndSearch(ctx context.Context, logger *slog.Logger, title string, movie *Movie) bool {
	payload, ok := PreparePayload(movie)
	if !ok {
		logger.Warn("insufficient metadata to add movie")
		return false
	}

	added, err := s.client.Add(ctx, payload)
	if err != nil {
		logger.Warn("add failed", slog.Any("error", err))
		return false
	}

	if added != nil && added.ID != 0 {
		err = s.client.SearchMovies(ctx, []int64{added.ID})
	} else {
		err = s.client.SearchByQuery(ctx, title)
	}
	if err != nil {
		logger.Warn("search command failed", slog.Any("error", err))
	}
	logger.Info("movie added and search triggered")
	return true
}
