package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"nzbforge/internal/library"
	"nzbforge/internal/logging"
	"nzbforge/internal/namestore"
	"nzbforge/internal/nzb"
	"nzbforge/internal/release"
)

// Library is the catalog surface the exporter consumes.
type Library interface {
	ReleaseFilePaths(ctx context.Context) ([]string, error)
	NzbFilesByPath(ctx context.Context, paths []string) ([]library.NzbFile, error)
	RarFilesByPath(ctx context.Context, paths []string) ([]library.RarFile, error)
	SegmentSizes(ctx context.Context, messageIDs []string) (map[string]int64, error)
}

// Options configures a run.
type Options struct {
	OutputDir            string
	Group                string
	BatchSize            int
	Workers              int
	FallbackSegmentBytes int64
	MaxSegmentsPerFile   int
	Includes             release.Includes
}

// Summary describes what a run produced.
type Summary struct {
	RunID           string        `json:"run_id"`
	Releases        int           `json:"releases"`
	Exported        int           `json:"exported"`
	Skipped         int           `json:"skipped"`
	Segments        int           `json:"segments"`
	Bytes           int64         `json:"bytes"`
	MovieTitles     int           `json:"movie_titles"`
	SeriesTitles    int           `json:"series_titles"`
	Duration        time.Duration `json:"duration"`
	MovieNamesPath  string        `json:"movie_names_path,omitempty"`
	SeriesNamesPath string        `json:"series_names_path,omitempty"`

	// SeriesEpisodes maps cleaned series titles to the season/episode
	// specs parsed from their release names. Consumed by the Sonarr push;
	// not part of the JSON surface.
	SeriesEpisodes map[string][]release.EpisodeSpec `json:"-"`
}

// Exporter drives a full catalog export.
type Exporter struct {
	lib    Library
	names  *namestore.Store
	opts   Options
	logger *slog.Logger
}

// New builds an exporter. A nil logger is replaced with a no-op one.
func New(lib Library, names *namestore.Store, opts Options, logger *slog.Logger) *Exporter {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 500
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Exporter{
		lib:    lib,
		names:  names,
		opts:   opts,
		logger: logging.WithComponent(logger, "export"),
	}
}

type releaseBundle struct {
	location release.Location
	nzbFiles []library.NzbFile
	rarFiles []library.RarFile
	sizes    map[string]int64
}

// Run exports every release in the catalog. It holds a lock file in the
// output directory for the duration so concurrent runs cannot collide.
func (e *Exporter) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := e.logger.With(slog.String("run_id", runID))

	if err := os.MkdirAll(e.opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	lock := flock.New(filepath.Join(e.opts.OutputDir, ".nzbforge.lock"))
	locked, err := lock.TryLockContext(ctx, 250*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("acquire export lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another export is already running in %s", e.opts.OutputDir)
	}
	defer lock.Unlock()

	paths, err := e.lib.ReleaseFilePaths(ctx)
	if err != nil {
		return nil, err
	}

	releaseMap := make(map[string][]string)
	for _, path := range paths {
		loc := release.Decompose(path)
		if loc.Dir == "" {
			continue
		}
		releaseMap[loc.Dir] = append(releaseMap[loc.Dir], path)
	}

	releaseDirs := make([]string, 0, len(releaseMap))
	for dir := range releaseMap {
		releaseDirs = append(releaseDirs, dir)
	}
	sort.Strings(releaseDirs)

	logger.Info("catalog scanned",
		slog.Int("files", len(paths)),
		slog.Int("releases", len(releaseDirs)))

	summary := &Summary{
		RunID:          runID,
		Releases:       len(releaseDirs),
		SeriesEpisodes: make(map[string][]release.EpisodeSpec),
	}
	movieTitles := make(map[string]struct{})
	seriesTitles := make(map[string]struct{})
	var mu sync.Mutex

	for batchStart := 0; batchStart < len(releaseDirs); batchStart += e.opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		batchEnd := batchStart + e.opts.BatchSize
		if batchEnd > len(releaseDirs) {
			batchEnd = len(releaseDirs)
		}
		batch := releaseDirs[batchStart:batchEnd]

		bundles, err := e.loadBatch(ctx, batch, releaseMap)
		if err != nil {
			return nil, err
		}

		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(e.opts.Workers)
		for _, bundle := range bundles {
			group.Go(func() error {
				if err := groupCtx.Err(); err != nil {
					return err
				}
				result := e.exportRelease(bundle, logger)

				mu.Lock()
				defer mu.Unlock()
				collectTitle(bundle.location, movieTitles, seriesTitles, summary.SeriesEpisodes)
				if result.exported {
					summary.Exported++
					summary.Segments += result.segments
					summary.Bytes += result.bytes
				} else {
					summary.Skipped++
				}
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return nil, err
		}
	}

	summary.MovieTitles = len(movieTitles)
	summary.SeriesTitles = len(seriesTitles)

	if e.names != nil {
		if count, err := e.names.Write(namestore.MovieNamesFile, setToSlice(movieTitles)); err != nil {
			logger.Error("write movie names failed", slog.Any("error", err))
		} else if count > 0 {
			summary.MovieNamesPath = filepath.Join(e.names.Dir(), namestore.MovieNamesFile)
		}
		if count, err := e.names.Write(namestore.SeriesNamesFile, setToSlice(seriesTitles)); err != nil {
			logger.Error("write series names failed", slog.Any("error", err))
		} else if count > 0 {
			summary.SeriesNamesPath = filepath.Join(e.names.Dir(), namestore.SeriesNamesFile)
		}
	}

	summary.Duration = time.Since(start)
	logger.Info("export finished",
		slog.Int("exported", summary.Exported),
		slog.Int("skipped", summary.Skipped),
		slog.Int("segments", summary.Segments),
		slog.Int64("bytes", summary.Bytes),
		slog.Duration("duration", summary.Duration))
	return summary, nil
}

// loadBatch fetches and groups everything a batch of releases needs,
// including segment sizes, so workers never touch the database.
func (e *Exporter) loadBatch(ctx context.Context, batch []string, releaseMap map[string][]string) ([]releaseBundle, error) {
	var batchPaths []string
	for _, dir := range batch {
		batchPaths = append(batchPaths, releaseMap[dir]...)
	}
	if len(batchPaths) == 0 {
		return nil, nil
	}

	nzbFiles, err := e.lib.NzbFilesByPath(ctx, batchPaths)
	if err != nil {
		return nil, err
	}
	rarFiles, err := e.lib.RarFilesByPath(ctx, batchPaths)
	if err != nil {
		return nil, err
	}

	byDir := make(map[string]*releaseBundle, len(batch))
	for _, dir := range batch {
		byDir[dir] = &releaseBundle{location: release.Decompose(dir)}
	}

	messageIDs := make(map[string]struct{})
	for _, file := range nzbFiles {
		loc := release.Decompose(file.Path)
		bundle, ok := byDir[loc.Dir]
		if !ok {
			continue
		}
		bundle.nzbFiles = append(bundle.nzbFiles, file)
		for _, seg := range file.Segments {
			messageIDs[seg.MessageID] = struct{}{}
		}
	}
	for _, file := range rarFiles {
		loc := release.Decompose(file.Path)
		bundle, ok := byDir[loc.Dir]
		if !ok {
			continue
		}
		bundle.rarFiles = append(bundle.rarFiles, file)
		for _, part := range file.Parts {
			for _, seg := range part {
				messageIDs[seg.MessageID] = struct{}{}
			}
		}
	}

	ids := make([]string, 0, len(messageIDs))
	for id := range messageIDs {
		ids = append(ids, id)
	}
	sizes, err := e.lib.SegmentSizes(ctx, ids)
	if err != nil {
		return nil, err
	}

	bundles := make([]releaseBundle, 0, len(batch))
	for _, dir := range batch {
		bundle := byDir[dir]
		bundle.sizes = sizes
		bundles = append(bundles, *bundle)
	}
	return bundles, nil
}

type exportResult struct {
	exported bool
	segments int
	bytes    int64
}

func (e *Exporter) exportRelease(bundle releaseBundle, logger *slog.Logger) exportResult {
	doc := nzb.NewDocument()

	for _, file := range bundle.nzbFiles {
		if release.ClassifyFile(file.Path, file.Name, e.opts.Includes) == release.KindSkip {
			continue
		}
		segments := e.resolveSegments(file.Segments, bundle.sizes)
		if len(segments) == 0 {
			continue
		}
		doc.AddFile(file.Name, library.CreatedOrNow(file.CreatedAt).Unix(), e.opts.Group, segments, e.opts.FallbackSegmentBytes)
	}

	for _, file := range bundle.rarFiles {
		if release.ClassifyFile(file.Path, file.Name, e.opts.Includes) == release.KindSkip {
			continue
		}
		base := strings.TrimSuffix(file.Name, filepath.Ext(file.Name))
		if base == "" {
			base = "part"
		}
		date := library.CreatedOrNow(file.CreatedAt).Unix()
		for idx, part := range file.Parts {
			segments := e.resolveSegments(part, bundle.sizes)
			if len(segments) == 0 {
				continue
			}
			subject := fmt.Sprintf("%s.part%03d.rar", base, idx+1)
			doc.AddFile(subject, date, e.opts.Group, segments, e.opts.FallbackSegmentBytes)
		}
	}

	if len(doc.Files) == 0 {
		logger.Debug("release skipped, no usable files",
			slog.String("release", bundle.location.Name))
		return exportResult{}
	}

	categoryDir := filepath.Join(e.opts.OutputDir, nzb.SafeName(bundle.location.Category))
	if err := os.MkdirAll(categoryDir, 0o755); err != nil {
		logger.Error("create category directory failed",
			slog.String("release", bundle.location.Name), slog.Any("error", err))
		return exportResult{}
	}
	outPath := filepath.Join(categoryDir, nzb.FileName(bundle.location.Name))

	out, err := os.Create(outPath)
	if err != nil {
		logger.Error("create nzb file failed",
			slog.String("release", bundle.location.Name), slog.Any("error", err))
		return exportResult{}
	}
	defer out.Close()

	if err := doc.Render(out); err != nil {
		logger.Error("render nzb failed",
			slog.String("release", bundle.location.Name), slog.Any("error", err))
		return exportResult{}
	}

	logger.Info("release exported",
		slog.String("release", bundle.location.Name),
		slog.String("category", bundle.location.Category),
		slog.Int("files", len(doc.Files)),
		slog.Int("segments", doc.SegmentCount()),
		slog.Int64("bytes", doc.TotalBytes()))
	return exportResult{exported: true, segments: doc.SegmentCount(), bytes: doc.TotalBytes()}
}

// resolveSegments assigns segment numbers and fills in missing sizes from
// the catalog lookup, then the fallback. Segments without a message ID are
// dropped.
func (e *Exporter) resolveSegments(raw []library.Segment, sizes map[string]int64) []nzb.Segment {
	out := make([]nzb.Segment, 0, len(raw))
	for _, seg := range raw {
		if seg.MessageID == "" {
			continue
		}
		size := seg.Bytes
		if size <= 0 {
			size = sizes[seg.MessageID]
		}
		if size <= 0 {
			size = e.opts.FallbackSegmentBytes
		}
		out = append(out, nzb.Segment{
			Number:    len(out) + 1,
			MessageID: seg.MessageID,
			Bytes:     size,
		})
		if e.opts.MaxSegmentsPerFile > 0 && len(out) >= e.opts.MaxSegmentsPerFile {
			break
		}
	}
	return out
}

// collectTitle records the cleaned title for a release, plus any parsed
// season/episode info for series. Unclassifiable names fall back to marker
// and year heuristics on the raw name.
func collectTitle(loc release.Location, movies, series map[string]struct{}, episodes map[string][]release.EpisodeSpec) {
	switch release.Classify(loc.Name, loc.Category) {
	case release.Series:
		title := release.ExtractSeriesTitle(loc.Name)
		if title == "" {
			return
		}
		series[title] = struct{}{}
		if spec := release.ParseSeasonEpisode(loc.Name); spec != nil {
			episodes[title] = append(episodes[title], *spec)
		}
	case release.Movie:
		if title := release.ExtractMovieTitle(loc.Name); title != "" {
			movies[title] = struct{}{}
		}
	}
}

func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	return out
}
