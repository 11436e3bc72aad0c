package export_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nzbforge/internal/export"
	"nzbforge/internal/library"
	"nzbforge/internal/logging"
	"nzbforge/internal/namestore"
	"nzbforge/internal/release"
)

type fakeLibrary struct {
	paths    []string
	nzbFiles []library.NzbFile
	rarFiles []library.RarFile
	sizes    map[string]int64
}

func (f *fakeLibrary) ReleaseFilePaths(ctx context.Context) ([]string, error) {
	return f.paths, nil
}

func (f *fakeLibrary) NzbFilesByPath(ctx context.Context, paths []string) ([]library.NzbFile, error) {
	wanted := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		wanted[p] = struct{}{}
	}
	var out []library.NzbFile
	for _, file := range f.nzbFiles {
		if _, ok := wanted[file.Path]; ok {
			out = append(out, file)
		}
	}
	return out, nil
}

func (f *fakeLibrary) RarFilesByPath(ctx context.Context, paths []string) ([]library.RarFile, error) {
	wanted := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		wanted[p] = struct{}{}
	}
	var out []library.RarFile
	for _, file := range f.rarFiles {
		if _, ok := wanted[file.Path]; ok {
			out = append(out, file)
		}
	}
	return out, nil
}

func (f *fakeLibrary) SegmentSizes(ctx context.Context, ids []string) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, id := range ids {
		if size, ok := f.sizes[id]; ok {
			out[id] = size
		}
	}
	return out, nil
}

func testLibrary() *fakeLibrary {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &fakeLibrary{
		paths: []string{
			"/content/movies/Alien.1979.1080p.BluRay-GRP/alien.mkv",
			"/content/movies/Alien.1979.1080p.BluRay-GRP/alien.nfo",
			"/content/tv/The.Wire.S01E01.720p-GRP/wire.rar",
			"/content/movies/Empty.Release.2020-GRP/broken.mkv",
		},
		nzbFiles: []library.NzbFile{
			{
				ID: "n1", Name: "alien.mkv",
				Path:      "/content/movies/Alien.1979.1080p.BluRay-GRP/alien.mkv",
				CreatedAt: created,
				Segments: []library.Segment{
					{MessageID: "<a1@x>", Bytes: 1000},
					{MessageID: "<a2@x>"},
					{MessageID: "<a3@x>"},
				},
			},
			{
				ID: "n2", Name: "alien.nfo",
				Path:      "/content/movies/Alien.1979.1080p.BluRay-GRP/alien.nfo",
				CreatedAt: created,
				Segments:  []library.Segment{{MessageID: "<nfo@x>", Bytes: 50}},
			},
			{
				ID: "n3", Name: "broken.mkv",
				Path:      "/content/movies/Empty.Release.2020-GRP/broken.mkv",
				CreatedAt: created,
				Segments:  nil,
			},
		},
		rarFiles: []library.RarFile{
			{
				ID: "r1", Name: "wire.rar",
				Path:      "/content/tv/The.Wire.S01E01.720p-GRP/wire.rar",
				CreatedAt: created,
				Parts: [][]library.Segment{
					{{MessageID: "<w1@x>"}},
					{{MessageID: "<w2@x>", Bytes: 2000}},
				},
			},
		},
		sizes: map[string]int64{"<a2@x>": 500},
	}
}

func runExport(t *testing.T, lib export.Library, opts export.Options) (*export.Summary, string) {
	t.Helper()
	if opts.OutputDir == "" {
		opts.OutputDir = t.TempDir()
	}
	if opts.Group == "" {
		opts.Group = "alt.binaries.test"
	}
	if opts.FallbackSegmentBytes == 0 {
		opts.FallbackSegmentBytes = 792782
	}
	if opts.Includes == (release.Includes{}) {
		opts.Includes = release.DefaultIncludes()
	}
	names := namestore.New(opts.OutputDir)
	exporter := export.New(lib, names, opts, logging.NewNop())
	summary, err := exporter.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return summary, opts.OutputDir
}

func TestRunExportsReleases(t *testing.T) {
	summary, outDir := runExport(t, testLibrary(), export.Options{})

	if summary.Releases != 3 {
		t.Errorf("releases = %d, want 3", summary.Releases)
	}
	if summary.Exported != 2 {
		t.Errorf("exported = %d, want 2", summary.Exported)
	}
	if summary.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", summary.Skipped)
	}
	if summary.RunID == "" {
		t.Error("run id should be set")
	}

	moviePath := filepath.Join(outDir, "movies", "Alien.1979.1080p.BluRay-GRP.nzb")
	data, err := os.ReadFile(moviePath)
	if err != nil {
		t.Fatalf("movie nzb should exist: %v", err)
	}
	body := string(data)
	if !strings.Contains(body, "<a1@x>") {
		t.Error("movie nzb missing first segment")
	}
	// size resolution order: inline, then catalog lookup, then fallback
	if !strings.Contains(body, `bytes="1000"`) {
		t.Error("inline size should win")
	}
	if !strings.Contains(body, `bytes="500"`) {
		t.Error("catalog size should fill missing inline size")
	}
	if !strings.Contains(body, `bytes="792782"`) {
		t.Error("fallback size should cover unknown segments")
	}

	seriesPath := filepath.Join(outDir, "tv", "The.Wire.S01E01.720p-GRP.nzb")
	data, err = os.ReadFile(seriesPath)
	if err != nil {
		t.Fatalf("series nzb should exist: %v", err)
	}
	if !strings.Contains(string(data), "wire.part001.rar") {
		t.Error("rar parts should get numbered subjects")
	}
	if !strings.Contains(string(data), "wire.part002.rar") {
		t.Error("second rar part missing")
	}
}

func TestRunWritesTitleLists(t *testing.T) {
	summary, outDir := runExport(t, testLibrary(), export.Options{})

	if summary.MovieTitles != 2 {
		t.Errorf("movie titles = %d, want 2", summary.MovieTitles)
	}
	if summary.SeriesTitles != 1 {
		t.Errorf("series titles = %d, want 1", summary.SeriesTitles)
	}

	names := namestore.New(outDir)
	movies, err := names.Load(namestore.MovieNamesFile)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, m := range movies {
		if m == "Alien (1979)" {
			found = true
		}
	}
	if !found {
		t.Errorf("movie list should contain Alien (1979): %v", movies)
	}

	series, err := names.Load(namestore.SeriesNamesFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(series) != 1 || series[0] != "The Wire" {
		t.Errorf("series list = %v", series)
	}

	specs := summary.SeriesEpisodes["The Wire"]
	if len(specs) != 1 || specs[0].Season != 1 || len(specs[0].Episodes) != 1 || specs[0].Episodes[0] != 1 {
		t.Errorf("episode specs = %+v", specs)
	}
}

func TestRunRespectsIncludes(t *testing.T) {
	lib := testLibrary()
	inc := release.DefaultIncludes()
	inc.NFO = false
	_, outDir := runExport(t, lib, export.Options{Includes: inc})

	data, err := os.ReadFile(filepath.Join(outDir, "movies", "Alien.1979.1080p.BluRay-GRP.nzb"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "alien.nfo") {
		t.Error("nfo file should be excluded when the toggle is off")
	}
}

func TestRunCapsSegmentsPerFile(t *testing.T) {
	_, outDir := runExport(t, testLibrary(), export.Options{MaxSegmentsPerFile: 1})

	data, err := os.ReadFile(filepath.Join(outDir, "movies", "Alien.1979.1080p.BluRay-GRP.nzb"))
	if err != nil {
		t.Fatal(err)
	}
	body := string(data)
	if strings.Contains(body, "<a2@x>") || strings.Contains(body, "<a3@x>") {
		t.Error("segments beyond the cap should be dropped")
	}
	if !strings.Contains(body, "<a1@x>") {
		t.Error("first segment should survive the cap")
	}
}
