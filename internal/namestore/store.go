package namestore

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Conventional file names inside the output directory.
const (
	MovieNamesFile      = "movie_names.txt"
	SeriesNamesFile     = "series_names.txt"
	MovieProcessedFile  = "movie_names_processed.txt"
	SeriesProcessedFile = "series_names_processed.txt"
)

// Store reads and writes title lists under a single directory.
type Store struct {
	dir string
}

// New returns a store rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Write replaces the named list with the given titles, sorted and
// deduplicated, one per line. Empty titles are dropped. An empty final set
// leaves the file untouched.
func (s *Store) Write(file string, titles []string) (int, error) {
	unique := dedupe(titles)
	if len(unique) == 0 {
		return 0, nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return 0, fmt.Errorf("create name directory: %w", err)
	}
	var builder strings.Builder
	for _, title := range unique {
		builder.WriteString(title)
		builder.WriteByte('\n')
	}
	path := filepath.Join(s.dir, file)
	if err := os.WriteFile(path, []byte(builder.String()), 0o644); err != nil {
		return 0, fmt.Errorf("write name list %s: %w", file, err)
	}
	return len(unique), nil
}

// Load returns the named list's titles in file order, blank lines skipped.
// A missing file is not an error and yields an empty slice.
func (s *Store) Load(file string) ([]string, error) {
	f, err := os.Open(filepath.Join(s.dir, file))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open name list %s: %w", file, err)
	}
	defer f.Close()

	var titles []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			titles = append(titles, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read name list %s: %w", file, err)
	}
	return titles, nil
}

// LoadSet returns the named list as a membership set.
func (s *Store) LoadSet(file string) (map[string]struct{}, error) {
	titles, err := s.Load(file)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		set[t] = struct{}{}
	}
	return set, nil
}

// AppendProcessed records titles in the given ledger, skipping ones already
// present.
func (s *Store) AppendProcessed(file string, titles []string) error {
	if len(titles) == 0 {
		return nil
	}
	existing, err := s.LoadSet(file)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create name directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(s.dir, file), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger %s: %w", file, err)
	}
	defer f.Close()

	for _, title := range dedupe(titles) {
		if _, done := existing[title]; done {
			continue
		}
		if _, err := fmt.Fprintln(f, title); err != nil {
			return fmt.Errorf("append to ledger %s: %w", file, err)
		}
	}
	return nil
}

// Remaining filters titles down to the ones not yet in the ledger,
// preserving sorted order.
func (s *Store) Remaining(listFile, ledgerFile string) ([]string, error) {
	titles, err := s.Load(listFile)
	if err != nil {
		return nil, err
	}
	done, err := s.LoadSet(ledgerFile)
	if err != nil {
		return nil, err
	}
	var remaining []string
	for _, t := range dedupe(titles) {
		if _, ok := done[t]; !ok {
			remaining = append(remaining, t)
		}
	}
	return remaining, nil
}

// Sample returns up to limit titles chosen at random. limit <= 0 or limit >=
// len(titles) returns the input unchanged.
func Sample(titles []string, limit int) []string {
	if limit <= 0 || limit >= len(titles) {
		return titles
	}
	shuffled := make([]string, len(titles))
	copy(shuffled, titles)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:limit]
}

func dedupe(titles []string) []string {
	seen := make(map[string]struct{}, len(titles))
	out := make([]string, 0, len(titles))
	for _, title := range titles {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		if _, ok := seen[title]; ok {
			continue
		}
		seen[title] = struct{}{}
		out = append(out, title)
	}
	sort.Strings(out)
	return out
}
