package library

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"nzbforge/internal/logging"
)

const lookupChunkSize = 500

// Store reads the catalog database. All queries are read-only.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger

	// resolved segment-size source, cached after the first probe
	sizeTable   string
	sizeMsgCol  string
	sizeSizeCol string
	probed      bool
}

// Open connects to the catalog in read-only mode.
func Open(path string, logger *slog.Logger) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragma: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open catalog db %s: %w", path, err)
	}
	return &Store{db: db, path: path, logger: logging.WithComponent(logger, "library")}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the catalog file path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// ReleaseFilePaths returns the path of every item backed by either a flat
// segment list or an archive part list.
func (s *Store) ReleaseFilePaths(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT Path FROM DavItems
        WHERE Id IN (SELECT Id FROM DavNzbFiles UNION SELECT Id FROM DavRarFiles)`)
	if err != nil {
		return nil, fmt.Errorf("query release file paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path sql.NullString
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("scan file path: %w", err)
		}
		if path.Valid && path.String != "" {
			paths = append(paths, path.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate file paths: %w", err)
	}
	return paths, nil
}

// NzbFilesByPath fetches flat-segment files for the given item paths.
func (s *Store) NzbFilesByPath(ctx context.Context, paths []string) ([]NzbFile, error) {
	var files []NzbFile
	err := forEachChunk(paths, lookupChunkSize, func(chunk []string) error {
		query := fmt.Sprintf(`
            SELECT f.Id, di.Name, di.Path, di.CreatedAt, f.SegmentIds
            FROM DavNzbFiles f JOIN DavItems di ON di.Id = f.Id
            WHERE di.Path IN (%s)`, placeholders(len(chunk)))
		rows, err := s.db.QueryContext(ctx, query, chunkArgs(chunk)...)
		if err != nil {
			return fmt.Errorf("query nzb files: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				file      NzbFile
				name      sql.NullString
				path      sql.NullString
				createdAt sql.NullString
				segsJSON  []byte
			)
			if err := rows.Scan(&file.ID, &name, &path, &createdAt, &segsJSON); err != nil {
				return fmt.Errorf("scan nzb file: %w", err)
			}
			file.Name = name.String
			file.Path = path.String
			file.CreatedAt = parseTimestamp(createdAt.String)
			file.Segments = DecodeSegments(segsJSON)
			files = append(files, file)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// RarFilesByPath fetches archive files for the given item paths.
func (s *Store) RarFilesByPath(ctx context.Context, paths []string) ([]RarFile, error) {
	var files []RarFile
	err := forEachChunk(paths, lookupChunkSize, func(chunk []string) error {
		query := fmt.Sprintf(`
            SELECT r.Id, di.Name, di.Path, di.CreatedAt, r.RarParts
            FROM DavRarFiles r JOIN DavItems di ON di.Id = r.Id
            WHERE di.Path IN (%s)`, placeholders(len(chunk)))
		rows, err := s.db.QueryContext(ctx, query, chunkArgs(chunk)...)
		if err != nil {
			return fmt.Errorf("query rar files: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				file      RarFile
				name      sql.NullString
				path      sql.NullString
				createdAt sql.NullString
				partsJSON []byte
			)
			if err := rows.Scan(&file.ID, &name, &path, &createdAt, &partsJSON); err != nil {
				return fmt.Errorf("scan rar file: %w", err)
			}
			file.Name = name.String
			file.Path = path.String
			file.CreatedAt = parseTimestamp(createdAt.String)
			file.Parts = DecodeRarParts(partsJSON)
			files = append(files, file)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Preferred segment-size tables, probed before the alphabetical sweep of
// every table in the catalog.
var preferredSizeTables = []string{
	"DavSegments", "Segments", "NzbSegments", "Articles", "DavArticles",
	"Posts", "DavPosts", "UsenetSegments", "NyuuSegments",
}

var (
	sizeMessageColumns = []string{"MessageId", "MessageID", "MsgId", "MsgID", "message_id", "messageId"}
	sizeByteColumns    = []string{"Bytes", "Size", "ByteCount", "Length"}
)

// SegmentSizes looks up article sizes for the given message IDs. The catalog
// schema does not guarantee a segment table, so the first call probes for
// any table carrying both a message-ID column and a size column. Missing
// IDs are simply absent from the result.
func (s *Store) SegmentSizes(ctx context.Context, messageIDs []string) (map[string]int64, error) {
	sizes := make(map[string]int64, len(messageIDs))
	if len(messageIDs) == 0 {
		return sizes, nil
	}

	if err := s.probeSizeSource(ctx); err != nil {
		return nil, err
	}
	if s.sizeTable == "" {
		return sizes, nil
	}

	wanted := make(map[string]struct{}, len(messageIDs))
	unique := make([]string, 0, len(messageIDs))
	for _, id := range messageIDs {
		if _, ok := wanted[id]; ok {
			continue
		}
		wanted[id] = struct{}{}
		unique = append(unique, id)
	}

	err := forEachChunk(unique, lookupChunkSize, func(chunk []string) error {
		query := fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s IN (%s)",
			s.sizeMsgCol, s.sizeSizeCol, s.sizeTable, s.sizeMsgCol, placeholders(len(chunk)))
		rows, err := s.db.QueryContext(ctx, query, chunkArgs(chunk)...)
		if err != nil {
			s.logger.Warn("segment size query failed",
				slog.String("table", s.sizeTable), slog.Any("error", err))
			return nil
		}
		defer rows.Close()

		for rows.Next() {
			var (
				id   sql.NullString
				size sql.NullInt64
			)
			if err := rows.Scan(&id, &size); err != nil {
				return fmt.Errorf("scan segment size: %w", err)
			}
			if !id.Valid || !size.Valid {
				continue
			}
			if _, ok := wanted[id.String]; !ok {
				continue
			}
			if _, have := sizes[id.String]; !have {
				sizes[id.String] = size.Int64
			}
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return sizes, nil
}

func (s *Store) probeSizeSource(ctx context.Context) error {
	if s.probed {
		return nil
	}
	s.probed = true

	tables, err := s.tableNames(ctx)
	if err != nil {
		return err
	}
	existing := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		existing[t] = struct{}{}
	}

	seen := make(map[string]struct{}, len(preferredSizeTables)+len(tables))
	ordered := make([]string, 0, len(preferredSizeTables)+len(tables))
	for _, t := range preferredSizeTables {
		seen[t] = struct{}{}
		ordered = append(ordered, t)
	}
	rest := make([]string, 0, len(tables))
	for _, t := range tables {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		rest = append(rest, t)
	}
	// deterministic probe order beyond the preferred prefix
	sort.Strings(rest)
	ordered = append(ordered, rest...)

	for _, table := range ordered {
		if _, ok := existing[table]; !ok {
			continue
		}
		cols, err := s.tableColumns(ctx, table)
		if err != nil {
			return err
		}
		msgCol := firstPresent(sizeMessageColumns, cols)
		sizeCol := firstPresent(sizeByteColumns, cols)
		if msgCol != "" && sizeCol != "" {
			s.sizeTable, s.sizeMsgCol, s.sizeSizeCol = table, msgCol, sizeCol
			s.logger.Debug("segment size source resolved",
				slog.String("table", table),
				slog.String("message_column", msgCol),
				slog.String("size_column", sizeCol))
			return nil
		}
	}

	s.logger.Warn("no segment size table found, using fallback sizes")
	return nil
}

func (s *Store) tableNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type='table'")
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) tableColumns(ctx context.Context, table string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, fmt.Errorf("inspect table %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]struct{})
	for rows.Next() {
		var (
			cid          int
			name, ctype  string
			notNull, pk  int
			defaultValue sql.NullString
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &defaultValue, &pk); err != nil {
			return nil, fmt.Errorf("scan column info: %w", err)
		}
		cols[name] = struct{}{}
	}
	return cols, rows.Err()
}

func firstPresent(candidates []string, cols map[string]struct{}) string {
	for _, c := range candidates {
		if _, ok := cols[c]; ok {
			return c
		}
	}
	return ""
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func chunkArgs(chunk []string) []any {
	args := make([]any, len(chunk))
	for i, v := range chunk {
		args[i] = v
	}
	return args
}

func forEachChunk(values []string, size int, fn func(chunk []string) error) error {
	for start := 0; start < len(values); start += size {
		end := start + size
		if end > len(values) {
			end = len(values)
		}
		if err := fn(values[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// CreatedOrNow substitutes the current time for files whose catalog
// timestamp could not be parsed.
func CreatedOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
