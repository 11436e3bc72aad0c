package main

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

func seedTestCatalog(t *testing.T, path string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	statements := []string{
		`CREATE TABLE DavItems (Id TEXT PRIMARY KEY, Name TEXT, Path TEXT, CreatedAt TEXT)`,
		`CREATE TABLE DavNzbFiles (Id TEXT PRIMARY KEY, SegmentIds TEXT)`,
		`CREATE TABLE DavRarFiles (Id TEXT PRIMARY KEY, RarParts TEXT)`,
		`INSERT INTO DavItems VALUES
            ('n1', 'heat.mkv', '/content/movies/Heat.1995.1080p-GRP/heat.mkv', '2024-05-01T10:00:00Z')`,
		`INSERT INTO DavNzbFiles VALUES ('n1', '["<h1@x>", "<h2@x>"]')`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestExportCommandEndToEnd(t *testing.T) {
	configPath, outDir := writeTestConfig(t, "")
	seedTestCatalog(t, filepath.Join(filepath.Dir(configPath), "catalog.sqlite"))

	out, err := runCLI(t, []string{"export"}, configPath)
	if err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}

	nzbPath := filepath.Join(outDir, "movies", "Heat.1995.1080p-GRP.nzb")
	data, err := os.ReadFile(nzbPath)
	if err != nil {
		t.Fatalf("nzb should be written: %v", err)
	}
	if !strings.Contains(string(data), "<h1@x>") {
		t.Error("nzb missing segment reference")
	}

	names, err := os.ReadFile(filepath.Join(outDir, "movie_names.txt"))
	if err != nil {
		t.Fatalf("movie names should be written: %v", err)
	}
	if strings.TrimSpace(string(names)) != "Heat (1995)" {
		t.Errorf("movie names = %q", names)
	}
}

func TestNamesListAfterExport(t *testing.T) {
	configPath, _ := writeTestConfig(t, "")
	seedTestCatalog(t, filepath.Join(filepath.Dir(configPath), "catalog.sqlite"))

	if out, err := runCLI(t, []string{"export"}, configPath); err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}

	out, err := runCLI(t, []string{"names", "list", "movies"}, configPath)
	if err != nil {
		t.Fatalf("names list: %v", err)
	}
	requireContains(t, out, "Heat (1995)")

	out, err = runCLI(t, []string{"names", "list", "series"}, configPath)
	if err != nil {
		t.Fatalf("names list series: %v", err)
	}
	requireContains(t, out, "No series titles collected yet")
}

func TestNamesPushWithoutServices(t *testing.T) {
	configPath, _ := writeTestConfig(t, "")

	out, err := runCLI(t, []string{"names", "push", "all"}, configPath)
	if err != nil {
		t.Fatalf("names push: %v", err)
	}
	requireContains(t, out, "Neither Radarr nor Sonarr is enabled")
}
