package sonarr_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"nzbforge/internal/logging"
	"nzbforge/internal/release"
	"nzbforge/internal/services/sonarr"
)

type fakeSonarr struct {
	mu       sync.Mutex
	library  []map[string]any
	lookup   map[string][]map[string]any
	episodes map[string][]map[string]any
	deleted  []string
	commands []map[string]any
	added    []map[string]any
}

func (f *fakeSonarr) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/series", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "secret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(f.library)
	})
	mux.HandleFunc("GET /api/v3/series/lookup", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(f.lookup[r.URL.Query().Get("term")])
	})
	mux.HandleFunc("GET /api/v3/episode", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(f.episodes[r.URL.Query().Get("seriesId")])
	})
	mux.HandleFunc("DELETE /api/v3/episodefile/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.deleted = append(f.deleted, r.PathValue("id"))
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /api/v3/series", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode add payload: %v", err)
		}
		f.mu.Lock()
		f.added = append(f.added, payload)
		f.mu.Unlock()
		payload["id"] = 55
		json.NewEncoder(w).Encode(payload)
	})
	mux.HandleFunc("POST /api/v3/command", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode command payload: %v", err)
		}
		f.mu.Lock()
		f.commands = append(f.commands, payload)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})
	return mux
}

func newService(t *testing.T, fake *fakeSonarr, scope sonarr.DeleteScope) *sonarr.Service {
	t.Helper()
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)
	client, err := sonarr.New(server.URL, "secret", sonarr.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return sonarr.NewService(client, 0, scope, logging.NewNop())
}

func wireEpisodes() []map[string]any {
	return []map[string]any{
		{"id": 1, "seriesId": 9, "seasonNumber": 1, "episodeNumber": 1, "hasFile": true, "episodeFileId": 11},
		{"id": 2, "seriesId": 9, "seasonNumber": 1, "episodeNumber": 2, "hasFile": true, "episodeFileId": 12},
		{"id": 3, "seriesId": 9, "seasonNumber": 2, "episodeNumber": 1, "hasFile": true, "episodeFileId": 21},
		{"id": 4, "seriesId": 9, "seasonNumber": 2, "episodeNumber": 2, "hasFile": false, "episodeFileId": 0},
	}
}

func TestTriggerSearchesSelectiveEpisodeDeletion(t *testing.T) {
	fake := &fakeSonarr{
		library:  []map[string]any{{"id": 9, "title": "The Wire"}},
		episodes: map[string][]map[string]any{"9": wireEpisodes()},
	}
	service := newService(t, fake, sonarr.ScopeEpisode)

	specs := map[string][]release.EpisodeSpec{
		"The Wire": {{Season: 1, Episodes: []int{2}}},
	}
	successful := service.TriggerSearches(context.Background(), []string{"The Wire"}, specs)

	if len(successful) != 1 {
		t.Fatalf("successful = %v", successful)
	}
	if len(fake.deleted) != 1 || fake.deleted[0] != "12" {
		t.Fatalf("deleted = %v, want only file 12", fake.deleted)
	}
	if len(fake.commands) != 1 {
		t.Fatalf("commands = %v", fake.commands)
	}
	cmd := fake.commands[0]
	if cmd["name"] != "EpisodeSearch" {
		t.Errorf("command = %v", cmd["name"])
	}
	ids, _ := cmd["episodeIds"].([]any)
	if len(ids) != 1 || ids[0].(float64) != 2 {
		t.Errorf("episodeIds = %v", cmd["episodeIds"])
	}
}

func TestTriggerSearchesWholeSeasonSpec(t *testing.T) {
	fake := &fakeSonarr{
		library:  []map[string]any{{"id": 9, "title": "The Wire"}},
		episodes: map[string][]map[string]any{"9": wireEpisodes()},
	}
	service := newService(t, fake, sonarr.ScopeEpisode)

	specs := map[string][]release.EpisodeSpec{
		"The Wire": {{Season: 1, Episodes: []int{}}},
	}
	service.TriggerSearches(context.Background(), []string{"The Wire"}, specs)

	if len(fake.deleted) != 2 {
		t.Fatalf("deleted = %v, want both season 1 files", fake.deleted)
	}
}

func TestTriggerSearchesSeasonScopeWidens(t *testing.T) {
	fake := &fakeSonarr{
		library:  []map[string]any{{"id": 9, "title": "The Wire"}},
		episodes: map[string][]map[string]any{"9": wireEpisodes()},
	}
	service := newService(t, fake, sonarr.ScopeSeason)

	// a single-episode spec must still wipe the whole season
	specs := map[string][]release.EpisodeSpec{
		"The Wire": {{Season: 1, Episodes: []int{1}}},
	}
	service.TriggerSearches(context.Background(), []string{"The Wire"}, specs)

	if len(fake.deleted) != 2 {
		t.Fatalf("deleted = %v, want both season 1 files", fake.deleted)
	}
}

func TestTriggerSearchesNoSpecsDeletesEverything(t *testing.T) {
	fake := &fakeSonarr{
		library:  []map[string]any{{"id": 9, "title": "The Wire"}},
		episodes: map[string][]map[string]any{"9": wireEpisodes()},
	}
	service := newService(t, fake, sonarr.ScopeEpisode)

	service.TriggerSearches(context.Background(), []string{"The Wire"}, nil)

	if len(fake.deleted) != 3 {
		t.Fatalf("deleted = %v, want every file", fake.deleted)
	}
}

func TestTriggerSearchesAddsMissingSeries(t *testing.T) {
	fake := &fakeSonarr{
		lookup: map[string][]map[string]any{
			"Severance": {{
				"title":            "Severance",
				"titleSlug":        "severance",
				"tvdbId":           371980,
				"qualityProfileId": 6,
				"rootFolderPath":   "/tv",
				"path":             "/tv/Severance",
			}},
		},
	}
	service := newService(t, fake, sonarr.ScopeEpisode)

	successful := service.TriggerSearches(context.Background(), []string{"Severance"}, nil)

	if len(successful) != 1 {
		t.Fatalf("successful = %v", successful)
	}
	if len(fake.added) != 1 {
		t.Fatalf("added = %v", fake.added)
	}
	payload := fake.added[0]
	addOptions, _ := payload["addOptions"].(map[string]any)
	if addOptions["monitor"] != "existing" || addOptions["searchForMissingEpisodes"] != false {
		t.Errorf("addOptions = %v", payload["addOptions"])
	}
	if len(fake.commands) != 1 || fake.commands[0]["name"] != "SeriesSearch" {
		t.Errorf("commands = %v", fake.commands)
	}
}

func TestPreparePayloadRequiredFields(t *testing.T) {
	if _, ok := sonarr.PreparePayload(&sonarr.Series{Title: "No Path", QualityProfileID: 1, TvdbID: 5, RootFolderPath: "/tv"}); ok {
		t.Error("missing series path should be rejected")
	}
	if _, ok := sonarr.PreparePayload(&sonarr.Series{Title: "No IDs", QualityProfileID: 1, RootFolderPath: "/tv", Path: "/tv/x"}); ok {
		t.Error("missing provider ids should be rejected")
	}

	payload, ok := sonarr.PreparePayload(&sonarr.Series{
		Title:            "Usable",
		QualityProfileID: 2,
		TmdbID:           77,
		Path:             "/tv/Usable",
	})
	if !ok {
		t.Fatal("payload with derived root folder should pass")
	}
	if payload["rootFolderPath"] != "/tv" {
		t.Errorf("rootFolderPath = %v", payload["rootFolderPath"])
	}
	if payload["seriesType"] != "standard" {
		t.Errorf("seriesType = %v", payload["seriesType"])
	}
}
