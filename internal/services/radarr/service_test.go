package radarr_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"nzbforge/internal/logging"
	"nzbforge/internal/services/radarr"
)

type fakeRadarr struct {
	mu       sync.Mutex
	library  []map[string]any
	lookup   map[string][]map[string]any
	files    map[string][]map[string]any
	deleted  []string
	commands []map[string]any
	added    []map[string]any
}

func (f *fakeRadarr) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/movie", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "secret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(f.library)
	})
	mux.HandleFunc("GET /api/v3/movie/lookup", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(f.lookup[r.URL.Query().Get("term")])
	})
	mux.HandleFunc("GET /api/v3/moviefile", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(f.files[r.URL.Query().Get("movieId")])
	})
	mux.HandleFunc("DELETE /api/v3/moviefile/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.deleted = append(f.deleted, r.PathValue("id"))
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /api/v3/movie", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode add payload: %v", err)
		}
		f.mu.Lock()
		f.added = append(f.added, payload)
		f.mu.Unlock()
		payload["id"] = 99
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

func newService(t *testing.T, fake *fakeRadarr) *radarr.Service {
	t.Helper()
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)
	client, err := radarr.New(server.URL, "secret", radarr.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return radarr.NewService(client, 0, logging.NewNop())
}

func TestTriggerSearchesExistingMovie(t *testing.T) {
	fake := &fakeRadarr{
		library: []map[string]any{
			{"id": 7, "title": "Alien", "tmdbId": 348, "year": 1979},
		},
		files: map[string][]map[string]any{
			"7": {{"id": 101, "movieId": 7}, {"id": 102, "movieId": 7}},
		},
	}
	service := newService(t, fake)

	successful := service.TriggerSearches(context.Background(), []string{"Alien (1979)"})

	if len(successful) != 1 || successful[0] != "Alien (1979)" {
		t.Fatalf("successful = %v", successful)
	}
	if len(fake.deleted) != 2 {
		t.Errorf("deleted = %v, want both files gone", fake.deleted)
	}
	if len(fake.commands) != 1 {
		t.Fatalf("commands = %v", fake.commands)
	}
	cmd := fake.commands[0]
	if cmd["name"] != "MoviesSearch" {
		t.Errorf("command name = %v", cmd["name"])
	}
	ids, _ := cmd["movieIds"].([]any)
	if len(ids) != 1 || ids[0].(float64) != 7 {
		t.Errorf("movieIds = %v", cmd["movieIds"])
	}
	if len(fake.added) != 0 {
		t.Errorf("existing movie should not be re-added: %v", fake.added)
	}
}

func TestTriggerSearchesAddsMissingMovie(t *testing.T) {
	fake := &fakeRadarr{
		lookup: map[string][]map[string]any{
			"Heat (1995)": {{
				"title":            "Heat",
				"titleSlug":        "heat-949",
				"tmdbId":           949,
				"year":             1995,
				"qualityProfileId": 4,
				"rootFolderPath":   "/movies",
			}},
		},
	}
	service := newService(t, fake)

	successful := service.TriggerSearches(context.Background(), []string{"Heat (1995)"})

	if len(successful) != 1 {
		t.Fatalf("successful = %v", successful)
	}
	if len(fake.added) != 1 {
		t.Fatalf("added = %v", fake.added)
	}
	payload := fake.added[0]
	if payload["tmdbId"].(float64) != 949 {
		t.Errorf("payload tmdbId = %v", payload["tmdbId"])
	}
	addOptions, _ := payload["addOptions"].(map[string]any)
	if addOptions["searchForMovie"] != false {
		t.Errorf("addOptions = %v", payload["addOptions"])
	}
	if len(fake.commands) != 1 || fake.commands[0]["name"] != "MoviesSearch" {
		t.Errorf("commands = %v", fake.commands)
	}
}

func TestTriggerSearchesReconcilesByTMDBID(t *testing.T) {
	// library title differs, but lookup's TMDB id matches an entry: the
	// existing entry must be reset instead of a duplicate being added
	fake := &fakeRadarr{
		library: []map[string]any{
			{"id": 3, "title": "Léon: The Professional", "tmdbId": 101},
		},
		lookup: map[string][]map[string]any{
			"The Professional (1994)": {{"title": "The Professional", "tmdbId": 101}},
		},
		files: map[string][]map[string]any{"3": {}},
	}
	service := newService(t, fake)

	successful := service.TriggerSearches(context.Background(), []string{"The Professional (1994)"})

	if len(successful) != 1 {
		t.Fatalf("successful = %v", successful)
	}
	if len(fake.added) != 0 {
		t.Errorf("should not add a duplicate: %v", fake.added)
	}
	if len(fake.commands) != 1 {
		t.Fatalf("commands = %v", fake.commands)
	}
	ids, _ := fake.commands[0]["movieIds"].([]any)
	if len(ids) != 1 || ids[0].(float64) != 3 {
		t.Errorf("search should target library entry 3: %v", fake.commands[0])
	}
}

func TestTriggerSearchesSkipsUnknownTitles(t *testing.T) {
	fake := &fakeRadarr{}
	service := newService(t, fake)

	successful := service.TriggerSearches(context.Background(), []string{"Completely Unknown (2099)"})

	if len(successful) != 0 {
		t.Errorf("successful = %v", successful)
	}
	if len(fake.added) != 0 || len(fake.commands) != 0 {
		t.Error("nothing should be added or searched for an unknown title")
	}
}

func TestPreparePayloadRequiredFields(t *testing.T) {
	if _, ok := radarr.PreparePayload(&radarr.Movie{Title: "No Profile", TmdbID: 1, RootFolderPath: "/m"}); ok {
		t.Error("missing quality profile should be rejected")
	}
	if _, ok := radarr.PreparePayload(&radarr.Movie{Title: "No IDs", QualityProfileID: 1, RootFolderPath: "/m"}); ok {
		t.Error("missing provider ids should be rejected")
	}
	if _, ok := radarr.PreparePayload(nil); ok {
		t.Error("nil movie should be rejected")
	}

	payload, ok := radarr.PreparePayload(&radarr.Movie{
		Title:     "Usable",
		ProfileID: 2,
		ImdbID:    "tt0100",
		Path:      "/movies/Usable",
	})
	if !ok {
		t.Fatal("payload with legacy profileId and derived root folder should pass")
	}
	if payload["rootFolderPath"] != "/movies" {
		t.Errorf("rootFolderPath = %v", payload["rootFolderPath"])
	}
	if payload["minimumAvailability"] != "announced" {
		t.Errorf("minimumAvailability = %v", payload["minimumAvailability"])
	}
}
