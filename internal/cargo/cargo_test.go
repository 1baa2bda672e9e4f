package cargo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/verscout/verscout/client"
	"github.com/verscout/verscout/internal/core"
)

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/crates/serde" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"crate": map[string]interface{}{
				"max_stable_version": "1.0.203",
				"max_version":        "1.0.203",
			},
			"versions": []map[string]interface{}{
				{"num": "1.0.203", "checksum": "7253ab4de971e72fb7be983802300c30b5a7f0c2e56fab8abfc6a214307c0094", "created_at": "2024-05-25T17:10:00Z", "yanked": false},
				{"num": "1.0.202", "checksum": "226b61a0d411b2ba5ff6d7f73a476ac4f8bb900373459cd00fab8512828ba395", "created_at": "2024-05-10T08:00:00Z", "yanked": false},
				{"num": "1.0.201", "checksum": "deadbeef", "created_at": "2024-05-01T00:00:00Z", "yanked": true},
			},
		})
	}))
	defer server.Close()

	adapter := New(server.URL, client.NewClient())
	feed, err := adapter.Fetch(context.Background(), core.Query{Ecosystem: ecosystem, Name: "serde"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if feed.Preferred != "1.0.203" {
		t.Errorf("expected preferred '1.0.203', got %q", feed.Preferred)
	}
	if len(feed.Candidates) != 2 {
		t.Fatalf("expected yanked version excluded, got %d candidates", len(feed.Candidates))
	}
	cand, _ := feed.Candidate("1.0.203")
	if cand.Digest != "sha256:7253ab4de971e72fb7be983802300c30b5a7f0c2e56fab8abfc6a214307c0094" {
		t.Errorf("unexpected digest: %q", cand.Digest)
	}
}

func TestFetchPrereleaseOnlyCrate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"crate": map[string]interface{}{
				"max_stable_version": "",
				"max_version":        "0.1.0-alpha.2",
			},
			"versions": []map[string]interface{}{
				{"num": "0.1.0-alpha.2", "yanked": false},
			},
		})
	}))
	defer server.Close()

	adapter := New(server.URL, client.NewClient())
	feed, err := adapter.Fetch(context.Background(), core.Query{Ecosystem: ecosystem, Name: "young-crate"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if feed.Preferred != "0.1.0-alpha.2" {
		t.Errorf("expected max_version fallback, got %q", feed.Preferred)
	}
}

func TestFetchNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	adapter := New(server.URL, client.NewClient())
	_, err := adapter.Fetch(context.Background(), core.Query{Ecosystem: ecosystem, Name: "nope"})
	if !errors.Is(err, client.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
