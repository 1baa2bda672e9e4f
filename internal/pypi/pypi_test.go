package pypi

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

func query(name string) core.Query {
	return core.Query{Ecosystem: ecosystem, Name: name}
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pypi/requests/json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		resp := map[string]interface{}{
			"info": map[string]interface{}{
				"name":    "requests",
				"version": "2.32.3",
			},
			"releases": map[string]interface{}{
				"2.32.3": []map[string]interface{}{
					{
						"digests":              map[string]string{"sha256": "55365417734eb18255590a9ff9eb97e9e1da868d4ccd6402399eaf68af20a760"},
						"upload_time_iso_8601": "2024-05-29T15:37:47.027000Z",
						"yanked":               false,
					},
				},
				"2.32.2": []map[string]interface{}{
					{
						"digests":              map[string]string{"sha256": "fc06670dd0ed212426dfeb94fc1b983d917c4f9847c863f313c9dfaaffb7c23c"},
						"upload_time_iso_8601": "2024-05-21T14:17:29.000000Z",
						"yanked":               false,
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	adapter := New(server.URL, client.NewClient())
	feed, err := adapter.Fetch(context.Background(), query("requests"))
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if feed.Preferred != "2.32.3" {
		t.Errorf("expected preferred '2.32.3', got %q", feed.Preferred)
	}
	cand, ok := feed.Candidate("2.32.3")
	if !ok {
		t.Fatal("candidate 2.32.3 missing")
	}
	if cand.Digest != "sha256:55365417734eb18255590a9ff9eb97e9e1da868d4ccd6402399eaf68af20a760" {
		t.Errorf("unexpected digest: %q", cand.Digest)
	}
	if cand.PublishedAt.IsZero() {
		t.Error("expected publish time")
	}
}

func TestFetchSkipsYankedReleases(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"info": map[string]interface{}{"version": "1.1.0"},
			"releases": map[string]interface{}{
				"1.0.0": []map[string]interface{}{
					{"digests": map[string]string{"sha256": "aa"}, "yanked": false},
				},
				"1.1.0": []map[string]interface{}{
					{"digests": map[string]string{"sha256": "bb"}, "yanked": true},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	adapter := New(server.URL, client.NewClient())
	feed, err := adapter.Fetch(context.Background(), query("pkg"))
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if feed.Preferred != "" {
		t.Errorf("yanked preferred release should be cleared, got %q", feed.Preferred)
	}
	if _, ok := feed.Candidate("1.1.0"); ok {
		t.Error("fully yanked release should not be a candidate")
	}
	if _, ok := feed.Candidate("1.0.0"); !ok {
		t.Error("healthy release missing from candidates")
	}
}

func TestFetchNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	adapter := New(server.URL, client.NewClient())
	_, err := adapter.Fetch(context.Background(), query("definitely-not-a-package"))
	if !errors.Is(err, client.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
