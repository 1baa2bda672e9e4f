package ghactions

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
		if r.URL.Path != "/repos/actions/checkout/tags" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "application/vnd.github.v3+json" {
			t.Errorf("unexpected accept header: %q", got)
		}
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{
			{"name": "v4.1.6", "commit": map[string]string{"sha": "a5ac7e51b41094c92402da3b24376905380afc29"}},
			{"name": "v4.1.5", "commit": map[string]string{"sha": "0ad4b8fadaa221de15dcec353f45205ec38ea70b"}},
			{"name": "v4", "commit": map[string]string{"sha": "a5ac7e51b41094c92402da3b24376905380afc29"}},
		})
	}))
	defer server.Close()

	adapter := New(server.URL, client.NewClient())
	feed, err := adapter.Fetch(context.Background(), core.Query{Ecosystem: ecosystem, Name: "actions/checkout"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if feed.Preferred != "v4.1.6" {
		t.Errorf("expected newest tag 'v4.1.6', got %q", feed.Preferred)
	}
	cand, ok := feed.Candidate("v4.1.6")
	if !ok {
		t.Fatal("candidate v4.1.6 missing")
	}
	if cand.Digest != "a5ac7e51b41094c92402da3b24376905380afc29" {
		t.Errorf("expected commit sha digest, got %q", cand.Digest)
	}
}

func TestFetchInvalidIdentifier(t *testing.T) {
	adapter := New("http://unused.example", client.NewClient())
	for _, name := range []string{"checkout", "a/b/c", "/x", "x/"} {
		_, err := adapter.Fetch(context.Background(), core.Query{Ecosystem: ecosystem, Name: name})
		var invalidErr *core.InvalidInputError
		if !errors.As(err, &invalidErr) {
			t.Errorf("expected InvalidInputError for %q, got %v", name, err)
		}
	}
}

func TestFetchEmptyTagList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{})
	}))
	defer server.Close()

	adapter := New(server.URL, client.NewClient())
	_, err := adapter.Fetch(context.Background(), core.Query{Ecosystem: ecosystem, Name: "someone/untagged"})
	if !errors.Is(err, client.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	adapter := New(server.URL, client.NewClient())
	_, err := adapter.Fetch(context.Background(), core.Query{Ecosystem: ecosystem, Name: "nobody/nothing"})
	if !errors.Is(err, client.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
