// Package golang resolves latest module versions from a Go module proxy.
package golang

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/verscout/verscout/client"
	"github.com/verscout/verscout/internal/core"
	"github.com/verscout/verscout/internal/vercmp"
)

const (
	DefaultURL = "https://proxy.golang.org"
	ecosystem  = "golang"
)

func init() {
	core.Register(core.Info{
		Ecosystem:   ecosystem,
		DefaultURL:  DefaultURL,
		Description: "Go modules (module proxy @latest endpoint)",
	}, func(baseURL string, c *client.Client) core.Adapter {
		return New(baseURL, c)
	})
}

type Adapter struct {
	baseURL string
	client  *client.Client
}

func New(baseURL string, c *client.Client) *Adapter {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Adapter{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  c,
	}
}

func (a *Adapter) Ecosystem() string {
	return ecosystem
}

func (a *Adapter) Comparator() core.Comparator {
	return vercmp.Semver{}
}

type versionInfo struct {
	Version string    `json:"Version"`
	Time    time.Time `json:"Time"`
}

// encodeForProxy encodes a module path according to the goproxy protocol.
// Capital letters are replaced with "!" followed by the lowercase letter.
// https://go.dev/ref/mod#goproxy-protocol
func encodeForProxy(path string) string {
	var b strings.Builder
	for _, r := range path {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune('!')
			b.WriteRune(r + 32) // lowercase
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (a *Adapter) Fetch(ctx context.Context, q core.Query) (*core.Feed, error) {
	encoded := encodeForProxy(q.Name)

	// Without a hint the proxy's @latest answer is authoritative; with a
	// hint the full version list is needed for filtering.
	if q.Hint == "" {
		infoURL := fmt.Sprintf("%s/%s/@latest", a.baseURL, encoded)
		var info versionInfo
		if err := a.client.GetJSON(ctx, infoURL, &info); err != nil {
			if httpErr, ok := err.(*client.HTTPError); ok && httpErr.IsNotFound() {
				return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
			}
			return nil, err
		}
		return &core.Feed{
			Preferred: info.Version,
			Candidates: []core.Candidate{
				{Version: info.Version, PublishedAt: info.Time},
			},
		}, nil
	}

	listURL := fmt.Sprintf("%s/%s/@v/list", a.baseURL, encoded)
	body, err := a.client.GetText(ctx, listURL)
	if err != nil {
		if httpErr, ok := err.(*client.HTTPError); ok && httpErr.IsNotFound() {
			return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
		}
		return nil, err
	}

	feed := &core.Feed{}
	for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		feed.Candidates = append(feed.Candidates, core.Candidate{Version: line})
	}

	if len(feed.Candidates) == 0 {
		return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
	}
	return feed, nil
}
