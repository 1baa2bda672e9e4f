// Package cargo resolves latest versions from crates.io.
package cargo

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
	DefaultURL = "https://crates.io"
	ecosystem  = "cargo"
)

func init() {
	core.Register(core.Info{
		Ecosystem:   ecosystem,
		DefaultURL:  DefaultURL,
		Description: "Rust crates (crates.io API)",
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

type crateResponse struct {
	Crate    crateInfo      `json:"crate"`
	Versions []versionEntry `json:"versions"`
}

type crateInfo struct {
	MaxStableVersion string `json:"max_stable_version"`
	MaxVersion       string `json:"max_version"`
}

type versionEntry struct {
	Num       string    `json:"num"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	Yanked    bool      `json:"yanked"`
}

func (a *Adapter) Fetch(ctx context.Context, q core.Query) (*core.Feed, error) {
	reqURL := fmt.Sprintf("%s/api/v1/crates/%s", a.baseURL, q.Name)

	var resp crateResponse
	if err := a.client.GetJSON(ctx, reqURL, &resp); err != nil {
		if httpErr, ok := err.(*client.HTTPError); ok && httpErr.IsNotFound() {
			return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
		}
		return nil, err
	}

	feed := &core.Feed{Preferred: resp.Crate.MaxStableVersion}
	if feed.Preferred == "" {
		feed.Preferred = resp.Crate.MaxVersion
	}
	for _, v := range resp.Versions {
		if v.Yanked {
			continue
		}
		cand := core.Candidate{
			Version:     v.Num,
			PublishedAt: v.CreatedAt,
		}
		if v.Checksum != "" {
			cand.Digest = "sha256:" + v.Checksum
		}
		feed.Candidates = append(feed.Candidates, cand)
	}

	if len(feed.Candidates) == 0 {
		return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
	}
	return feed, nil
}
