// Package helm resolves latest chart versions from a Helm repository.
//
// Helm has no central default registry, so every query must carry the
// repository URL. The repository's index.yaml lists all chart entries.
package helm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/verscout/verscout/client"
	"github.com/verscout/verscout/internal/core"
	"github.com/verscout/verscout/internal/vercmp"
)

const ecosystem = "helm"

func init() {
	core.Register(core.Info{
		Ecosystem:   ecosystem,
		Description: "Helm charts (repository index.yaml, registry URL required)",
	}, func(baseURL string, c *client.Client) core.Adapter {
		return New(baseURL, c)
	})
}

type Adapter struct {
	baseURL string
	client  *client.Client
}

func New(baseURL string, c *client.Client) *Adapter {
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

type repoIndex struct {
	Entries map[string][]chartEntry `yaml:"entries"`
}

type chartEntry struct {
	Version string `yaml:"version"`
	Digest  string `yaml:"digest"`
	Created string `yaml:"created"`
}

func (a *Adapter) Fetch(ctx context.Context, q core.Query) (*core.Feed, error) {
	if a.baseURL == "" {
		return nil, &core.InvalidInputError{
			Ecosystem: ecosystem,
			Name:      q.Name,
			Reason:    "chart repository URL required",
		}
	}
	reqURL := fmt.Sprintf("%s/index.yaml", a.baseURL)

	body, err := a.client.Get(ctx, reqURL)
	if err != nil {
		if httpErr, ok := err.(*client.HTTPError); ok && httpErr.IsNotFound() {
			return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
		}
		return nil, err
	}

	var index repoIndex
	if err := yaml.Unmarshal(body, &index); err != nil {
		return nil, fmt.Errorf("parsing helm index: %w", err)
	}

	entries := index.Entries[q.Name]
	if len(entries) == 0 {
		return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
	}

	feed := &core.Feed{}
	for _, e := range entries {
		cand := core.Candidate{Version: e.Version}
		if e.Digest != "" {
			cand.Digest = "sha256:" + strings.TrimPrefix(e.Digest, "sha256:")
		}
		if e.Created != "" {
			cand.PublishedAt, _ = time.Parse(time.RFC3339Nano, e.Created)
		}
		feed.Candidates = append(feed.Candidates, cand)
	}
	return feed, nil
}
