// Package rubygems resolves latest versions from rubygems.org.
package rubygems

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
	DefaultURL = "https://rubygems.org"
	ecosystem  = "rubygems"
)

func init() {
	core.Register(core.Info{
		Ecosystem:   ecosystem,
		DefaultURL:  DefaultURL,
		Description: "Ruby gems (rubygems.org versions API)",
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
	return vercmp.Generic{}
}

type gemVersion struct {
	Number     string    `json:"number"`
	Platform   string    `json:"platform"`
	Sha        string    `json:"sha"`
	CreatedAt  time.Time `json:"created_at"`
	Prerelease bool      `json:"prerelease"`
}

func (a *Adapter) Fetch(ctx context.Context, q core.Query) (*core.Feed, error) {
	reqURL := fmt.Sprintf("%s/api/v1/versions/%s.json", a.baseURL, q.Name)

	var versions []gemVersion
	if err := a.client.GetJSON(ctx, reqURL, &versions); err != nil {
		if httpErr, ok := err.(*client.HTTPError); ok && httpErr.IsNotFound() {
			return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
		}
		return nil, err
	}

	feed := &core.Feed{}
	for _, v := range versions {
		// Platform-specific builds (java, x86_64-linux, ...) shadow the
		// plain ruby release of the same number.
		if v.Platform != "" && v.Platform != "ruby" {
			continue
		}
		cand := core.Candidate{
			Version:     v.Number,
			PublishedAt: v.CreatedAt,
		}
		if v.Sha != "" {
			cand.Digest = "sha256:" + v.Sha
		}
		feed.Candidates = append(feed.Candidates, cand)
	}

	if len(feed.Candidates) == 0 {
		return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
	}
	return feed, nil
}
