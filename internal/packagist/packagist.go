// Package packagist resolves latest versions from Packagist.
package packagist

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
	DefaultURL = "https://repo.packagist.org"
	ecosystem  = "packagist"
)

func init() {
	core.Register(core.Info{
		Ecosystem:   ecosystem,
		DefaultURL:  DefaultURL,
		Description: "Composer packages (Packagist p2 metadata)",
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

type p2Response struct {
	Packages map[string][]p2Version `json:"packages"`
}

type p2Version struct {
	Version string `json:"version"`
	Time    string `json:"time"`
	Dist    struct {
		Shasum string `json:"shasum"`
	} `json:"dist"`
}

func (a *Adapter) Fetch(ctx context.Context, q core.Query) (*core.Feed, error) {
	if !strings.Contains(q.Name, "/") {
		return nil, &core.InvalidInputError{
			Ecosystem: ecosystem,
			Name:      q.Name,
			Reason:    "expected vendor/package identifier",
		}
	}
	reqURL := fmt.Sprintf("%s/p2/%s.json", a.baseURL, q.Name)

	var resp p2Response
	if err := a.client.GetJSON(ctx, reqURL, &resp); err != nil {
		if httpErr, ok := err.(*client.HTTPError); ok && httpErr.IsNotFound() {
			return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
		}
		return nil, err
	}

	versions := resp.Packages[q.Name]
	if len(versions) == 0 {
		return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
	}

	feed := &core.Feed{}
	for _, v := range versions {
		cand := core.Candidate{Version: strings.TrimPrefix(v.Version, "v")}
		if v.Time != "" {
			cand.PublishedAt, _ = time.Parse(time.RFC3339, v.Time)
		}
		if v.Dist.Shasum != "" {
			cand.Digest = "sha1:" + v.Dist.Shasum
		}
		feed.Candidates = append(feed.Candidates, cand)
	}
	return feed, nil
}
