// Package npm resolves latest versions from the npm registry.
package npm

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/verscout/verscout/client"
	"github.com/verscout/verscout/internal/core"
	"github.com/verscout/verscout/internal/vercmp"
)

const (
	DefaultURL = "https://registry.npmjs.org"
	ecosystem  = "npm"
)

func init() {
	core.Register(core.Info{
		Ecosystem:     ecosystem,
		DefaultURL:    DefaultURL,
		Description:   "npm packages (registry.npmjs.org packuments)",
		CredentialEnv: []string{"NPM_TOKEN"},
	}, func(baseURL string, c *client.Client) core.Adapter {
		return New(baseURL, c)
	})
}

type Adapter struct {
	baseURL string
	client  *client.Client
	token   string
}

func New(baseURL string, c *client.Client) *Adapter {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Adapter{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  c,
		token:   os.Getenv("NPM_TOKEN"),
	}
}

func (a *Adapter) Ecosystem() string {
	return ecosystem
}

func (a *Adapter) Comparator() core.Comparator {
	return vercmp.Semver{}
}

type packumentResponse struct {
	DistTags map[string]string      `json:"dist-tags"`
	Versions map[string]versionInfo `json:"versions"`
	Time     map[string]string      `json:"time"`
}

type versionInfo struct {
	Dist distInfo `json:"dist"`
}

type distInfo struct {
	Shasum    string `json:"shasum"`
	Integrity string `json:"integrity"`
}

func (a *Adapter) Fetch(ctx context.Context, q core.Query) (*core.Feed, error) {
	reqURL := fmt.Sprintf("%s/%s", a.baseURL, url.PathEscape(q.Name))

	var headers []client.Header
	if a.token != "" {
		headers = append(headers, client.Header{Name: "Authorization", Value: "Bearer " + a.token})
	}

	var resp packumentResponse
	if err := a.client.GetJSON(ctx, reqURL, &resp, headers...); err != nil {
		if httpErr, ok := err.(*client.HTTPError); ok && httpErr.IsNotFound() {
			return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
		}
		return nil, err
	}

	if len(resp.Versions) == 0 {
		return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
	}

	feed := &core.Feed{Preferred: resp.DistTags["latest"]}
	for num, v := range resp.Versions {
		var publishedAt time.Time
		if ts, ok := resp.Time[num]; ok {
			publishedAt, _ = time.Parse(time.RFC3339, ts)
		}

		integrity := v.Dist.Integrity
		if integrity == "" && v.Dist.Shasum != "" {
			integrity = "sha1-" + v.Dist.Shasum
		}

		feed.Candidates = append(feed.Candidates, core.Candidate{
			Version:     num,
			Digest:      integrity,
			PublishedAt: publishedAt,
		})
	}
	return feed, nil
}
