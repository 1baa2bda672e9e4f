// Package nuget resolves latest versions from a NuGet v3 feed.
package nuget

import (
	"context"
	"fmt"
	"strings"

	"github.com/verscout/verscout/client"
	"github.com/verscout/verscout/internal/core"
	"github.com/verscout/verscout/internal/vercmp"
)

const (
	DefaultURL = "https://api.nuget.org"
	ecosystem  = "nuget"
)

func init() {
	core.Register(core.Info{
		Ecosystem:   ecosystem,
		DefaultURL:  DefaultURL,
		Description: "NuGet packages (v3 flat container index)",
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
	return vercmp.Loose{}
}

type indexResponse struct {
	Versions []string `json:"versions"`
}

func (a *Adapter) Fetch(ctx context.Context, q core.Query) (*core.Feed, error) {
	// Flat container IDs are always lowercase.
	id := strings.ToLower(q.Name)
	reqURL := fmt.Sprintf("%s/v3-flatcontainer/%s/index.json", a.baseURL, id)

	var resp indexResponse
	if err := a.client.GetJSON(ctx, reqURL, &resp); err != nil {
		if httpErr, ok := err.(*client.HTTPError); ok && httpErr.IsNotFound() {
			return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
		}
		return nil, err
	}

	if len(resp.Versions) == 0 {
		return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
	}

	feed := &core.Feed{}
	for _, v := range resp.Versions {
		feed.Candidates = append(feed.Candidates, core.Candidate{Version: v})
	}
	return feed, nil
}
