// Package ghactions resolves latest tags for GitHub Actions.
//
// Actions are versioned by git tag on the owner/repo that hosts them.
// The GitHub tags API returns tags newest-first, so the first entry is
// the preferred answer when no hint narrows the field.
package ghactions

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/verscout/verscout/client"
	"github.com/verscout/verscout/internal/core"
	"github.com/verscout/verscout/internal/vercmp"
)

const (
	DefaultURL = "https://api.github.com"
	ecosystem  = "github-actions"
)

func init() {
	core.Register(core.Info{
		Ecosystem:     ecosystem,
		DefaultURL:    DefaultURL,
		Description:   "GitHub Actions (repository tags API)",
		CredentialEnv: []string{"GITHUB_TOKEN"},
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
		token:   os.Getenv("GITHUB_TOKEN"),
	}
}

func (a *Adapter) Ecosystem() string {
	return ecosystem
}

func (a *Adapter) Comparator() core.Comparator {
	return vercmp.Generic{}
}

type tagEntry struct {
	Name   string `json:"name"`
	Commit struct {
		Sha string `json:"sha"`
	} `json:"commit"`
}

func (a *Adapter) Fetch(ctx context.Context, q core.Query) (*core.Feed, error) {
	parts := strings.Split(q.Name, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, &core.InvalidInputError{
			Ecosystem: ecosystem,
			Name:      q.Name,
			Reason:    "expected owner/repo identifier",
		}
	}

	headers := []client.Header{
		{Name: "Accept", Value: "application/vnd.github.v3+json"},
	}
	if a.token != "" {
		headers = append(headers, client.Header{Name: "Authorization", Value: "Bearer " + a.token})
	}

	reqURL := fmt.Sprintf("%s/repos/%s/%s/tags?per_page=100", a.baseURL, parts[0], parts[1])
	var tags []tagEntry
	if err := a.client.GetJSON(ctx, reqURL, &tags, headers...); err != nil {
		if httpErr, ok := err.(*client.HTTPError); ok && httpErr.IsNotFound() {
			return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
		}
		return nil, err
	}

	if len(tags) == 0 {
		return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
	}

	feed := &core.Feed{Preferred: tags[0].Name}
	for _, t := range tags {
		feed.Candidates = append(feed.Candidates, core.Candidate{
			Version: t.Name,
			Digest:  t.Commit.Sha,
		})
	}
	return feed, nil
}
