// Package pypi resolves latest versions from pypi.org.
package pypi

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
	DefaultURL = "https://pypi.org"
	ecosystem  = "pypi"
)

func init() {
	core.Register(core.Info{
		Ecosystem:   ecosystem,
		DefaultURL:  DefaultURL,
		Description: "PyPI packages (JSON API, PEP 440 ordering)",
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
	return vercmp.PEP440{}
}

type packageResponse struct {
	Info     infoBlock                `json:"info"`
	Releases map[string][]releaseFile `json:"releases"`
}

type infoBlock struct {
	Version string `json:"version"`
}

type releaseFile struct {
	Digests       map[string]string `json:"digests"`
	UploadTimeISO string            `json:"upload_time_iso_8601"`
	Yanked        bool              `json:"yanked"`
}

func (a *Adapter) Fetch(ctx context.Context, q core.Query) (*core.Feed, error) {
	reqURL := fmt.Sprintf("%s/pypi/%s/json", a.baseURL, q.Name)

	var resp packageResponse
	if err := a.client.GetJSON(ctx, reqURL, &resp, client.Header{Name: "Accept", Value: "application/json"}); err != nil {
		if httpErr, ok := err.(*client.HTTPError); ok && httpErr.IsNotFound() {
			return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
		}
		return nil, err
	}

	feed := &core.Feed{Preferred: resp.Info.Version}
	for num, files := range resp.Releases {
		cand := core.Candidate{Version: num}

		for _, f := range files {
			if f.Yanked {
				continue
			}
			if cand.PublishedAt.IsZero() && f.UploadTimeISO != "" {
				cand.PublishedAt, _ = time.Parse(time.RFC3339, f.UploadTimeISO)
			}
			if cand.Digest == "" {
				if sha256, ok := f.Digests["sha256"]; ok {
					cand.Digest = "sha256:" + sha256
				}
			}
		}

		// A release with every file yanked does not count.
		if len(files) > 0 && cand.Digest == "" && cand.PublishedAt.IsZero() {
			allYanked := true
			for _, f := range files {
				if !f.Yanked {
					allYanked = false
					break
				}
			}
			if allYanked {
				if num == feed.Preferred {
					feed.Preferred = ""
				}
				continue
			}
		}

		feed.Candidates = append(feed.Candidates, cand)
	}

	if len(feed.Candidates) == 0 && feed.Preferred == "" {
		return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
	}
	return feed, nil
}
