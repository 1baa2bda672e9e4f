// Package terraform resolves latest versions from the Terraform registry.
//
// The identifier's segment count picks the endpoint: "namespace/name"
// is a provider, "namespace/name/provider" is a module.
package terraform

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
	DefaultURL = "https://registry.terraform.io"
	ecosystem  = "terraform"
)

func init() {
	core.Register(core.Info{
		Ecosystem:     ecosystem,
		DefaultURL:    DefaultURL,
		Description:   "Terraform providers and modules (registry v1 API)",
		CredentialEnv: []string{"TFC_TOKEN"},
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
		token:   os.Getenv("TFC_TOKEN"),
	}
}

// headers returns the Bearer header for private registries when a
// token is configured.
func (a *Adapter) headers() []client.Header {
	if a.token == "" {
		return nil
	}
	return []client.Header{{Name: "Authorization", Value: "Bearer " + a.token}}
}

func (a *Adapter) Ecosystem() string {
	return ecosystem
}

func (a *Adapter) Comparator() core.Comparator {
	return vercmp.Semver{}
}

type providerVersions struct {
	Versions []struct {
		Version string `json:"version"`
	} `json:"versions"`
}

type moduleVersions struct {
	Modules []struct {
		Versions []struct {
			Version string `json:"version"`
		} `json:"versions"`
	} `json:"modules"`
}

func (a *Adapter) Fetch(ctx context.Context, q core.Query) (*core.Feed, error) {
	parts := strings.Split(q.Name, "/")

	feed := &core.Feed{}
	switch len(parts) {
	case 2:
		reqURL := fmt.Sprintf("%s/v1/providers/%s/%s/versions", a.baseURL, parts[0], parts[1])
		var resp providerVersions
		if err := a.client.GetJSON(ctx, reqURL, &resp, a.headers()...); err != nil {
			if httpErr, ok := err.(*client.HTTPError); ok && httpErr.IsNotFound() {
				return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
			}
			return nil, err
		}
		for _, v := range resp.Versions {
			feed.Candidates = append(feed.Candidates, core.Candidate{Version: v.Version})
		}
	case 3:
		reqURL := fmt.Sprintf("%s/v1/modules/%s/%s/%s/versions", a.baseURL, parts[0], parts[1], parts[2])
		var resp moduleVersions
		if err := a.client.GetJSON(ctx, reqURL, &resp, a.headers()...); err != nil {
			if httpErr, ok := err.(*client.HTTPError); ok && httpErr.IsNotFound() {
				return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
			}
			return nil, err
		}
		for _, m := range resp.Modules {
			for _, v := range m.Versions {
				feed.Candidates = append(feed.Candidates, core.Candidate{Version: v.Version})
			}
		}
	default:
		return nil, &core.InvalidInputError{
			Ecosystem: ecosystem,
			Name:      q.Name,
			Reason:    "expected namespace/name (provider) or namespace/name/provider (module)",
		}
	}

	if len(feed.Candidates) == 0 {
		return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
	}
	return feed, nil
}
