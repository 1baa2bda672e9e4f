// Package docker resolves latest image tags from an OCI registry.
//
// Docker Hub requires a token even for anonymous pulls, so the adapter
// obtains one from auth.docker.io per repository. Other registries are
// queried with basic auth when DOCKER_USERNAME and DOCKER_PASSWORD are
// set. Tag ordering is numeric-first since image tags are rarely valid
// semver.
package docker

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/verscout/verscout/client"
	"github.com/verscout/verscout/internal/core"
	"github.com/verscout/verscout/internal/vercmp"
)

const (
	DefaultURL     = "https://registry-1.docker.io"
	defaultAuthURL = "https://auth.docker.io"
	ecosystem      = "docker"
)

func init() {
	core.Register(core.Info{
		Ecosystem:     ecosystem,
		DefaultURL:    DefaultURL,
		Description:   "Container image tags (OCI distribution API)",
		CredentialEnv: []string{"DOCKER_USERNAME", "DOCKER_PASSWORD"},
	}, func(baseURL string, c *client.Client) core.Adapter {
		return New(baseURL, c)
	})
}

type Adapter struct {
	baseURL  string
	authURL  string
	client   *client.Client
	username string
	password string
}

func New(baseURL string, c *client.Client) *Adapter {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Adapter{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		authURL:  defaultAuthURL,
		client:   c,
		username: os.Getenv("DOCKER_USERNAME"),
		password: os.Getenv("DOCKER_PASSWORD"),
	}
}

func (a *Adapter) Ecosystem() string {
	return ecosystem
}

func (a *Adapter) Comparator() core.Comparator {
	return vercmp.Tags{}
}

// repository normalizes single-segment Hub names to the library
// namespace, so "alpine" becomes "library/alpine".
func (a *Adapter) repository(name string) string {
	if a.baseURL == DefaultURL && !strings.Contains(name, "/") {
		return "library/" + name
	}
	return name
}

func (a *Adapter) isHub() bool {
	return strings.Contains(a.baseURL, "registry-1.docker.io")
}

type tokenResponse struct {
	Token string `json:"token"`
}

// authHeaders returns the Authorization header for the given repository.
// Docker Hub hands out short-lived anonymous pull tokens; private
// registries take basic auth.
func (a *Adapter) authHeaders(ctx context.Context, repo string) ([]client.Header, error) {
	if a.isHub() {
		tokURL := fmt.Sprintf("%s/token?service=registry.docker.io&scope=repository:%s:pull", a.authURL, repo)
		var tok tokenResponse
		if err := a.client.GetJSON(ctx, tokURL, &tok); err != nil {
			return nil, err
		}
		return []client.Header{{Name: "Authorization", Value: "Bearer " + tok.Token}}, nil
	}
	if a.username != "" && a.password != "" {
		cred := base64.StdEncoding.EncodeToString([]byte(a.username + ":" + a.password))
		return []client.Header{{Name: "Authorization", Value: "Basic " + cred}}, nil
	}
	return nil, nil
}

type tagsResponse struct {
	Tags []string `json:"tags"`
}

func (a *Adapter) Fetch(ctx context.Context, q core.Query) (*core.Feed, error) {
	repo := a.repository(q.Name)
	headers, err := a.authHeaders(ctx, repo)
	if err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/v2/%s/tags/list", a.baseURL, repo)
	var resp tagsResponse
	if err := a.client.GetJSON(ctx, reqURL, &resp, headers...); err != nil {
		if httpErr, ok := err.(*client.HTTPError); ok && httpErr.IsNotFound() {
			return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
		}
		return nil, err
	}

	if len(resp.Tags) == 0 {
		return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
	}

	feed := &core.Feed{}
	for _, tag := range resp.Tags {
		if tag == "latest" {
			continue
		}
		feed.Candidates = append(feed.Candidates, core.Candidate{Version: tag})
	}
	if len(feed.Candidates) == 0 {
		return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
	}
	return feed, nil
}

// ResolveDigest fetches the manifest digest for a resolved tag with a
// HEAD request, which avoids pulling the manifest body.
func (a *Adapter) ResolveDigest(ctx context.Context, q core.Query, version string) (string, error) {
	repo := a.repository(q.Name)
	headers, err := a.authHeaders(ctx, repo)
	if err != nil {
		return "", err
	}
	headers = append(headers, client.Header{
		Name:  "Accept",
		Value: "application/vnd.docker.distribution.manifest.v2+json, application/vnd.oci.image.index.v1+json",
	})

	reqURL := fmt.Sprintf("%s/v2/%s/manifests/%s", a.baseURL, repo, version)
	respHeaders, err := a.client.Head(ctx, reqURL, headers...)
	if err != nil {
		return "", err
	}

	digest := respHeaders.Get("Docker-Content-Digest")
	if digest == "" {
		return "", fmt.Errorf("registry returned no digest for %s:%s", repo, version)
	}
	return digest, nil
}
