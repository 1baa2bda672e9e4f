// Package maven resolves latest versions from Maven repositories.
//
// Identifiers use "groupId:artifactId" coordinates. The repository's
// maven-metadata.xml is authoritative for the version list; its
// <release> element, when present, names the preferred version.
package maven

import (
	"context"
	"fmt"
	"strings"

	"github.com/verscout/verscout/client"
	"github.com/verscout/verscout/internal/core"
	"github.com/verscout/verscout/internal/vercmp"
)

const (
	DefaultURL = "https://repo.maven.apache.org/maven2"
	ecosystem  = "maven"
)

func init() {
	core.Register(core.Info{
		Ecosystem:   ecosystem,
		DefaultURL:  DefaultURL,
		Description: "Maven artifacts (maven-metadata.xml)",
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
	return vercmp.Maven{}
}

// ParseCoordinates splits "groupId:artifactId" into its two parts.
func ParseCoordinates(name string) (group, artifact string, err error) {
	parts := strings.Split(name, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", &core.InvalidInputError{
			Ecosystem: ecosystem,
			Name:      name,
			Reason:    "expected groupId:artifactId coordinates",
		}
	}
	return parts[0], parts[1], nil
}

type metadata struct {
	Versioning versioning `xml:"versioning"`
}

type versioning struct {
	Latest      string   `xml:"latest"`
	Release     string   `xml:"release"`
	LastUpdated string   `xml:"lastUpdated"`
	Versions    []string `xml:"versions>version"`
}

func (a *Adapter) Fetch(ctx context.Context, q core.Query) (*core.Feed, error) {
	group, artifact, err := ParseCoordinates(q.Name)
	if err != nil {
		return nil, err
	}

	groupPath := strings.ReplaceAll(group, ".", "/")
	reqURL := fmt.Sprintf("%s/%s/%s/maven-metadata.xml", a.baseURL, groupPath, artifact)

	var meta metadata
	if err := a.client.GetXML(ctx, reqURL, &meta); err != nil {
		if httpErr, ok := err.(*client.HTTPError); ok && httpErr.IsNotFound() {
			return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
		}
		return nil, err
	}

	if len(meta.Versioning.Versions) == 0 {
		return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
	}

	// <release> excludes SNAPSHOTs, which is what callers without a hint
	// want. <latest> may point at a SNAPSHOT and is ignored.
	feed := &core.Feed{Preferred: meta.Versioning.Release}
	for _, v := range meta.Versioning.Versions {
		feed.Candidates = append(feed.Candidates, core.Candidate{Version: v})
	}
	return feed, nil
}
