// Package core provides shared types, the adapter registry, and error
// normalization for the resolution engine.
package core

import (
	"context"
	"strings"
	"time"
)

// Query identifies one package lookup. Immutable once constructed.
type Query struct {
	// Ecosystem selects the adapter, e.g. "npm", "pypi", "docker".
	Ecosystem string `json:"ecosystem"`

	// Name is the package identifier in the ecosystem's own shape:
	// "@babel/core" for npm, "com.google.guava:guava" for maven,
	// "hashicorp/consul/aws" for terraform modules.
	Name string `json:"name"`

	// Hint constrains selection, e.g. a Docker tag suffix ("alpine")
	// or "snapshot" for Maven.
	Hint string `json:"hint,omitempty"`

	// Registry overrides the adapter's default upstream: a registry host
	// for docker, a chart repository URL for helm, a proxy URL for golang.
	Registry string `json:"registry,omitempty"`
}

// Key returns the cache/coalescing key for the query.
func (q Query) Key() string {
	return strings.Join([]string{q.Ecosystem, q.Name, q.Hint, q.Registry}, "\x00")
}

// Record is the resolved latest version of one package. Never mutated
// after creation.
type Record struct {
	Ecosystem     string    `json:"ecosystem"`
	Name          string    `json:"name"`
	LatestVersion string    `json:"latest_version"`
	Digest        string    `json:"digest,omitempty"`
	PublishedAt   time.Time `json:"published_at,omitzero"`
}

// ErrorKind classifies a failed lookup. The set is closed: every adapter
// failure maps to exactly one kind.
type ErrorKind string

const (
	KindNotFound            ErrorKind = "not_found"
	KindRegistryUnavailable ErrorKind = "registry_unavailable"
	KindRateLimited         ErrorKind = "rate_limited"
	KindInvalidInput        ErrorKind = "invalid_input"
	KindAuthFailure         ErrorKind = "auth_failure"
	KindTimeout             ErrorKind = "timeout"
	KindUnknown             ErrorKind = "unknown"
)

// LookupError is a failed lookup attributed to one query.
type LookupError struct {
	Ecosystem string    `json:"ecosystem"`
	Name      string    `json:"name"`
	Kind      ErrorKind `json:"kind"`
	Message   string    `json:"message"`
}

func (e LookupError) Error() string {
	return string(e.Kind) + ": " + e.Ecosystem + "/" + e.Name + ": " + e.Message
}

// BatchResult aggregates the outcomes of one batch. Order within each
// sequence follows completion, not request order; callers correlate by
// (ecosystem, name).
type BatchResult struct {
	Results []Record      `json:"results"`
	Errors  []LookupError `json:"lookup_errors"`
}

// Candidate is one raw version reported by a registry.
type Candidate struct {
	Version     string
	Digest      string
	PublishedAt time.Time
}

// Feed is the normalized upstream response of an adapter fetch.
type Feed struct {
	// Preferred is the registry-reported latest version ("" if the
	// registry does not report one). Trusted when the query has no hint.
	Preferred string

	Candidates []Candidate
}

// Versions returns the candidate version strings.
func (f *Feed) Versions() []string {
	versions := make([]string, len(f.Candidates))
	for i, c := range f.Candidates {
		versions[i] = c.Version
	}
	return versions
}

// Candidate returns the candidate for a version, if present.
func (f *Feed) Candidate(version string) (Candidate, bool) {
	for _, c := range f.Candidates {
		if c.Version == version {
			return c, true
		}
	}
	return Candidate{}, false
}

// Comparator orders raw version strings according to one ecosystem's
// versioning grammar and selects the latest.
type Comparator interface {
	// SelectLatest returns the latest version among versions, honoring
	// the hint. It fails rather than returning an unrelated version when
	// the hint matches nothing.
	SelectLatest(versions []string, hint string) (string, error)
}

// Adapter converts one package lookup into an upstream call and parses
// the response into a Feed. Adapters are stateless beyond their HTTP
// client and pre-loaded credentials.
type Adapter interface {
	Ecosystem() string
	Fetch(ctx context.Context, q Query) (*Feed, error)
	Comparator() Comparator
}

// DigestResolver is implemented by adapters that can only resolve a
// content digest after the version has been selected (e.g. docker
// manifest digests).
type DigestResolver interface {
	ResolveDigest(ctx context.Context, q Query, version string) (string, error)
}
