// Package verscout resolves the latest published version of packages
// across language and artifact ecosystems.
//
// A batch of queries fans out concurrently to per-ecosystem registry
// adapters (npm, PyPI, Go modules, crates.io, RubyGems, Maven, NuGet,
// Packagist, Docker registries, Helm repositories, the Terraform
// registry, GitHub Actions, and local tool version managers). Each
// query resolves independently: one failing lookup becomes an entry in
// BatchResult.Errors and never disturbs its siblings. Outcomes are
// cached with separate success and negative TTLs, identical concurrent
// lookups are coalesced, and per-registry circuit breakers stop a dead
// upstream from slowing the rest of a batch.
//
// Typical use:
//
//	r := verscout.NewResolver()
//	out, err := r.ResolveBatch(ctx, []verscout.Query{
//		{Ecosystem: "npm", Name: "left-pad"},
//		{Ecosystem: "docker", Name: "alpine", Hint: "alpine"},
//	})
package verscout

import (
	"context"

	_ "github.com/verscout/verscout/all"
	"github.com/verscout/verscout/internal/core"
	"github.com/verscout/verscout/resolve"
)

// Re-exported core types. The internal packages hold the implementation;
// callers only need these.
type (
	Query       = core.Query
	Record      = core.Record
	BatchResult = core.BatchResult
	LookupError = core.LookupError
	ErrorKind   = core.ErrorKind
	Info        = core.Info
)

const (
	KindNotFound            = core.KindNotFound
	KindRegistryUnavailable = core.KindRegistryUnavailable
	KindRateLimited         = core.KindRateLimited
	KindInvalidInput        = core.KindInvalidInput
	KindAuthFailure         = core.KindAuthFailure
	KindTimeout             = core.KindTimeout
	KindUnknown             = core.KindUnknown
)

// Resolver dispatches query batches. Safe for concurrent use.
type Resolver = resolve.Resolver

// Option configures a Resolver.
type Option = resolve.Option

var (
	WithClient      = resolve.WithClient
	WithConcurrency = resolve.WithConcurrency
	WithUnitTimeout = resolve.WithUnitTimeout
	WithTTLs        = resolve.WithTTLs
	WithCacheSize   = resolve.WithCacheSize
)

// NewResolver creates a Resolver with every ecosystem adapter
// registered.
func NewResolver(opts ...Option) *Resolver {
	return resolve.New(opts...)
}

// Resolve looks up a single package with a throwaway resolver. For
// repeated lookups build one Resolver and reuse its cache.
func Resolve(ctx context.Context, q Query) (*Record, *LookupError, error) {
	out, err := resolve.New().ResolveBatch(ctx, []Query{q})
	if err != nil {
		return nil, nil, err
	}
	if len(out.Results) > 0 {
		return &out.Results[0], nil, nil
	}
	return nil, &out.Errors[0], nil
}

// Ecosystems returns the registered adapters, sorted by ecosystem tag.
func Ecosystems() []Info {
	return core.Ecosystems()
}

// Supported reports whether an ecosystem tag has a registered adapter.
func Supported(ecosystem string) bool {
	return core.Supported(ecosystem)
}

// QueryFromPURL converts a package URL ("pkg:npm/left-pad") into a
// Query for the matching ecosystem.
func QueryFromPURL(purl string) (Query, error) {
	return core.QueryFromPURL(purl)
}
