// Package resolve implements the batch dispatch coordinator.
//
// A batch of package queries fans out to the ecosystem adapters under a
// shared concurrency ceiling. Each unit of work is isolated: its failure
// becomes a LookupError for that one query and never aborts siblings.
// Outcomes are cached (successes longer than errors) and concurrent
// identical lookups are coalesced into a single upstream call.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/verscout/verscout/cache"
	"github.com/verscout/verscout/client"
	"github.com/verscout/verscout/internal/core"
)

const (
	// DefaultConcurrency bounds in-flight adapter calls across all
	// ecosystems in a batch.
	DefaultConcurrency = 10

	// DefaultUnitTimeout is the hard per-lookup timeout.
	DefaultUnitTimeout = 10 * time.Second

	// DefaultSuccessTTL is how long resolved versions stay cached.
	DefaultSuccessTTL = 15 * time.Minute

	// DefaultNegativeTTL is how long errors stay cached, long enough to
	// absorb retry storms against a failing registry, short enough to
	// recover quickly once it is healthy again.
	DefaultNegativeTTL = 45 * time.Second

	// DefaultCacheSize bounds the result cache entry count.
	DefaultCacheSize = 2048
)

// Resolver dispatches batches of package queries to ecosystem adapters.
type Resolver struct {
	client      *client.Client
	cache       *cache.Cache
	breakers    *registryBreakers
	group       singleflight.Group
	concurrency int
	unitTimeout time.Duration
	successTTL  time.Duration
	negativeTTL time.Duration
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClient sets the HTTP client handed to adapters.
func WithClient(c *client.Client) Option {
	return func(r *Resolver) { r.client = c }
}

// WithConcurrency sets the in-flight adapter call ceiling.
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithUnitTimeout sets the hard timeout for one lookup.
func WithUnitTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.unitTimeout = d }
}

// WithTTLs sets the cache TTLs for successful and failed outcomes.
func WithTTLs(success, negative time.Duration) Option {
	return func(r *Resolver) {
		r.successTTL = success
		r.negativeTTL = negative
	}
}

// WithCacheSize bounds the result cache.
func WithCacheSize(n int) Option {
	return func(r *Resolver) { r.cache = cache.New(n) }
}

// New creates a Resolver with the given options.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		cache:       cache.New(DefaultCacheSize),
		breakers:    newRegistryBreakers(),
		concurrency: DefaultConcurrency,
		unitTimeout: DefaultUnitTimeout,
		successTTL:  DefaultSuccessTTL,
		negativeTTL: DefaultNegativeTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		r.client = client.DefaultClient()
	}
	return r
}

// ResolveBatch resolves every query and returns one outcome per query.
// The only batch-level failure is a malformed request: an unknown
// ecosystem or empty identifier rejects the whole batch before any
// network call. Result and error order follows completion, not request
// order.
//
// If ctx is cancelled mid-batch, completed units are reported and the
// rest resolve as Timeout errors; the one-outcome-per-query invariant
// holds either way.
func (r *Resolver) ResolveBatch(ctx context.Context, queries []core.Query) (*core.BatchResult, error) {
	for _, q := range queries {
		if !core.Supported(q.Ecosystem) {
			return nil, &core.InvalidInputError{Ecosystem: q.Ecosystem, Reason: "unknown ecosystem"}
		}
		if q.Name == "" {
			return nil, &core.InvalidInputError{Ecosystem: q.Ecosystem, Reason: "empty package identifier"}
		}
	}

	res := &core.BatchResult{
		Results: []core.Record{},
		Errors:  []core.LookupError{},
	}
	var mu sync.Mutex
	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup

	for _, q := range queries {
		wg.Add(1)
		go func(q core.Query) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				lerr := core.Normalize(q.Ecosystem, q.Name, ctx.Err())
				mu.Lock()
				res.Errors = append(res.Errors, lerr)
				mu.Unlock()
				return
			}

			out := r.resolveOne(ctx, q)
			mu.Lock()
			if out.Record != nil {
				res.Results = append(res.Results, *out.Record)
			} else {
				res.Errors = append(res.Errors, *out.Err)
			}
			mu.Unlock()
		}(q)
	}

	wg.Wait()
	return res, nil
}

// Ecosystems returns the registered adapter infos.
func (r *Resolver) Ecosystems() []core.Info {
	return core.Ecosystems()
}

// BreakerStates reports the open/closed state of the per-registry
// circuit breakers.
func (r *Resolver) BreakerStates() map[string]string {
	return r.breakers.States()
}

// resolveOne serves a single query from the cache or from upstream.
// Concurrent identical lookups share one upstream call.
func (r *Resolver) resolveOne(ctx context.Context, q core.Query) cache.Outcome {
	key := q.Key()
	if out, ok := r.cache.Get(key); ok {
		return out
	}

	v, _, _ := r.group.Do(key, func() (any, error) {
		out := r.fetch(ctx, q)
		ttl := r.successTTL
		if out.Err != nil {
			ttl = r.negativeTTL
		}
		r.cache.Put(key, out, ttl)
		return out, nil
	})
	return v.(cache.Outcome)
}

// fetch executes one unit of work: adapter fetch, version selection,
// digest resolution. Every failure path collapses into a LookupError.
func (r *Resolver) fetch(ctx context.Context, q core.Query) cache.Outcome {
	ctx, cancel := context.WithTimeout(ctx, r.unitTimeout)
	defer cancel()

	adapter, err := core.New(q.Ecosystem, q.Registry, r.client)
	if err != nil {
		return errOutcome(q, err)
	}

	breaker := r.breakers.get(q.Ecosystem + "/" + q.Registry)
	if !breaker.Ready() {
		err := fmt.Errorf("circuit open for %s: %w", q.Ecosystem, client.ErrUnavailable)
		return errOutcome(q, err)
	}

	var feed *core.Feed
	var fetchErr error
	callErr := breaker.Call(func() error {
		feed, fetchErr = adapter.Fetch(ctx, q)
		if availabilityError(fetchErr) {
			return fetchErr // counts toward tripping the breaker
		}
		return nil
	}, 0)
	if callErr != nil {
		return errOutcome(q, callErr)
	}
	if fetchErr != nil {
		return errOutcome(q, fetchErr)
	}

	version := feed.Preferred
	if q.Hint != "" || version == "" {
		version, err = adapter.Comparator().SelectLatest(feed.Versions(), q.Hint)
		if err != nil {
			return errOutcome(q, err)
		}
	}

	rec := core.Record{
		Ecosystem:     q.Ecosystem,
		Name:          q.Name,
		LatestVersion: version,
	}
	if cand, ok := feed.Candidate(version); ok {
		rec.Digest = cand.Digest
		rec.PublishedAt = cand.PublishedAt
	}
	if rec.Digest == "" {
		if dr, ok := adapter.(core.DigestResolver); ok {
			// Digest is best effort; a failed manifest lookup does not
			// void the resolved version.
			if digest, derr := dr.ResolveDigest(ctx, q, version); derr == nil {
				rec.Digest = digest
			}
		}
	}
	return cache.Outcome{Record: &rec}
}

// availabilityError reports whether err indicates the registry itself is
// unhealthy. Only these count toward the circuit breaker; a 404 is a
// perfectly healthy answer.
func availabilityError(err error) bool {
	if err == nil {
		return false
	}
	var (
		httpErr *client.HTTPError
		rateErr *client.RateLimitError
		urlErr  *url.Error
	)
	switch {
	case errors.As(err, &rateErr):
		return true
	case errors.As(err, &httpErr):
		return httpErr.StatusCode >= 500
	case errors.Is(err, client.ErrUnavailable):
		return true
	case errors.As(err, &urlErr):
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	return false
}

func errOutcome(q core.Query, err error) cache.Outcome {
	lerr := core.Normalize(q.Ecosystem, q.Name, err)
	return cache.Outcome{Err: &lerr}
}
