package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verscout/verscout/internal/core"
)

func successOutcome(version string) Outcome {
	return Outcome{Record: &core.Record{Ecosystem: "npm", Name: "left-pad", LatestVersion: version}}
}

func TestGetPutRoundTrip(t *testing.T) {
	c := New(8)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Put("k", successOutcome("1.3.0"), time.Minute)
	out, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "1.3.0", out.Record.LatestVersion)
}

func TestLazyExpiry(t *testing.T) {
	c := New(8)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Put("k", successOutcome("1.0.0"), time.Minute)

	_, ok := c.Get("k")
	assert.True(t, ok)

	// Advance past the TTL; the entry is collected on the next read.
	now = now.Add(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestNegativeOutcomeExpiresIndependently(t *testing.T) {
	c := New(8)
	now := time.Now()
	c.now = func() time.Time { return now }

	lerr := core.LookupError{Ecosystem: "npm", Name: "nope", Kind: core.KindNotFound}
	c.Put("err", Outcome{Err: &lerr}, 45*time.Second)
	c.Put("ok", successOutcome("2.0.0"), 15*time.Minute)

	now = now.Add(time.Minute)
	_, ok := c.Get("err")
	assert.False(t, ok, "negative entry should have expired")
	out, ok := c.Get("ok")
	require.True(t, ok, "success entry should still be fresh")
	assert.Equal(t, "2.0.0", out.Record.LatestVersion)
}

func TestLRUEviction(t *testing.T) {
	c := New(3)
	for i := 0; i < 3; i++ {
		c.Put(fmt.Sprintf("k%d", i), successOutcome("1.0.0"), time.Minute)
	}

	// Touch k0 so k1 becomes the eviction victim.
	_, ok := c.Get("k0")
	require.True(t, ok)

	c.Put("k3", successOutcome("1.0.0"), time.Minute)

	_, ok = c.Get("k1")
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok = c.Get("k0")
	assert.True(t, ok)
	_, ok = c.Get("k3")
	assert.True(t, ok)
	assert.Equal(t, 3, c.Len())
}

func TestPutOverwritesExisting(t *testing.T) {
	c := New(2)
	c.Put("k", successOutcome("1.0.0"), time.Minute)
	c.Put("k", successOutcome("2.0.0"), time.Minute)

	out, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "2.0.0", out.Record.LatestVersion)
	assert.Equal(t, 1, c.Len())
}
