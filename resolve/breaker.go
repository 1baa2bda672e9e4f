package resolve

import (
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"
)

// registryBreakers holds one circuit breaker per (ecosystem, registry)
// pair so a dead registry fails fast without affecting the others.
type registryBreakers struct {
	mu       sync.RWMutex
	breakers map[string]*circuit.Breaker
}

func newRegistryBreakers() *registryBreakers {
	return &registryBreakers{
		breakers: make(map[string]*circuit.Breaker),
	}
}

func (rb *registryBreakers) get(key string) *circuit.Breaker {
	rb.mu.RLock()
	breaker, exists := rb.breakers[key]
	rb.mu.RUnlock()

	if exists {
		return breaker
	}

	rb.mu.Lock()
	defer rb.mu.Unlock()

	// Double-check after acquiring write lock
	if breaker, exists := rb.breakers[key]; exists {
		return breaker
	}

	// Trips after 5 consecutive availability failures, resets with
	// exponential backoff.
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	opts := &circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(5),
	}
	breaker = circuit.NewBreakerWithOptions(opts)

	rb.breakers[key] = breaker
	return breaker
}

// States returns the current state of all breakers, keyed by
// ecosystem/registry (useful for liveness reporting).
func (rb *registryBreakers) States() map[string]string {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	states := make(map[string]string)
	for key, breaker := range rb.breakers {
		if breaker.Tripped() {
			states[key] = "open"
		} else {
			states[key] = "closed"
		}
	}
	return states
}
