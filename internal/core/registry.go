package core

import (
	"fmt"
	"sort"
	"sync"

	"github.com/verscout/verscout/client"
)

// Info describes a registered adapter: which ecosystem it serves, its
// default upstream, and the credential environment variables it reads.
type Info struct {
	Ecosystem     string   `json:"ecosystem"`
	DefaultURL    string   `json:"default_url,omitempty"`
	Description   string   `json:"description,omitempty"`
	CredentialEnv []string `json:"credential_env,omitempty"`
}

// Factory creates an adapter instance for a given base URL.
type Factory func(baseURL string, c *client.Client) Adapter

var (
	factories = make(map[string]Factory)
	infos     = make(map[string]Info)
	mu        sync.RWMutex
)

// Register adds an adapter factory to the global registry. Called from
// adapter package init; import the all package to register everything.
func Register(info Info, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[info.Ecosystem] = factory
	infos[info.Ecosystem] = info
}

// New creates an adapter for the given ecosystem.
// If baseURL is empty, the ecosystem's default upstream is used.
func New(ecosystem string, baseURL string, c *client.Client) (Adapter, error) {
	mu.RLock()
	factory, ok := factories[ecosystem]
	info := infos[ecosystem]
	mu.RUnlock()

	if !ok {
		return nil, &InvalidInputError{Ecosystem: ecosystem, Reason: "unknown ecosystem"}
	}

	if baseURL == "" {
		baseURL = info.DefaultURL
	}

	if c == nil {
		c = client.DefaultClient()
	}

	return factory(baseURL, c), nil
}

// Supported reports whether an adapter is registered for the ecosystem.
func Supported(ecosystem string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := factories[ecosystem]
	return ok
}

// Ecosystems returns the infos of all registered adapters, sorted by
// ecosystem tag.
func Ecosystems() []Info {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]Info, 0, len(infos))
	for _, info := range infos {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ecosystem < out[j].Ecosystem })
	return out
}

// DefaultURL returns the default upstream URL for an ecosystem.
func DefaultURL(ecosystem string) string {
	mu.RLock()
	defer mu.RUnlock()
	return infos[ecosystem].DefaultURL
}

// InvalidInputError reports a malformed query: an unknown ecosystem or
// an identifier that does not fit the ecosystem's shape.
type InvalidInputError struct {
	Ecosystem string
	Name      string
	Reason    string
}

func (e *InvalidInputError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: invalid package %q: %s", e.Ecosystem, e.Name, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Ecosystem, e.Reason)
}
