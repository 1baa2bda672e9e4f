// Package toolver resolves latest versions of developer tools by asking
// a local version manager CLI.
//
// The command defaults to mise ("mise latest <tool>") and can be
// overridden with VERSCOUT_TOOL_COMMAND. Output is either a bare
// version line or a small YAML/JSON document with a "version" field.
package toolver

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/verscout/verscout/client"
	"github.com/verscout/verscout/internal/core"
	"github.com/verscout/verscout/internal/vercmp"
)

const (
	DefaultCommand = "mise"
	ecosystem      = "tool"
)

func init() {
	core.Register(core.Info{
		Ecosystem:   ecosystem,
		Description: "Developer tools (local version manager CLI)",
	}, func(baseURL string, c *client.Client) core.Adapter {
		return New(baseURL, c)
	})
}

type Adapter struct {
	command string
}

func New(baseURL string, _ *client.Client) *Adapter {
	command := baseURL
	if command == "" {
		command = os.Getenv("VERSCOUT_TOOL_COMMAND")
	}
	if command == "" {
		command = DefaultCommand
	}
	return &Adapter{command: command}
}

func (a *Adapter) Ecosystem() string {
	return ecosystem
}

func (a *Adapter) Comparator() core.Comparator {
	return vercmp.Generic{}
}

type versionDoc struct {
	Version string `yaml:"version" json:"version"`
}

func (a *Adapter) Fetch(ctx context.Context, q core.Query) (*core.Feed, error) {
	cmd := exec.CommandContext(ctx, a.command, "latest", q.Name)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if _, ok := err.(*exec.ExitError); ok {
			// Version managers exit non-zero for unknown tools.
			return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
		}
		// Anything else means the version manager itself is unusable.
		return nil, fmt.Errorf("running %s: %v: %w", a.command, err, client.ErrUnavailable)
	}

	version := parseOutput(stdout.Bytes())
	if version == "" {
		return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: q.Name}
	}
	return &core.Feed{
		Preferred:  version,
		Candidates: []core.Candidate{{Version: version}},
	}, nil
}

// parseOutput accepts a bare version line or a YAML/JSON document with a
// "version" field. YAML is a superset of JSON so one decode covers both.
func parseOutput(out []byte) string {
	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "{") || strings.Contains(trimmed, "version:") {
		var doc versionDoc
		if err := yaml.Unmarshal([]byte(trimmed), &doc); err == nil && doc.Version != "" {
			return doc.Version
		}
	}
	// First line only, in case the tool prints trailing notices.
	if i := strings.IndexByte(trimmed, '\n'); i >= 0 {
		trimmed = trimmed[:i]
	}
	return strings.TrimSpace(trimmed)
}
