package brewtap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Formula describes one formula with its stable version and revision.
type Formula struct {
	Name     string
	Tap      string
	Version  string
	Revision int
}

// VersionString renders the version the way Homebrew displays it,
// appending the revision as _N when nonzero.
func (f Formula) VersionString() string {
	if f.Revision > 0 {
		return fmt.Sprintf("%s_%d", f.Version, f.Revision)
	}
	return f.Version
}

type outputRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// LocalClient reads formula information from the local brew installation.
type LocalClient struct {
	binary string
	run    outputRunner
}

// NewLocalClient constructs a client around the brew binary.
func NewLocalClient(binary string) *LocalClient {
	return &LocalClient{
		binary: binaryOr(binary, "brew"),
		run:    defaultOutputRunner,
	}
}

// WithOutputRunner injects a custom brew runner for tests.
func (c *LocalClient) WithOutputRunner(r outputRunner) {
	if c != nil && r != nil {
		c.run = r
	}
}

type brewInfoDocument struct {
	Formulae []struct {
		Name     string `json:"name"`
		FullName string `json:"full_name"`
		Tap      string `json:"tap"`
		Versions struct {
			Stable string `json:"stable"`
		} `json:"versions"`
		Revision int `json:"revision"`
	} `json:"formulae"`
}

type tapInfoDocument []struct {
	Name         string   `json:"name"`
	Installed    bool     `json:"installed"`
	FormulaNames []string `json:"formula_names"`
}

// TapFormulae lists the formulae provided by a tap in user/repo form.
func (c *LocalClient) TapFormulae(ctx context.Context, tap string) ([]string, error) {
	tap = strings.TrimSpace(tap)
	if tap == "" {
		return nil, errors.New("tap name is required")
	}

	output, err := c.run(ctx, c.binary, "tap-info", "--json", tap)
	if err != nil {
		return nil, fmt.Errorf("brew tap-info %s: %w", tap, err)
	}

	var doc tapInfoDocument
	if err := json.Unmarshal(output, &doc); err != nil {
		return nil, fmt.Errorf("parse tap-info output: %w", err)
	}
	if len(doc) == 0 {
		return nil, fmt.Errorf("tap %s not known to brew", tap)
	}
	if !doc[0].Installed {
		return nil, fmt.Errorf("tap %s is not installed", tap)
	}
	return doc[0].FormulaNames, nil
}

// Info fetches version details for the named formulae.
func (c *LocalClient) Info(ctx context.Context, names []string) ([]Formula, error) {
	if len(names) == 0 {
		return nil, errors.New("no formulae requested")
	}

	args := append([]string{"info", "--json=v2"}, names...)
	output, err := c.run(ctx, c.binary, args...)
	if err != nil {
		return nil, fmt.Errorf("brew info: %w", err)
	}

	var doc brewInfoDocument
	if err := json.Unmarshal(output, &doc); err != nil {
		return nil, fmt.Errorf("parse brew info output: %w", err)
	}

	formulae := make([]Formula, 0, len(doc.Formulae))
	for _, entry := range doc.Formulae {
		name := entry.Name
		if name == "" {
			name = entry.FullName
		}
		formulae = append(formulae, Formula{
			Name:     name,
			Tap:      entry.Tap,
			Version:  entry.Versions.Stable,
			Revision: entry.Revision,
		})
	}
	return formulae, nil
}

func defaultOutputRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return output, nil
}

func binaryOr(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
