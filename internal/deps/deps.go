// Package deps reports availability of the external binaries scriptkit wraps.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"scriptkit/internal/config"
)

// Requirement defines an external dependency scriptkit relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements returns the toolkit's external binary requirements using the
// configured command overrides.
func Requirements(cfg *config.Config) []Requirement {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	return []Requirement{
		{Name: "mkvmerge", Command: cfg.MkvmergeBinary(), Description: "Matroska inspection and remuxing"},
		{Name: "mkvpropedit", Command: cfg.MkvpropeditBinary(), Description: "in-place Matroska property edits"},
		{Name: "mkvextract", Command: cfg.MkvextractBinary(), Description: "track, chapter, and attachment extraction"},
		{Name: "ffmpeg", Command: cfg.FFmpegBinary(), Description: "audio tag stripping"},
		{Name: "ffprobe", Command: cfg.FFprobeBinary(), Description: "stream verification after tag stripping"},
		{Name: "brew", Command: cfg.BrewBinary(), Description: "local tap formula inventory", Optional: true},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of unavailable non-optional dependencies.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
