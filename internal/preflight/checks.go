package preflight

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"scriptkit/internal/config"
	"scriptkit/internal/deps"
)

// Result captures the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// CheckBinaries runs the binary availability checks for the toolkit.
func CheckBinaries(cfg *config.Config) []Result {
	statuses := deps.CheckBinaries(deps.Requirements(cfg))
	results := make([]Result, 0, len(statuses))
	for _, status := range statuses {
		result := Result{Name: status.Name, Passed: status.Available}
		switch {
		case status.Available:
			result.Detail = status.Command
		case status.Optional:
			result.Passed = true
			result.Detail = status.Detail + " (optional)"
		default:
			result.Detail = status.Detail
		}
		results = append(results, result)
	}
	return results
}

// CheckDiskSpace verifies that dir has at least minFreeMB megabytes free.
func CheckDiskSpace(dir string, minFreeMB int) Result {
	const name = "disk space"
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return Result{Name: name, Detail: "no directory provided"}
	}

	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("statfs %s: %v", dir, err)}
	}

	freeBytes := stat.Bavail * uint64(stat.Bsize)
	freeMB := freeBytes / (1024 * 1024)
	if minFreeMB > 0 && freeMB < uint64(minFreeMB) {
		return Result{
			Name:   name,
			Detail: fmt.Sprintf("%d MB free in %s, need %d MB", freeMB, dir, minFreeMB),
		}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d MB free in %s", freeMB, dir)}
}

// HTTPDoer describes the HTTP client used by the reachability check.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// CheckBrewAPI verifies the formulae.brew.sh API is reachable.
func CheckBrewAPI(ctx context.Context, baseURL string, client HTTPDoer) Result {
	const name = "brew API"
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing base URL"}
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base+"/formula/git.json", nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("build request: %v", err)}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("unreachable: %v", err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Result{Name: name, Detail: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}
