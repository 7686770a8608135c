package brewtap

import (
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// VersionStatus classifies a local formula against its upstream version.
type VersionStatus string

const (
	StatusCurrent  VersionStatus = "current"
	StatusOutdated VersionStatus = "outdated"
	StatusAhead    VersionStatus = "ahead"
	StatusUnknown  VersionStatus = "unknown"
)

// Comparison pairs a local formula with the upstream lookup result.
type Comparison struct {
	Name     string
	Local    string
	Upstream string
	Status   VersionStatus
	Detail   string
}

// Compare classifies local against upstream.
func Compare(local, upstream Formula) Comparison {
	comparison := Comparison{
		Name:     local.Name,
		Local:    local.VersionString(),
		Upstream: upstream.VersionString(),
	}
	if comparison.Local == "" || comparison.Upstream == "" {
		comparison.Status = StatusUnknown
		comparison.Detail = "missing version information"
		return comparison
	}

	switch CompareVersions(comparison.Local, comparison.Upstream) {
	case 0:
		comparison.Status = StatusCurrent
	case -1:
		comparison.Status = StatusOutdated
	default:
		comparison.Status = StatusAhead
	}
	return comparison
}

// CompareVersions orders two Homebrew version strings, returning -1, 0, or
// 1. Plain x.y.z versions use strict semver ordering; anything Homebrew-
// flavored (revision suffixes like 1.2.3_1, letter suffixes like 1.1.1b,
// r-releases like 2.0r5) falls back to token-wise comparison matching how
// Homebrew orders its own version tokens.
func CompareVersions(a, b string) int {
	if a == b {
		return 0
	}
	av, aErr := semver.NewVersion(strings.TrimPrefix(a, "v"))
	bv, bErr := semver.NewVersion(strings.TrimPrefix(b, "v"))
	if aErr == nil && bErr == nil && !strings.ContainsRune(a, '_') && !strings.ContainsRune(b, '_') {
		return av.Compare(bv)
	}
	return compareTokens(a, b)
}

func compareTokens(a, b string) int {
	as := splitVersionTokens(a)
	bs := splitVersionTokens(b)
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		var at, bt string
		if i < len(as) {
			at = as[i]
		}
		if i < len(bs) {
			bt = bs[i]
		}
		if at == bt {
			continue
		}
		an, aErr := strconv.Atoi(at)
		bn, bErr := strconv.Atoi(bt)
		switch {
		case aErr == nil && bErr == nil:
			if an < bn {
				return -1
			}
			if an > bn {
				return 1
			}
		case aErr == nil:
			// Numeric token outranks text or absence ("1.2.1" > "1.2b", "1.2").
			return 1
		case bErr == nil:
			return -1
		default:
			// Text vs text or absence: lexicographic; "1.1.1b" > "1.1.1".
			if cmp := strings.Compare(at, bt); cmp != 0 {
				return cmp
			}
		}
	}
	return 0
}

// splitVersionTokens breaks a version into alternating numeric and text
// runs: "2.0r5_1" -> ["2", "0", "r", "5", "1"].
func splitVersionTokens(version string) []string {
	version = strings.TrimPrefix(strings.TrimSpace(version), "v")
	fields := strings.FieldsFunc(version, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	var tokens []string
	for _, field := range fields {
		start := 0
		for i := 1; i <= len(field); i++ {
			if i == len(field) || isDigit(field[i-1]) != isDigit(field[i]) {
				tokens = append(tokens, field[start:i])
				start = i
			}
		}
	}
	return tokens
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
