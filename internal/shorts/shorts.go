// Package shorts rewrites YouTube Shorts links into regular watch URLs
// so the standard player UI is available.
package shorts

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNotShorts reports a URL that is not a YouTube Shorts link.
var ErrNotShorts = errors.New("not a YouTube Shorts URL")

var shortsHosts = map[string]bool{
	"youtube.com":              true,
	"www.youtube.com":          true,
	"m.youtube.com":            true,
	"music.youtube.com":        true,
	"youtube-nocookie.com":     true,
	"www.youtube-nocookie.com": true,
	"youtu.be":                 true,
}

// Rewrite converts a Shorts URL into the equivalent watch URL. The start
// offset (t=) survives the rewrite; other query parameters are dropped
// because the Shorts player ignores them.
func Rewrite(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("rewrite shorts url: empty input")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("rewrite shorts url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("rewrite shorts url %q: %w", raw, ErrNotShorts)
	}
	if !shortsHosts[strings.ToLower(parsed.Hostname())] {
		return "", fmt.Errorf("rewrite shorts url %q: %w", raw, ErrNotShorts)
	}

	id, ok := videoID(parsed.Path)
	if !ok {
		return "", fmt.Errorf("rewrite shorts url %q: %w", raw, ErrNotShorts)
	}

	values := url.Values{"v": []string{id}}
	if t := parsed.Query().Get("t"); t != "" {
		values.Set("t", t)
	}
	watch := url.URL{
		Scheme:   "https",
		Host:     "www.youtube.com",
		Path:     "/watch",
		RawQuery: values.Encode(),
	}
	return watch.String(), nil
}

// videoID extracts the video identifier from a /shorts/{id} path.
func videoID(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, "/shorts/")
	if !ok {
		return "", false
	}
	id, _, _ := strings.Cut(rest, "/")
	if id == "" {
		return "", false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return "", false
		}
	}
	return id, true
}
