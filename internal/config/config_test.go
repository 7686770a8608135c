package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, _, exists, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected no config file to exist")
	}
	if cfg.Brew.APIBaseURL != defaultBrewAPIBaseURL {
		t.Fatalf("expected default API base URL, got %q", cfg.Brew.APIBaseURL)
	}
	if cfg.Audio.Jobs != defaultAudioJobs {
		t.Fatalf("expected default audio jobs, got %d", cfg.Audio.Jobs)
	}
	if !strings.HasSuffix(cfg.Paths.LogDir, filepath.Join(".local", "share", "scriptkit", "logs")) {
		t.Fatalf("unexpected log dir %q", cfg.Paths.LogDir)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[brew]
tap = "someone/tools"
cache_ttl_hours = 3

[audio]
jobs = 5
extensions = [".MP3", "flac"]

[binaries]
ffmpeg = "/opt/ffmpeg/bin/ffmpeg"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %s to load, got %s exists=%v", path, resolved, exists)
	}
	if cfg.Brew.Tap != "someone/tools" {
		t.Fatalf("unexpected tap %q", cfg.Brew.Tap)
	}
	if cfg.Brew.CacheTTLHours != 3 {
		t.Fatalf("unexpected cache TTL %d", cfg.Brew.CacheTTLHours)
	}
	if cfg.Audio.Jobs != 5 {
		t.Fatalf("unexpected jobs %d", cfg.Audio.Jobs)
	}
	if got := cfg.Audio.Extensions; len(got) != 2 || got[0] != "mp3" || got[1] != "flac" {
		t.Fatalf("extensions not normalized: %v", got)
	}
	if cfg.FFmpegBinary() != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary %q", cfg.FFmpegBinary())
	}
	if cfg.MkvmergeBinary() != "mkvmerge" {
		t.Fatalf("expected mkvmerge fallback, got %q", cfg.MkvmergeBinary())
	}
}

func TestLoadRejectsMissingExplicitFile(t *testing.T) {
	if _, _, _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad tap", func(c *Config) { c.Brew.Tap = "homebrew/core/extra" }},
		{"bad url", func(c *Config) { c.Brew.APIBaseURL = "not a url" }},
		{"bad scheme", func(c *Config) { c.Brew.APIBaseURL = "ftp://example.com" }},
		{"too many jobs", func(c *Config) { c.Audio.Jobs = 128 }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestSampleConfigParses(t *testing.T) {
	var cfg Config
	if err := toml.Unmarshal([]byte(SampleConfig()), &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if cfg.Brew.APIBaseURL != defaultBrewAPIBaseURL {
		t.Fatalf("sample config API base URL drifted: %q", cfg.Brew.APIBaseURL)
	}
	if cfg.Audio.Jobs != defaultAudioJobs {
		t.Fatalf("sample config audio jobs drifted: %d", cfg.Audio.Jobs)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/media")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	if got != filepath.Join(home, "media") {
		t.Fatalf("unexpected expansion %q", got)
	}
}
