package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir   string `toml:"log_dir"`
	CacheDir string `toml:"cache_dir"`
}

// Binaries contains overrides for the external tools scriptkit wraps.
// Empty values fall back to the bare command name resolved via PATH.
type Binaries struct {
	Mkvmerge    string `toml:"mkvmerge"`
	Mkvpropedit string `toml:"mkvpropedit"`
	Mkvextract  string `toml:"mkvextract"`
	FFmpeg      string `toml:"ffmpeg"`
	FFprobe     string `toml:"ffprobe"`
	Brew        string `toml:"brew"`
}

// Brew contains configuration for the Homebrew tap comparator.
type Brew struct {
	Tap            string `toml:"tap"`
	APIBaseURL     string `toml:"api_base_url"`
	RequestTimeout int    `toml:"request_timeout"`
	CacheTTLHours  int    `toml:"cache_ttl_hours"`
	CacheEnabled   bool   `toml:"cache_enabled"`
}

// Audio contains configuration for the audio tag stripper.
type Audio struct {
	Jobs       int      `toml:"jobs"`
	Extensions []string `toml:"extensions"`
}

// MKV contains configuration for the Matroska editors.
type MKV struct {
	KeepBackups    bool `toml:"keep_backups"`
	MinFreeSpaceMB int  `toml:"min_free_space_mb"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for scriptkit.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Binaries Binaries `toml:"binaries"`
	Brew     Brew     `toml:"brew"`
	Audio    Audio    `toml:"audio"`
	MKV      MKV      `toml:"mkv"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/scriptkit/config.toml")
}

// Load locates, parses, and normalizes a configuration file. When path is
// empty the default location is used; a missing file yields defaults.
// The second return value reports the resolved path, the third whether a
// file was actually read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	candidate := strings.TrimSpace(path)
	if candidate == "" {
		def, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		candidate = def
	} else {
		expanded, err := expandPath(candidate)
		if err != nil {
			return "", false, err
		}
		candidate = expanded
	}

	info, err := os.Stat(candidate)
	switch {
	case err == nil:
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %s is a directory", candidate)
		}
		return candidate, true, nil
	case errors.Is(err, fs.ErrNotExist):
		if strings.TrimSpace(path) != "" {
			return "", false, fmt.Errorf("config file %s not found", candidate)
		}
		return candidate, false, nil
	default:
		return "", false, fmt.Errorf("inspect config path: %w", err)
	}
}

// EnsureDirectories creates the directories scriptkit writes to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.CacheDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// MkvmergeBinary returns the configured mkvmerge command.
func (c *Config) MkvmergeBinary() string { return binaryOrDefault(c.Binaries.Mkvmerge, "mkvmerge") }

// MkvpropeditBinary returns the configured mkvpropedit command.
func (c *Config) MkvpropeditBinary() string {
	return binaryOrDefault(c.Binaries.Mkvpropedit, "mkvpropedit")
}

// MkvextractBinary returns the configured mkvextract command.
func (c *Config) MkvextractBinary() string {
	return binaryOrDefault(c.Binaries.Mkvextract, "mkvextract")
}

// FFmpegBinary returns the configured ffmpeg command.
func (c *Config) FFmpegBinary() string { return binaryOrDefault(c.Binaries.FFmpeg, "ffmpeg") }

// FFprobeBinary returns the configured ffprobe command.
func (c *Config) FFprobeBinary() string { return binaryOrDefault(c.Binaries.FFprobe, "ffprobe") }

// BrewBinary returns the configured brew command.
func (c *Config) BrewBinary() string { return binaryOrDefault(c.Binaries.Brew, "brew") }

// BrewCachePath returns the SQLite path for the formula version cache.
func (c *Config) BrewCachePath() string {
	return filepath.Join(c.Paths.CacheDir, "brew_versions.db")
}

func binaryOrDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// ExpandPath expands a leading ~ and returns an absolute path.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func expandPath(pathValue string) (string, error) {
	trimmed := strings.TrimSpace(pathValue)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			trimmed = home
		} else {
			trimmed = filepath.Join(home, trimmed[2:])
		}
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", pathValue, err)
	}
	return abs, nil
}
