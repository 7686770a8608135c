package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeBrew()
	c.normalizeAudio()
	c.normalizeMKV()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeBrew() {
	c.Brew.Tap = strings.TrimSpace(c.Brew.Tap)
	c.Brew.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.Brew.APIBaseURL), "/")
	if c.Brew.APIBaseURL == "" {
		c.Brew.APIBaseURL = defaultBrewAPIBaseURL
	}
	if c.Brew.RequestTimeout <= 0 {
		c.Brew.RequestTimeout = defaultBrewRequestTimeout
	}
	if c.Brew.CacheTTLHours <= 0 {
		c.Brew.CacheTTLHours = defaultBrewCacheTTLHours
	}
}

func (c *Config) normalizeAudio() {
	if c.Audio.Jobs <= 0 {
		c.Audio.Jobs = defaultAudioJobs
	}
	if len(c.Audio.Extensions) == 0 {
		c.Audio.Extensions = defaultAudioExtensions()
	}
	normalized := make([]string, 0, len(c.Audio.Extensions))
	for _, ext := range c.Audio.Extensions {
		ext = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(ext, ".")))
		if ext != "" {
			normalized = append(normalized, ext)
		}
	}
	c.Audio.Extensions = normalized
}

func (c *Config) normalizeMKV() {
	if c.MKV.MinFreeSpaceMB <= 0 {
		c.MKV.MinFreeSpaceMB = defaultMinFreeSpaceMB
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
