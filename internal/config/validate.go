package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBrew(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateBrew() error {
	parsed, err := url.Parse(c.Brew.APIBaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("brew.api_base_url: %q is not an absolute URL", c.Brew.APIBaseURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("brew.api_base_url: unsupported scheme %q", parsed.Scheme)
	}
	if tap := c.Brew.Tap; tap != "" && strings.Count(tap, "/") != 1 {
		return fmt.Errorf("brew.tap: %q must use the user/repo form", tap)
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.Jobs > 64 {
		return fmt.Errorf("audio.jobs: %d exceeds the maximum of 64", c.Audio.Jobs)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
