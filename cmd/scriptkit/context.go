package main

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"scriptkit/internal/config"
	"scriptkit/internal/logging"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string
	jsonFlag      *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	log        *slog.Logger
	logErr     error
	closeLog   func() error
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
		jsonFlag:      jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// commandLogger builds the process logger once and augments it with fields
// carried on the command's context. Logs go to stderr so stdout stays
// parseable, and append to scriptkit.log under the configured log
// directory when a config is available.
func (c *commandContext) commandLogger(cmd *cobra.Command) (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		var level, format, logDir string
		if c.logLevelFlag != nil {
			level = strings.TrimSpace(*c.logLevelFlag)
		}
		if c.logFormatFlag != nil {
			format = strings.TrimSpace(*c.logFormatFlag)
		}
		if cfg, err := c.ensureConfig(); err == nil && cfg != nil {
			if level == "" {
				level = cfg.Logging.Level
			}
			if format == "" {
				format = cfg.Logging.Format
			}
			logDir = cfg.Paths.LogDir
		}
		opts := logging.Options{
			Level:  level,
			Format: format,
			Output: os.Stderr,
		}
		c.log, c.closeLog, c.logErr = logging.NewToFile(opts, logDir, "scriptkit.log")
	})
	if c.logErr != nil {
		return nil, c.logErr
	}
	return logging.WithContext(cmd.Context(), c.log), nil
}

// closeLogger releases the log file handle, if one was opened.
func (c *commandContext) closeLogger() {
	if c.closeLog != nil {
		_ = c.closeLog()
	}
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
