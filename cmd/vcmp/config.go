package main

import (
	"fmt"
	"strings"

	"github.com/pthm/vcmp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// loadConfig reads --config, if given, and applies flag overrides.
func loadConfig(cmd *cobra.Command) (vcmp.Config, error) {
	c := vcmp.DefaultConfig()
	if configPath != "" {
		var err error
		if c, err = vcmp.LoadConfigFile(configPath); err != nil {
			return vcmp.Config{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("components") {
		c.Components = components
		c.Bundle = vcmp.BundleConfig{}
	}
	if flags.Changed("log-level") {
		c.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		c.Log.Format = logFormat
	}
	return c, c.Validate()
}

// newLogger builds a development (console) or production (json) logger.
func newLogger(lc vcmp.LogConfig) (*zap.Logger, error) {
	var zc zap.Config
	switch strings.ToLower(lc.Format) {
	case "", "console":
		zc = zap.NewDevelopmentConfig()
	case "json":
		zc = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", lc.Format)
	}

	if lc.Level != "" {
		level, err := zap.ParseAtomicLevel(lc.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = level
	}
	return zc.Build()
}

// newExpander builds an Expander from the loaded config.
func newExpander() (*vcmp.Expander, error) {
	f, err := cfg.Fetcher()
	if err != nil {
		return nil, err
	}
	return vcmp.New(f, cfg.Options(logger)...), nil
}
