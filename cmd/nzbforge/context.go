package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"nzbforge/internal/config"
	"nzbforge/internal/export"
	"nzbforge/internal/logging"
	"nzbforge/internal/namestore"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
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

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) names() (*namestore.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return namestore.New(cfg.Paths.OutputDir), nil
}

func (c *commandContext) exportOptions() (export.Options, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return export.Options{}, err
	}
	return export.Options{
		OutputDir:            cfg.Paths.OutputDir,
		Group:                cfg.Export.Group,
		BatchSize:            cfg.Export.BatchSize,
		Workers:              cfg.Export.Workers,
		FallbackSegmentBytes: cfg.Export.FallbackSegmentBytes,
		MaxSegmentsPerFile:   cfg.Export.MaxSegmentsPerFile,
		Includes:             cfg.Includes(),
	}, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
