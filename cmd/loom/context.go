package main

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"loom/internal/config"
	"loom/internal/index"
	"loom/internal/logging"
	"loom/internal/registry"
	"loom/internal/sequencer"
	"loom/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
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

// appServices is the wired application graph one command invocation uses.
type appServices struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	index    *index.Index
	seq      *sequencer.Sequencer
	registry *registry.Registry
}

// withServices builds the service graph, runs fn, and tears the graph down.
func (c *commandContext) withServices(fn func(*appServices) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{filepath.Join(cfg.Paths.LogDir, "loom.log")},
	})
	if err != nil {
		return err
	}

	idx, err := index.Open(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = idx.Close() }()

	st := store.New(cfg, logger)
	seq := sequencer.New(cfg, st, idx, logger)

	return fn(&appServices{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		index:    idx,
		seq:      seq,
		registry: registry.New(seq, logger),
	})
}
