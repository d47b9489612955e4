package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"slate/internal/config"
	"slate/internal/events"
	"slate/internal/logging"
	"slate/internal/resolver"
	"slate/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	log        *slog.Logger

	busOnce sync.Once
	eventBus *events.Bus
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

func (c *commandContext) logger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.log = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.log = logging.NewNop()
			return
		}
		c.log = logger
	})
	return c.log
}

// openStore opens the configured backend. The caller owns the handle.
func (c *commandContext) openStore() (store.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(cfg)
}

// withStore runs fn against a freshly opened store and closes it after.
func (c *commandContext) withStore(fn func(store.Store) error) error {
	st, err := c.openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

// withResolver runs fn against a resolver service backed by a fresh
// store handle.
func (c *commandContext) withResolver(fn func(*resolver.Service) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	return fn(resolver.New(cfg, st, c.bus(), c.logger()))
}

// bus returns the process-wide event bus with the debug log subscriber
// attached.
func (c *commandContext) bus() *events.Bus {
	c.busOnce.Do(func() {
		c.eventBus = events.NewBus(c.logger())
		c.eventBus.Subscribe(func(event events.Event) {
			c.logger().Debug("event", slog.String("kind", event.Kind()))
		})
	})
	return c.eventBus
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
