package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeStore(); err != nil {
		return err
	}
	c.normalizeResolver()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.ProjectRoot = strings.TrimSpace(c.Paths.ProjectRoot)
	if c.Paths.ProjectRoot == "" {
		if value, ok := os.LookupEnv("SLATE_PROJECT_ROOT"); ok {
			c.Paths.ProjectRoot = strings.TrimSpace(value)
		}
	}
	if c.Paths.ProjectRoot != "" {
		if c.Paths.ProjectRoot, err = expandPath(c.Paths.ProjectRoot); err != nil {
			return fmt.Errorf("paths.project_root: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeStore() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = defaultStoreBackend
	}
	if strings.TrimSpace(c.Store.SQLitePath) == "" {
		c.Store.SQLitePath = filepath.Join(c.Paths.DataDir, defaultSQLiteName)
	}
	var err error
	if c.Store.SQLitePath, err = expandPath(c.Store.SQLitePath); err != nil {
		return fmt.Errorf("store.sqlite_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeResolver() {
	c.Resolver.DefaultStudio = strings.TrimSpace(c.Resolver.DefaultStudio)
	if c.Resolver.DefaultStudio == "" {
		if value, ok := os.LookupEnv("SLATE_STUDIO"); ok {
			c.Resolver.DefaultStudio = strings.TrimSpace(value)
		}
	}
	c.Resolver.DefaultGroup = strings.TrimSpace(c.Resolver.DefaultGroup)
	if c.Resolver.DefaultGroup == "" {
		c.Resolver.DefaultGroup = defaultGroup
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
