package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case StoreBackendTOML, StoreBackendSQLite:
	default:
		return fmt.Errorf("store.backend must be %q or %q, got %q", StoreBackendTOML, StoreBackendSQLite, c.Store.Backend)
	}
	if c.Store.Backend == StoreBackendSQLite && c.Store.SQLitePath == "" {
		return errors.New("store.sqlite_path must be set when store.backend is sqlite")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}
