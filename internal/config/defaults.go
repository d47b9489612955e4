package config

const (
	defaultDataDir      = "~/.local/share/slate"
	defaultLogDir       = "~/.local/share/slate/logs"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
	defaultGroup        = "default"
	defaultSQLiteName   = "slate.db"
	StoreBackendTOML    = "toml"
	StoreBackendSQLite  = "sqlite"
	defaultStoreBackend = StoreBackendTOML
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Store: Store{
			Backend: defaultStoreBackend,
		},
		Resolver: Resolver{
			DefaultGroup: defaultGroup,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
