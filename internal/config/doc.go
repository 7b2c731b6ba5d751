// Package config handles configuration loading for fooocus-config.
//
// # Overview
//
// Configuration is optional. Without a file the tool uses Default, which
// stores the database under ~/.local/share/fooocus-config with the pure-Go
// SQLite driver.
//
// # Configuration File
//
// Pass a file with --config. Files ending in .toml are read as TOML,
// everything else as YAML:
//
//	database:
//	  dir: "${HOME}/.local/share/fooocus-config"
//	  driver: sqlite
//	logging:
//	  level: info
//	  format: text
//
// The TOML form uses the same keys:
//
//	[database]
//	dir = "/srv/fooocus"
//	driver = "sqlite3"
//
// # Environment Variable Expansion
//
// ${VAR_NAME} references are replaced with the variable's value before
// parsing. Unset variables expand to the empty string, which then picks up
// the default for that field.
//
// FOOOCUS_CONFIG_DIR, when set, overrides database.dir in both the file and
// the default configuration.
//
// # Validation
//
//   - database.dir must not be empty
//   - database.driver must be "sqlite" (modernc.org/sqlite) or "sqlite3"
//     (github.com/mattn/go-sqlite3, requires cgo)
//   - logging.level must be debug, info, warn or error
//   - logging.format must be text or json
package config
