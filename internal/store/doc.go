// Package store provides persistent storage for presets, models and tags using SQLite.
//
// # Architecture
//
// The store package splits persistence into three interfaces:
//
//   - PresetStore: presets, favorites and use counts
//   - ModelStore: the model catalog
//   - TagStore: tags with derived usage counts
//
// Store combines them. SQLiteStore implements Store on top of a single
// database connection guarded by a mutex; every exported method takes the
// lock once and releases it before returning, so operations are atomic with
// respect to each other within one process.
//
// # Data Models
//
//   - Preset: named bundle of ModelConfig, SamplingConfig, PromptConfig and
//     ImageConfig, plus opaque ResourceDownloads
//   - Model: catalog entry referenced from presets by id (soft reference)
//   - Tag: unique name and color; Count is derived, never stored
//
// # Embedded Objects
//
// The four configuration objects, tag lists and model scopes are stored as
// JSON text columns. A column that fails to decode, or is missing one of its
// required keys, is replaced by a fixed default (DefaultModelConfig,
// DefaultSamplingConfig, DefaultPromptConfig, DefaultImageConfig, empty
// lists) and the row is still returned. This is the only mechanism that lets
// older database files be read.
//
// # SQLite Configuration
//
//	PRAGMA journal_mode=WAL;
//
// The default driver is modernc.org/sqlite ("sqlite"). WithDriver(DriverCGO)
// selects github.com/mattn/go-sqlite3 ("sqlite3") for cgo builds.
//
// Database file locations:
//
//   - Default: ~/.local/share/fooocus-config/fooocus_config.db
//   - Testing: a file under t.TempDir() or :memory:
//
// # Error Handling
//
//   - ErrNotFound: GetPreset/GetModel found no row
//   - ErrDuplicateTag: CreateTag with a name that exists
//
// Update and delete against a missing id affect zero rows and return nil.
//
// # Testing
//
// Use NewMockStore() for unit tests of code built on Store.
// Use NewSQLiteStore(path) with a temporary path for integration tests.
package store
