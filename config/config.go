// Package config loads vicayad's TOML configuration file with
// github.com/pelletier/go-toml/v2, the TOML library already present in the
// example corpus (standardbeagle/lci's go.mod). The struct shape - grouped
// sections with a Default() base that the file is decoded over - follows
// standardbeagle/lci's internal/config.Config layout.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is vicayad's full configuration surface.
type Config struct {
	Index   Index   `toml:"index"`
	Daemon  Daemon  `toml:"daemon"`
	Search  Search  `toml:"search"`
	Logging Logging `toml:"logging"`
}

// Index configures what gets scanned/watched and where the snapshot lives.
type Index struct {
	Roots        []string `toml:"roots"`
	Exclusions   []string `toml:"exclusions"`
	SnapshotPath string   `toml:"snapshot_path"`

	// MaxMemoryMB bounds the in-memory index size; the daemon logs a
	// warning (it does not enforce a hard cap) when Stats().AllocatedBytes
	// crosses it, per original_source/crates/vicaya-core/src/config.rs.
	MaxMemoryMB int `toml:"max_memory_mb"`

	// RebuildThreshold is the tombstone/total ratio (0, 1] that triggers a
	// full rebuild instead of continued incremental updates.
	RebuildThreshold float64 `toml:"rebuild_threshold"`

	// WatchDebounceMs coalesces bursts of filesystem events for the same
	// path before they reach index.Store.Apply.
	WatchDebounceMs int `toml:"watch_debounce_ms"`
}

// Daemon configures the control socket.
type Daemon struct {
	SocketPath string `toml:"socket_path"`
}

// Search configures default query behavior.
type Search struct {
	MaxResultsDefault int `toml:"max_results_default"`
}

// Logging configures the zap logger construction in cmd/vicayad.
type Logging struct {
	Dev bool `toml:"dev"`
}

// Default returns a Config with the values
// original_source/crates/vicaya-core/src/config.rs uses as defaults.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Index: Index{
			Roots:            nil,
			Exclusions:       []string{".git", "node_modules", "target", "dist", "build", "__pycache__"},
			SnapshotPath:     filepath.Join(home, ".vicaya", "index.snap"),
			MaxMemoryMB:      512,
			RebuildThreshold: 0.25,
			WatchDebounceMs:  500,
		},
		Daemon: Daemon{
			SocketPath: filepath.Join(home, ".vicaya", "vicayad.sock"),
		},
		Search: Search{
			MaxResultsDefault: 50,
		},
		Logging: Logging{Dev: false},
	}
}

// Load reads and parses the TOML file at path over Default()'s values, so
// any key the file omits keeps its default; a key set explicitly to zero
// overrides the default.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	if len(cfg.Index.Roots) == 0 {
		return Config{}, fmt.Errorf("config: index.roots must name at least one directory")
	}

	return cfg, nil
}
