package config

import (
	"fmt"
	"strings"
)

// Validate checks the config for:
//   - a version
//   - positive sizes, counts and timeouts
//   - a non-negative edge increment
//   - a snapshot path when load/save is requested
func Validate(cfg *Config) error {
	if cfg.Version == "" {
		return fmt.Errorf("config: version is required")
	}
	var errs []string
	positive := func(name string, v int) {
		if v < 1 {
			errs = append(errs, fmt.Sprintf("%s must be positive, got %d", name, v))
		}
	}
	positive("store.cache_capacity", cfg.Store.CacheCapacity)
	positive("server.read_timeout_ms", cfg.Server.ReadTimeoutMs)
	positive("server.write_timeout_ms", cfg.Server.WriteTimeoutMs)
	positive("server.idle_timeout_ms", cfg.Server.IdleTimeoutMs)
	positive("ingest.workers", cfg.Ingest.Workers)
	positive("ingest.queue_depth", cfg.Ingest.QueueDepth)
	positive("ingest.timeout_ms", cfg.Ingest.TimeoutMs)

	if cfg.Ingest.EdgeIncrement < 0 {
		errs = append(errs, fmt.Sprintf("ingest.edge_increment must not be negative, got %v", cfg.Ingest.EdgeIncrement))
	}
	if cfg.Snapshot.Path == "" && (cfg.Snapshot.LoadOnStart || cfg.Snapshot.SaveOnExit) {
		errs = append(errs, "snapshot.path is required when load_on_start or save_on_exit is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// RestartRequired lists settings that differ between old and next but are
// only read at startup.
func RestartRequired(old, next *Config) []string {
	var out []string
	if old.Store.CacheCapacity != next.Store.CacheCapacity {
		out = append(out, "store.cache_capacity")
	}
	if old.Server != next.Server {
		out = append(out, "server")
	}
	if old.Ingest.Workers != next.Ingest.Workers || old.Ingest.QueueDepth != next.Ingest.QueueDepth {
		out = append(out, "ingest.workers/queue_depth")
	}
	if old.Snapshot != next.Snapshot {
		out = append(out, "snapshot")
	}
	return out
}
