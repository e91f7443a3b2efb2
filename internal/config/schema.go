package config

// Config is the top-level YAML structure.
type Config struct {
	Version  string       `yaml:"version"`
	Store    StoreConf    `yaml:"store"`
	Server   ServerConf   `yaml:"server"`
	Ingest   IngestConf   `yaml:"ingest"`
	Snapshot SnapshotConf `yaml:"snapshot"`
}

// StoreConf sizes the graph store. Changes need a restart.
type StoreConf struct {
	CacheCapacity int `yaml:"cache_capacity"`
}

// ServerConf holds HTTP listener settings. Changes need a restart.
type ServerConf struct {
	Addr           string `yaml:"addr"`
	ReadTimeoutMs  int    `yaml:"read_timeout_ms"`
	WriteTimeoutMs int    `yaml:"write_timeout_ms"`
	IdleTimeoutMs  int    `yaml:"idle_timeout_ms"`
}

// IngestConf tunes the document ingestion engine. EdgeIncrement is applied
// on hot reload; the pool sizes are not.
type IngestConf struct {
	Workers       int     `yaml:"workers"`
	QueueDepth    int     `yaml:"queue_depth"`
	TimeoutMs     int     `yaml:"timeout_ms"`
	EdgeIncrement float64 `yaml:"edge_increment"`
}

// SnapshotConf names where the graph is loaded from at startup and saved to.
// An empty Path disables both.
type SnapshotConf struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"` // empty = pick by file extension
	// LoadOnStart restores the graph from Path when the file exists.
	LoadOnStart bool `yaml:"load_on_start"`
	// SaveOnExit writes the graph to Path during graceful shutdown.
	SaveOnExit bool `yaml:"save_on_exit"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{Version: "v1"}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Store.CacheCapacity == 0 {
		cfg.Store.CacheCapacity = 10000
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeoutMs == 0 {
		cfg.Server.ReadTimeoutMs = 10000
	}
	if cfg.Server.WriteTimeoutMs == 0 {
		cfg.Server.WriteTimeoutMs = 30000
	}
	if cfg.Server.IdleTimeoutMs == 0 {
		cfg.Server.IdleTimeoutMs = 60000
	}
	if cfg.Ingest.Workers == 0 {
		cfg.Ingest.Workers = 4
	}
	if cfg.Ingest.QueueDepth == 0 {
		cfg.Ingest.QueueDepth = 256
	}
	if cfg.Ingest.TimeoutMs == 0 {
		cfg.Ingest.TimeoutMs = 30000
	}
	if cfg.Ingest.EdgeIncrement == 0 {
		cfg.Ingest.EdgeIncrement = 0.01
	}
}
