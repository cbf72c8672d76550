package config

// Pressfile represents the structure of the press.yaml configuration file.
type Pressfile struct {
	Title       string               `yaml:"title"`
	BaseURL     string               `yaml:"base_url"`
	Source      string               `yaml:"source"`
	Output      string               `yaml:"output"`
	CacheDir    string               `yaml:"cache_dir"`
	Parallelism int                  `yaml:"parallelism"`
	Cache       CacheDTO             `yaml:"cache"`
	Assets      AssetsDTO            `yaml:"assets"`
	Plugins     map[string]PluginDTO `yaml:"plugins"`
	Search      SearchDTO            `yaml:"search"`
	Metrics     MetricsDTO           `yaml:"metrics"`
	VCS         VCSDTO               `yaml:"vcs"`
}

// CacheDTO bounds the in-memory artifact cache.
type CacheDTO struct {
	MaxEntries int    `yaml:"max_entries"`
	MaxBytes   string `yaml:"max_bytes"`
}

// AssetsDTO configures asset post-processing.
type AssetsDTO struct {
	Precompress []string `yaml:"precompress"`
}

// PluginDTO represents a plugin definition in the configuration.
type PluginDTO struct {
	Command      []string          `yaml:"command"`
	Capabilities []string          `yaml:"capabilities"`
	Timeout      string            `yaml:"timeout"`
	Memory       string            `yaml:"memory"`
	Isolation    string            `yaml:"isolation"`
	Inputs       []string          `yaml:"inputs"`
	Params       map[string]string `yaml:"params"`
	Env          map[string]string `yaml:"env"`
}

// SearchDTO configures the search-indexer sink.
type SearchDTO struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// MetricsDTO configures the Prometheus endpoint.
type MetricsDTO struct {
	Addr string `yaml:"addr"`
}

// VCSDTO configures change-set seeding.
type VCSDTO struct {
	Since string `yaml:"since"`
}
