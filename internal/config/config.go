package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete engine configuration.
type Config struct {
	Version int          `yaml:"version" json:"version"`
	SLA     SLAConfig    `yaml:"sla" json:"sla"`
	Cache   CacheConfig  `yaml:"cache" json:"cache"`
	Ranking RankingConfig `yaml:"ranking" json:"ranking"`
	Stores  StoresConfig `yaml:"stores" json:"stores"`
	Server  ServerConfig `yaml:"server" json:"server"`
}

// SLAConfig bounds a single Execute call.
type SLAConfig struct {
	// CeilingMs is the outer deadline the Coordinator enforces across the
	// whole plan. Default 2000.
	CeilingMs float64 `yaml:"ceiling_ms" json:"ceiling_ms"`
}

// CacheConfig tunes the ResultCache. Only TTLSeconds reaches the cache:
// its capacity is fixed at 100 entries and Size is not applied.
type CacheConfig struct {
	Size      int `yaml:"size" json:"size"`
	TTLSeconds int `yaml:"ttl_sec" json:"ttl_sec"`
}

// RankingConfig tunes the Aggregator/Ranker.
type RankingConfig struct {
	// StoreWeights overrides the default per-store composite-score
	// multiplier; keys are StoreKind strings (RELATIONAL, VECTOR, ...).
	StoreWeights map[string]float64 `yaml:"store_weights" json:"store_weights"`
	// MaxPerSource is the diversity cap; 0 disables diversity filtering.
	MaxPerSource int `yaml:"max_per_source" json:"max_per_source"`
}

// StoresConfig carries per-store connection strings handed to adapters
// at startup. Empty fields mean that store is not wired for this
// deployment; the Planner treats it as unavailable.
type StoresConfig struct {
	RelationalDSN    string `yaml:"relational_dsn" json:"relational_dsn"`
	GraphURI         string `yaml:"graph_uri" json:"graph_uri"`
	GraphUsername    string `yaml:"graph_username" json:"graph_username"`
	GraphPassword    string `yaml:"graph_password" json:"graph_password"`
	KVAddr           string `yaml:"kv_addr" json:"kv_addr"`
	FilesystemRoot   string `yaml:"filesystem_root" json:"filesystem_root"`
	VectorDimensions int    `yaml:"vector_dimensions" json:"vector_dimensions"`
}

// ServerConfig configures ambient concerns shared across entrypoints.
type ServerConfig struct {
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// NewConfig returns a Config populated with the built-in defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		SLA: SLAConfig{
			CeilingMs: 2000,
		},
		Cache: CacheConfig{
			Size:       100,
			TTLSeconds: 3600,
		},
		Ranking: RankingConfig{
			StoreWeights: map[string]float64{
				"VECTOR":     1.2,
				"RELATIONAL": 1.0,
				"GRAPH":      0.9,
				"FILESYSTEM": 0.8,
				"KV":         0.7,
			},
			MaxPerSource: 5,
		},
		Stores: StoresConfig{
			VectorDimensions: 256,
		},
		Server: ServerConfig{
			LogLevel: "info",
		},
	}
}

// GetUserConfigPath follows the XDG Base Directory spec:
//   - $XDG_CONFIG_HOME/fedq/config.yaml (if set)
//   - ~/.config/fedq/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fedq", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "fedq", "config.yaml")
	}
	return filepath.Join(home, ".config", "fedq", "config.yaml")
}

func loadUserConfig() (*Config, error) {
	path := GetUserConfigPath()
	if !fileExists(path) {
		return nil, nil
	}
	cfg := NewConfig()
	if err := cfg.loadYAML(path); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User config (~/.config/fedq/config.yaml)
//  3. Project config (.fedq.yaml in dir)
//  4. Environment variables (FEDQ_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, ".fedq.yaml")
	if fileExists(yamlPath) {
		return c.loadYAML(yamlPath)
	}
	ymlPath := filepath.Join(dir, ".fedq.yml")
	if fileExists(ymlPath) {
		return c.loadYAML(ymlPath)
	}
	return nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	if other.SLA.CeilingMs != 0 {
		c.SLA.CeilingMs = other.SLA.CeilingMs
	}
	if other.Cache.Size != 0 {
		c.Cache.Size = other.Cache.Size
	}
	if other.Cache.TTLSeconds != 0 {
		c.Cache.TTLSeconds = other.Cache.TTLSeconds
	}
	for k, v := range other.Ranking.StoreWeights {
		if c.Ranking.StoreWeights == nil {
			c.Ranking.StoreWeights = map[string]float64{}
		}
		c.Ranking.StoreWeights[k] = v
	}
	if other.Ranking.MaxPerSource != 0 {
		c.Ranking.MaxPerSource = other.Ranking.MaxPerSource
	}
	if other.Stores.RelationalDSN != "" {
		c.Stores.RelationalDSN = other.Stores.RelationalDSN
	}
	if other.Stores.GraphURI != "" {
		c.Stores.GraphURI = other.Stores.GraphURI
	}
	if other.Stores.GraphUsername != "" {
		c.Stores.GraphUsername = other.Stores.GraphUsername
	}
	if other.Stores.GraphPassword != "" {
		c.Stores.GraphPassword = other.Stores.GraphPassword
	}
	if other.Stores.KVAddr != "" {
		c.Stores.KVAddr = other.Stores.KVAddr
	}
	if other.Stores.FilesystemRoot != "" {
		c.Stores.FilesystemRoot = other.Stores.FilesystemRoot
	}
	if other.Stores.VectorDimensions != 0 {
		c.Stores.VectorDimensions = other.Stores.VectorDimensions
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}
}

// applyEnvOverrides applies FEDQ_* environment variable overrides over
// the recognized options.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SLA_MS"); v != "" {
		if ms, err := strconv.ParseFloat(v, 64); err == nil && ms > 0 {
			c.SLA.CeilingMs = ms
		}
	}
	if v := os.Getenv("CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Cache.Size = n
		}
	}
	if v := os.Getenv("CACHE_TTL_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Cache.TTLSeconds = n
		}
	}
	if v := os.Getenv("MAX_PER_SOURCE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Ranking.MaxPerSource = n
		}
	}
	for _, kind := range []string{"RELATIONAL", "VECTOR", "GRAPH", "FILESYSTEM", "KV"} {
		if v := os.Getenv("STORE_WEIGHT_" + kind); v != "" {
			if w, err := strconv.ParseFloat(v, 64); err == nil && w >= 0 {
				if c.Ranking.StoreWeights == nil {
					c.Ranking.StoreWeights = map[string]float64{}
				}
				c.Ranking.StoreWeights[kind] = w
			}
		}
	}
	if v := os.Getenv("FEDQ_RELATIONAL_DSN"); v != "" {
		c.Stores.RelationalDSN = v
	}
	if v := os.Getenv("FEDQ_GRAPH_URI"); v != "" {
		c.Stores.GraphURI = v
	}
	if v := os.Getenv("FEDQ_GRAPH_USERNAME"); v != "" {
		c.Stores.GraphUsername = v
	}
	if v := os.Getenv("FEDQ_GRAPH_PASSWORD"); v != "" {
		c.Stores.GraphPassword = v
	}
	if v := os.Getenv("FEDQ_KV_ADDR"); v != "" {
		c.Stores.KVAddr = v
	}
	if v := os.Getenv("FEDQ_FILESYSTEM_ROOT"); v != "" {
		c.Stores.FilesystemRoot = v
	}
	if v := os.Getenv("FEDQ_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
}

// Validate rejects a Config that would produce nonsensical plans or
// rankings.
func (c *Config) Validate() error {
	if c.SLA.CeilingMs <= 0 {
		return fmt.Errorf("sla.ceiling_ms must be positive, got %f", c.SLA.CeilingMs)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache.size must be non-negative, got %d", c.Cache.Size)
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache.ttl_sec must be non-negative, got %d", c.Cache.TTLSeconds)
	}
	if c.Ranking.MaxPerSource < 0 {
		return fmt.Errorf("ranking.max_per_source must be non-negative, got %d", c.Ranking.MaxPerSource)
	}
	for kind, w := range c.Ranking.StoreWeights {
		if w < 0 {
			return fmt.Errorf("ranking.store_weights[%s] must be non-negative, got %f", kind, w)
		}
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return fmt.Errorf("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := c.WriteYAMLString()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// WriteYAMLString renders the configuration as a YAML document.
func (c *Config) WriteYAMLString() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// CacheTTL returns Cache.TTLSeconds as a time.Duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
