package fdb

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-ini/ini"
)

// Config represents the fdb configuration
type Config struct {
	configPath string
	ini        *ini.File
}

// HashConfig represents hash algorithm configuration
type HashConfig struct {
	Default string // Default hash algorithm
}

// InventoryConfig represents traversal configuration
type InventoryConfig struct {
	Ignore string // escaped, comma separated basenames
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string // debug, info, warning, error, critical
	Format string // text, json, logfmt
}

// PerformanceConfig represents performance-related configuration
type PerformanceConfig struct {
	HashWorkers int // Number of concurrent hash workers (default: 4)
}

// OutputConfig represents output format configuration
type OutputConfig struct {
	Format string // Duplicate report format: human, json, fdupes
}

// AllConfig represents all configuration options
type AllConfig struct {
	Hash        *HashConfig
	Inventory   *InventoryConfig
	Log         *LogConfig
	Performance *PerformanceConfig
	Output      *OutputConfig
}

// Default configuration values
const (
	DefaultLogLevel     = "warning"
	DefaultLogFormat    = LogFormatText
	DefaultOutputFormat = "human"
	DefaultIgnoreList   = ""
)

// DefaultConfigPath returns $XDG_CONFIG_HOME/fdb/config (or the platform equivalent)
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "fdb", "config")
}

// LoadConfig loads configuration from configPath. A missing file, or an
// empty path, yields the defaults without touching the disk.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{
		configPath: configPath,
	}

	if configPath == "" {
		cfg.ini = ini.Empty()
		if err := cfg.setDefaults(); err != nil {
			return nil, fmt.Errorf("failed to set default config: %w", err)
		}
		return cfg, nil
	}

	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		cfg.ini = ini.Empty()
		if err := cfg.setDefaults(); err != nil {
			return nil, fmt.Errorf("failed to set default config: %w", err)
		}
		return cfg, nil
	}

	iniFile, err := ini.Load(configPath)
	if err != nil {
		return nil, usageError("load config", configPath, "failed to load config file: %v", err)
	}
	cfg.ini = iniFile
	return cfg, nil
}

// Path returns the file the configuration is loaded from and saved to
func (c *Config) Path() string {
	return c.configPath
}

// setDefaults sets default configuration values
func (c *Config) setDefaults() error {
	defaults := []struct {
		section, key, value string
	}{
		{"filehash", "default", DefaultHashAlgorithm},
		{"inventory", "ignore", DefaultIgnoreList},
		{"log", "level", DefaultLogLevel},
		{"log", "format", DefaultLogFormat},
		{"performance", "hash_workers", strconv.Itoa(DefaultHashWorkers)},
		{"output", "format", DefaultOutputFormat},
	}

	for _, d := range defaults {
		section, err := c.ini.NewSection(d.section)
		if err != nil {
			return fmt.Errorf("failed to create %s section: %w", d.section, err)
		}
		if _, err := section.NewKey(d.key, d.value); err != nil {
			return fmt.Errorf("failed to set default %s.%s: %w", d.section, d.key, err)
		}
	}
	return nil
}

// value returns section.key, or fallback when either is missing
func (c *Config) value(section, key, fallback string) string {
	if c.ini.HasSection(section) {
		s := c.ini.Section(section)
		if s.HasKey(key) {
			return s.Key(key).String()
		}
	}
	return fallback
}

// GetHashConfig returns the hash configuration
func (c *Config) GetHashConfig() *HashConfig {
	return &HashConfig{
		Default: c.value("filehash", "default", DefaultHashAlgorithm),
	}
}

// GetInventoryConfig returns the traversal configuration
func (c *Config) GetInventoryConfig() *InventoryConfig {
	return &InventoryConfig{
		Ignore: c.value("inventory", "ignore", DefaultIgnoreList),
	}
}

// GetLogConfig returns the logging configuration
func (c *Config) GetLogConfig() *LogConfig {
	return &LogConfig{
		Level:  c.value("log", "level", DefaultLogLevel),
		Format: c.value("log", "format", DefaultLogFormat),
	}
}

// GetPerformanceConfig returns the performance configuration
func (c *Config) GetPerformanceConfig() *PerformanceConfig {
	performanceConfig := &PerformanceConfig{
		HashWorkers: DefaultHashWorkers,
	}

	if c.ini.HasSection("performance") {
		section := c.ini.Section("performance")
		if section.HasKey("hash_workers") {
			if workers, err := section.Key("hash_workers").Int(); err == nil {
				performanceConfig.HashWorkers = workers
			}
		}
	}

	return performanceConfig
}

// GetOutputConfig returns the output configuration
func (c *Config) GetOutputConfig() *OutputConfig {
	return &OutputConfig{
		Format: c.value("output", "format", DefaultOutputFormat),
	}
}

// GetAllConfig returns all configuration options
func (c *Config) GetAllConfig() *AllConfig {
	return &AllConfig{
		Hash:        c.GetHashConfig(),
		Inventory:   c.GetInventoryConfig(),
		Log:         c.GetLogConfig(),
		Performance: c.GetPerformanceConfig(),
		Output:      c.GetOutputConfig(),
	}
}

// Validate checks every value of the effective configuration
func (c *Config) Validate() error {
	all := c.GetAllConfig()
	if err := ValidateHashAlgorithm(all.Hash.Default); err != nil {
		return err
	}
	if _, err := ParseLogLevel(all.Log.Level); err != nil {
		return usageError("config", c.configPath, "%v", err)
	}
	if _, err := ParseLogFormat(all.Log.Format); err != nil {
		return usageError("config", c.configPath, "%v", err)
	}
	if c.ini.Section("performance").HasKey("hash_workers") {
		if _, err := c.ini.Section("performance").Key("hash_workers").Int(); err != nil {
			return usageError("config", c.configPath, "invalid hash_workers: %v", err)
		}
	}
	if err := ValidateHashWorkers(all.Performance.HashWorkers); err != nil {
		return err
	}
	return ValidateOutputFormat(all.Output.Format)
}

// Save saves the configuration to disk, creating its directory
func (c *Config) Save() error {
	if c.configPath == "" {
		return usageError("save config", "", "no config path")
	}
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return c.ini.SaveTo(c.configPath)
}

// WriteTo writes the effective configuration in INI form
func (c *Config) WriteTo(w io.Writer) (int64, error) {
	return c.ini.WriteTo(w)
}

// ApplyOverrides applies command-line overrides to the configuration.
// Accepts strings like "default:md5", "ignore:.DS_Store", "level:debug", "hash_workers:8"
func (c *Config) ApplyOverrides(overrides []string) error {
	for _, override := range overrides {
		parts := strings.SplitN(override, ":", 2)
		if len(parts) != 2 {
			return usageError("config", "", "invalid override format '%s', expected 'key:value'", override)
		}

		key := strings.TrimSpace(parts[0])
		value := parts[1]
		if key != "ignore" {
			value = strings.TrimSpace(value)
		}

		switch key {
		case "default":
			c.ini.Section("filehash").Key("default").SetValue(value)
		case "ignore":
			c.ini.Section("inventory").Key("ignore").SetValue(value)
		case "level":
			c.ini.Section("log").Key("level").SetValue(value)
		case "log_format":
			c.ini.Section("log").Key("format").SetValue(value)
		case "hash_workers":
			c.ini.Section("performance").Key("hash_workers").SetValue(value)
		case "format":
			c.ini.Section("output").Key("format").SetValue(value)
		default:
			return usageError("config", "", "unsupported override key '%s' (supported: default, ignore, level, log_format, hash_workers, format)", key)
		}
	}

	return nil
}

// ValidateHashAlgorithm validates that a hash algorithm is supported
func ValidateHashAlgorithm(algorithm string) error {
	if _, err := GetHashAlgorithm(algorithm); err != nil {
		return usageError("config", "", "unsupported hash algorithm: %s (supported: md5, sha1, sha256, sha512)", algorithm)
	}
	return nil
}

// ValidateOutputFormat validates that an output format is supported
func ValidateOutputFormat(format string) error {
	switch strings.ToLower(format) {
	case "human", "json", "fdupes":
		return nil
	default:
		return usageError("config", "", "unsupported output format: %s (supported: human, json, fdupes)", format)
	}
}

// ValidateHashWorkers validates that the hash worker count is reasonable
func ValidateHashWorkers(workers int) error {
	if workers < 1 {
		return usageError("config", "", "hash workers must be at least 1, got: %d", workers)
	}
	if workers > 64 {
		return usageError("config", "", "hash workers should not exceed 64, got: %d", workers)
	}
	return nil
}
