package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/tilefs/internal/util"
	"gopkg.in/yaml.v3"
)

// Verbosity values accepted by [ConfigOverride.LogLvl] (i.e. cli -v flag)
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultFsName = "tilefs"
	DefaultName   = "tilefs"
	DefaultLogLvl = util.InfoLevel

	DefaultStoreType = "memory"
	DefaultStorePath = ""

	// DefaultIndexCapacity matches the slice size the document network pages
	// sequences with
	DefaultIndexCapacity = 256

	// DefaultListLimit caps how many child index entries are read for a listing
	DefaultListLimit = 256

	// DefaultAttrTimeout is the attribute cache timeout in seconds
	DefaultAttrTimeout = 1.0

	// DefaultEntryTimeout is the directory entry cache timeout in seconds
	DefaultEntryTimeout = 1.0
)

// Config contains runtime configuration values for the filesystem
type Config struct {
	MountOptions
	LogLvl        util.LogLevel
	Store         StoreOptions
	IndexCapacity int     // Capacity hint passed when allocating child indices (Default 256)
	ListLimit     int     // Max entries read per child index for listings (Default 256)
	AttrTimeout   float64 // Attribute cache timeout in seconds for mounts (Default 1.0)
	EntryTimeout  float64 // Directory entry cache timeout in seconds for mounts (Default 1.0)
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	FsName        *string  `yaml:"fs_name,omitempty" json:"fs_name,omitempty"`
	Name          *string  `yaml:"name,omitempty" json:"name,omitempty"`
	Debug         *bool    `yaml:"debug,omitempty" json:"debug,omitempty"`
	LogLvl        *int     `yaml:"verbose,omitempty" json:"verbose,omitempty"` // 1 (error) to 5 (trace)
	StoreType     *string  `yaml:"store_type,omitempty" json:"store_type,omitempty"`
	StorePath     *string  `yaml:"store_path,omitempty" json:"store_path,omitempty"`
	IndexCapacity *int     `yaml:"index_capacity,omitempty" json:"index_capacity,omitempty"`
	ListLimit     *int     `yaml:"list_limit,omitempty" json:"list_limit,omitempty"`
	AttrTimeout   *float64 `yaml:"attr_timeout,omitempty" json:"attr_timeout,omitempty"`
	EntryTimeout  *float64 `yaml:"entry_timeout,omitempty" json:"entry_timeout,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		MountOptions: MountOptions{
			FsName: DefaultFsName,
			Name:   DefaultName,
		},
		LogLvl: DefaultLogLvl,
		Store: StoreOptions{
			Type: DefaultStoreType,
			Path: DefaultStorePath,
		},
		IndexCapacity: DefaultIndexCapacity,
		ListLimit:     DefaultListLimit,
		AttrTimeout:   DefaultAttrTimeout,
		EntryTimeout:  DefaultEntryTimeout,
	}
}

// NewConfig returns the defaults with override applied. A nil override is allowed.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// VerboseToLogLevel clamps a 1..5 verbosity into a [util.LogLevel]
func VerboseToLogLevel(verbose int) util.LogLevel {
	verbose = min(max(verbose, ErrorVerbose), TraceVerbose)
	lvls := [5]util.LogLevel{util.ErrorLevel, util.WarnLevel, util.InfoLevel, util.DebugLevel, util.TraceLevel}
	return lvls[verbose-1]
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.FsName != nil {
		c.FsName = *override.FsName
	}
	if override.Name != nil {
		c.Name = *override.Name
	}
	if override.Debug != nil {
		c.Debug = *override.Debug
	}
	if override.LogLvl != nil {
		c.LogLvl = VerboseToLogLevel(*override.LogLvl)
	}
	if override.StoreType != nil {
		c.Store.Type = *override.StoreType
	}
	if override.StorePath != nil {
		c.Store.Path = *override.StorePath
	}
	if override.IndexCapacity != nil {
		c.IndexCapacity = *override.IndexCapacity
	}
	if override.ListLimit != nil {
		c.ListLimit = *override.ListLimit
	}
	if override.AttrTimeout != nil {
		c.AttrTimeout = *override.AttrTimeout
	}
	if override.EntryTimeout != nil {
		c.EntryTimeout = *override.EntryTimeout
	}
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	return NewConfig(override), nil
}
