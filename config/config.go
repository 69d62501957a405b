// Package config holds the SoC configuration and its file formats.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.yaml.in/yaml/v3"

	"github.com/sarchlab/rvsoc/timing/cache"
)

// Config holds the parameters of one SoC instance.
type Config struct {
	// TicksPerBit is the UART bit period in clock ticks. Default: 108.
	TicksPerBit int `json:"ticks_per_bit" yaml:"ticks_per_bit" toml:"ticks_per_bit"`

	// ROMWords is the boot ROM size in 32-bit words. Default: 1024.
	ROMWords int `json:"rom_words" yaml:"rom_words" toml:"rom_words"`

	// RAMWords is the data RAM size in 32-bit words. Default: 1024.
	RAMWords int `json:"ram_words" yaml:"ram_words" toml:"ram_words"`

	// TrapVector is the interrupt handler address. Default: 0x100.
	TrapVector uint32 `json:"trap_vector" yaml:"trap_vector" toml:"trap_vector"`

	// TimerCompare is the timer period at reset. 0 leaves the timer off.
	TimerCompare uint32 `json:"timer_compare" yaml:"timer_compare" toml:"timer_compare"`

	// MaxCycles bounds Run. 0 means no limit.
	MaxCycles uint64 `json:"max_cycles" yaml:"max_cycles" toml:"max_cycles"`

	// FetchCache configures the optional instruction cache in front of ROM.
	FetchCache FetchCacheConfig `json:"fetch_cache" yaml:"fetch_cache" toml:"fetch_cache"`
}

// FetchCacheConfig enables and sizes the fetch cache.
type FetchCacheConfig struct {
	Enabled      bool `json:"enabled" yaml:"enabled" toml:"enabled"`
	cache.Config `yaml:",inline"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		TicksPerBit:  108,
		ROMWords:     1024,
		RAMWords:     1024,
		TrapVector:   0x100,
		TimerCompare: 0,
		MaxCycles:    10_000_000,
		FetchCache: FetchCacheConfig{
			Config: cache.DefaultConfig(),
		},
	}
}

// Format is a configuration file encoding.
type Format int

const (
	// FormatJSON is the default encoding.
	FormatJSON Format = iota
	// FormatYAML is selected by .yaml and .yml.
	FormatYAML
	// FormatTOML is selected by .toml.
	FormatTOML
)

// FormatOf picks a format from a file extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// Load reads a configuration file. Fields missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return config, nil
}

// Parse decodes a configuration over the defaults.
func Parse(data []byte, format Format) (*Config, error) {
	config := Default()

	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, config)
	case FormatTOML:
		err = toml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// Marshal encodes the configuration.
func (c *Config) Marshal(format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(c)
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return json.MarshalIndent(c, "", "  ")
	}
}

// Save writes the configuration in the format its extension selects.
func (c *Config) Save(path string) error {
	data, err := c.Marshal(FormatOf(path))
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration describes a buildable SoC.
func (c *Config) Validate() error {
	if c.TicksPerBit < 1 {
		return fmt.Errorf("ticks_per_bit must be >= 1")
	}
	if c.ROMWords < 1 {
		return fmt.Errorf("rom_words must be >= 1")
	}
	if c.RAMWords < 1 {
		return fmt.Errorf("ram_words must be >= 1")
	}
	if c.TrapVector%4 != 0 {
		return fmt.Errorf("trap_vector must be word aligned, got 0x%x", c.TrapVector)
	}
	if c.FetchCache.Enabled {
		if err := c.FetchCache.Validate(); err != nil {
			return fmt.Errorf("fetch_cache: %w", err)
		}
	}

	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
