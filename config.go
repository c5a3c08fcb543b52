package memmgr

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config carries the five parameters spec.md §6's init names, plus the
// per-pool chunk-size bounds §3's SmallObjectAllocator invariant requires.
// The teacher has no config-loading surface of its own (it is a pure
// library); the TOML format here follows the same ambient-config shape as
// the slab/region allocators elsewhere in the pack (see SPEC_FULL.md).
type Config struct {
	Threshold     int `toml:"threshold"`
	BigTotal      int `toml:"big_total"`
	SmallPageSize int `toml:"small_page_size"`
	SmallMax      int `toml:"small_max"`
	SmallAlign    int `toml:"small_align"`

	MinPerChunk int `toml:"min_per_chunk"`
	MaxPerChunk int `toml:"max_per_chunk"`
}

const (
	defaultMinPerChunk = 8
	defaultMaxPerChunk = 255
)

func (c *Config) setDefaults() {
	if c.MinPerChunk == 0 {
		c.MinPerChunk = defaultMinPerChunk
	}
	if c.MaxPerChunk == 0 {
		c.MaxPerChunk = defaultMaxPerChunk
	}
}

// validate enforces spec.md §6's configuration constraints. A violation is
// a programmer error, but since Config is typically built from an external
// file, New surfaces it as an error rather than a panic.
func (c Config) validate() error {
	switch {
	case c.SmallAlign <= 0:
		return fmt.Errorf("memmgr: smallAlign must be > 0, got %d", c.SmallAlign)
	case c.SmallMax <= 0:
		return fmt.Errorf("memmgr: smallMax must be > 0, got %d", c.SmallMax)
	case c.SmallMax%c.SmallAlign != 0:
		return fmt.Errorf("memmgr: smallAlign (%d) must divide smallMax (%d)", c.SmallAlign, c.SmallMax)
	case c.SmallPageSize < c.SmallAlign:
		return fmt.Errorf("memmgr: smallPageSize (%d) must be >= smallAlign (%d)", c.SmallPageSize, c.SmallAlign)
	case c.Threshold <= 0:
		return fmt.Errorf("memmgr: threshold must be > 0, got %d", c.Threshold)
	case c.BigTotal <= 0:
		return fmt.Errorf("memmgr: bigTotal must be > 0, got %d", c.BigTotal)
	case c.MaxPerChunk <= 0 || c.MaxPerChunk > 255:
		return fmt.Errorf("memmgr: maxPerChunk must be in (0, 255], got %d", c.MaxPerChunk)
	case c.MinPerChunk <= 0 || c.MinPerChunk > c.MaxPerChunk:
		return fmt.Errorf("memmgr: minPerChunk must be in (0, maxPerChunk], got %d", c.MinPerChunk)
	}
	return nil
}

// LoadConfig parses a TOML configuration file into a Config. This is
// additive to programmatic construction: New(Config{...}) remains the
// primary entry point, file loading exists for callers that prefer
// externalised tuning of the allocator.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	cfg.setDefaults()
	return cfg, nil
}
