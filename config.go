package poolalloc

import (
	"bytes"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Config holds the settings of an allocator as they appear in a TOML file:
//
//	pool_size = 65536
//	ordering  = "incremental" # or "resort"
//	backing   = "heap"        # or "mmap"
type Config struct {
	PoolSize int    `toml:"pool_size"`
	Ordering string `toml:"ordering"`
	Backing  string `toml:"backing"`
}

// DefaultConfig returns the settings NewAllocator uses without options.
func DefaultConfig() Config {
	return Config{
		PoolSize: DefaultPoolSize,
		Ordering: OrderIncremental.String(),
		Backing:  "heap",
	}
}

// LoadConfig reads a TOML config file. Keys missing from the file keep
// their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "poolalloc: read config")
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "poolalloc: config %s", path)
	}
	return cfg, nil
}

// ParseConfig decodes TOML config data over DefaultConfig and validates it.
// Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, errors.Errorf("unknown keys:\n%s", strict.String())
		}
		return Config{}, errors.Wrap(err, "decode")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.PoolSize < 0 {
		return errors.Errorf("poolalloc: negative pool_size %d", c.PoolSize)
	}
	if _, err := ParseOrdering(c.Ordering); err != nil {
		return err
	}
	switch c.Backing {
	case "", "heap", "mmap":
		return nil
	}
	return errors.Errorf("poolalloc: unknown backing %q", c.Backing)
}

// Options converts the config to allocator options. The logger is passed
// through WithLogger.
func (c Config) Options(logger *slog.Logger) ([]Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	ordering, _ := ParseOrdering(c.Ordering)
	backing, err := BackingByName(c.Backing)
	if err != nil {
		return nil, err
	}
	return []Option{WithOrdering(ordering), WithBacking(backing), WithLogger(logger)}, nil
}

// NewAllocator creates an allocator from the config.
func (c Config) NewAllocator(logger *slog.Logger) (*Allocator, error) {
	opts, err := c.Options(logger)
	if err != nil {
		return nil, err
	}
	return NewAllocator(c.PoolSize, opts...), nil
}
