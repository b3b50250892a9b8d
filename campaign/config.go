package campaign

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/faultkit/codec"
	"github.com/hupe1980/faultkit/internal/errs"
)

// Mode selects the corruption applied in each trial.
type Mode string

const (
	// ModeDelete removes the drawn region.
	ModeDelete Mode = "delete"
	// ModeMutate overwrites the drawn region with random bytes.
	ModeMutate Mode = "mutate"
)

// Config describes a corruption campaign.
type Config struct {
	// Codec is the built-in codec name (see codec.Names).
	Codec string `yaml:"codec"`

	// Mode is "delete" or "mutate".
	Mode Mode `yaml:"mode"`

	// Trials is the number of damaged documents to decode.
	Trials int `yaml:"trials"`

	// Seed fixes every random draw. Trial i uses Seed+i.
	Seed uint64 `yaml:"seed"`

	// MinSize and MaxSize bound the damaged region as a fraction of the
	// encoded length, in (0, 1]. Sizes are drawn in steps of 1/1000.
	MinSize float64 `yaml:"min_size"`
	MaxSize float64 `yaml:"max_size"`

	// Concurrency is the number of trials run at once. Defaults to 1.
	Concurrency int `yaml:"concurrency"`

	// RatePerSecond caps trials started per second. 0 means unlimited.
	RatePerSecond float64 `yaml:"rate_per_second"`

	// MemoryLimitBytes caps the damaged and decoded buffers held at once.
	// 0 means unlimited.
	MemoryLimitBytes int64 `yaml:"memory_limit_bytes"`
}

// DefaultConfig returns a small deletion campaign against zstd.
func DefaultConfig() Config {
	return Config{
		Codec:       "zstd",
		Mode:        ModeDelete,
		Trials:      100,
		Seed:        1,
		MinSize:     0.001,
		MaxSize:     0.1,
		Concurrency: 1,
	}
}

// LoadConfig loads a configuration from a YAML file. Fields missing from the
// file keep the values of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses a YAML configuration over DefaultConfig.
func ParseConfig(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	return &config, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if _, ok := codec.ByName(c.Codec); !ok {
		return fmt.Errorf("%w: unknown codec %q (supported: %v)", errs.ErrInvalidArgument, c.Codec, codec.Names())
	}
	return c.validateTrials()
}

func (c *Config) validateTrials() error {
	switch c.Mode {
	case ModeDelete, ModeMutate:
	default:
		return fmt.Errorf("%w: unknown mode %q (supported: delete, mutate)", errs.ErrInvalidArgument, c.Mode)
	}

	if c.Trials <= 0 {
		return fmt.Errorf("%w: trials must be positive, got %d", errs.ErrInvalidArgument, c.Trials)
	}
	if !(c.MinSize > 0 && c.MinSize <= 1) {
		return fmt.Errorf("%w: min_size must be in (0, 1], got %v", errs.ErrInvalidArgument, c.MinSize)
	}
	if !(c.MaxSize >= c.MinSize && c.MaxSize <= 1) {
		return fmt.Errorf("%w: max_size must be in [min_size, 1], got %v", errs.ErrInvalidArgument, c.MaxSize)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("%w: concurrency must be >= 0, got %d", errs.ErrInvalidArgument, c.Concurrency)
	}
	if c.RatePerSecond < 0 {
		return fmt.Errorf("%w: rate_per_second must be >= 0, got %v", errs.ErrInvalidArgument, c.RatePerSecond)
	}
	if c.MemoryLimitBytes < 0 {
		return fmt.Errorf("%w: memory_limit_bytes must be >= 0, got %d", errs.ErrInvalidArgument, c.MemoryLimitBytes)
	}
	return nil
}

// permille converts the size bounds to whole thousandths, at least 1.
func (c *Config) permille() (lo, hi int32) {
	lo = max(int32(c.MinSize*1000+0.5), 1)
	hi = max(int32(c.MaxSize*1000+0.5), lo)
	return lo, min(hi, 1000)
}
