package campaign

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/faultkit/codec"
	"github.com/hupe1980/faultkit/internal/errs"
)

func testPayload() []byte {
	return bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 200)
}

func testConfig(codecName string, mode Mode) Config {
	cfg := DefaultConfig()
	cfg.Codec = codecName
	cfg.Mode = mode
	cfg.Trials = 64
	cfg.Seed = 42
	return cfg
}

func TestRun_RawDeletionIsAlwaysSilent(t *testing.T) {
	sum, err := Run(context.Background(), testConfig("raw", ModeDelete), testPayload())
	require.NoError(t, err)

	assert.Equal(t, 64, sum.Total())
	assert.Equal(t, 64, sum.Silent)
	assert.Equal(t, 1.0, sum.SilentRate())
	assert.False(t, sum.SilentOffsets.IsEmpty())
	assert.LessOrEqual(t, sum.SilentOffsets.GetCardinality(), uint64(64))

	for i, tr := range sum.Trials {
		assert.Equal(t, i, tr.Index)
		assert.True(t, sum.SilentOffsets.Contains(uint32(tr.Region.Offset)))
	}
}

func TestRun_GzipDetectsDamage(t *testing.T) {
	for _, mode := range []Mode{ModeDelete, ModeMutate} {
		t.Run(string(mode), func(t *testing.T) {
			sum, err := Run(context.Background(), testConfig("gzip", mode), testPayload())
			require.NoError(t, err)
			assert.Equal(t, 64, sum.Total())
			assert.Zero(t, sum.Silent, "gzip checksums the payload")
			assert.True(t, sum.SilentOffsets.IsEmpty())
		})
	}
}

func TestRun_DeterministicAcrossConcurrency(t *testing.T) {
	for _, name := range codec.Names() {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig(name, ModeMutate)

			cfg.Concurrency = 1
			serial, err := Run(context.Background(), cfg, testPayload())
			require.NoError(t, err)

			cfg.Concurrency = 8
			parallel, err := Run(context.Background(), cfg, testPayload())
			require.NoError(t, err)

			assert.Equal(t, serial.Trials, parallel.Trials)
			assert.True(t, serial.SilentOffsets.Equals(parallel.SilentOffsets))
			assert.Equal(t, serial.String(), parallel.String())
		})
	}
}

func TestRun_SeedChangesDraws(t *testing.T) {
	cfg := testConfig("raw", ModeDelete)
	a, err := Run(context.Background(), cfg, testPayload())
	require.NoError(t, err)

	cfg.Seed++
	b, err := Run(context.Background(), cfg, testPayload())
	require.NoError(t, err)

	// Trial i of seed s+1 is trial i+1 of seed s.
	for i := 0; i+1 < len(a.Trials); i++ {
		assert.Equal(t, a.Trials[i+1].Region, b.Trials[i].Region)
	}
}

func TestRun_RegionsStayInBounds(t *testing.T) {
	cfg := testConfig("zstd", ModeDelete)
	cfg.MinSize = 0.01
	cfg.MaxSize = 0.02

	sum, err := Run(context.Background(), cfg, testPayload())
	require.NoError(t, err)

	maxCount := int(float64(sum.EncodedSize)*0.02 + 1)
	for _, tr := range sum.Trials {
		assert.GreaterOrEqual(t, tr.Region.Count, 1)
		assert.LessOrEqual(t, tr.Region.Count, maxCount)
		assert.LessOrEqual(t, tr.Region.End(), sum.EncodedSize)
	}
}

type panicCodec struct{ codec.Raw }

func (panicCodec) Name() string { return "panic" }

func (panicCodec) Decode([]byte) ([]byte, error) { panic("boom") }

func TestRun_RecoversDecoderPanic(t *testing.T) {
	cfg := testConfig("ignored", ModeDelete)
	cfg.Concurrency = 4

	sum, err := Run(context.Background(), cfg, testPayload(), WithCodec(panicCodec{}))
	require.NoError(t, err)
	assert.Equal(t, "panic", sum.Codec)
	assert.Equal(t, 64, sum.Panicked)
	assert.Equal(t, "panic: boom", sum.Trials[0].Detail)
}

type rejectCodec struct{ codec.Raw }

func (rejectCodec) Decode([]byte) ([]byte, error) { return nil, errors.New("bad document") }

func TestRun_Rejected(t *testing.T) {
	sum, err := Run(context.Background(), testConfig("raw", ModeMutate), testPayload(), WithCodec(rejectCodec{}))
	require.NoError(t, err)
	assert.Equal(t, 64, sum.Rejected)
	assert.Equal(t, "bad document", sum.Trials[63].Detail)
}

// slowCodec records how many decodes run at once.
type slowCodec struct {
	codec.Raw
	active, peak *atomic.Int32
}

func (c slowCodec) Decode(src []byte) ([]byte, error) {
	n := c.active.Add(1)
	defer c.active.Add(-1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(2 * time.Millisecond)
	return c.Raw.Decode(src)
}

func TestRun_ConcurrencyBound(t *testing.T) {
	cfg := testConfig("raw", ModeDelete)
	cfg.Trials = 24
	cfg.Concurrency = 3

	c := slowCodec{active: new(atomic.Int32), peak: new(atomic.Int32)}
	sum, err := Run(context.Background(), cfg, testPayload(), WithCodec(c))
	require.NoError(t, err)
	assert.Equal(t, 24, sum.Total())
	assert.LessOrEqual(t, c.peak.Load(), int32(3))
	assert.GreaterOrEqual(t, c.peak.Load(), int32(1))
}

func TestRun_MemoryLimit(t *testing.T) {
	cfg := testConfig("raw", ModeDelete)
	cfg.MemoryLimitBytes = 10

	_, err := Run(context.Background(), cfg, testPayload())
	assert.ErrorIs(t, err, errs.ErrAllocation)

	cfg.MemoryLimitBytes = 4 * int64(len(testPayload()))
	cfg.Concurrency = 8
	sum, err := Run(context.Background(), cfg, testPayload())
	require.NoError(t, err)
	assert.Equal(t, 64, sum.Total())
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, testConfig("raw", ModeDelete), testPayload())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_RateLimited(t *testing.T) {
	cfg := testConfig("raw", ModeDelete)
	cfg.Trials = 3
	cfg.RatePerSecond = 1000

	sum, err := Run(context.Background(), cfg, testPayload())
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Total())
}

func TestRun_InvalidArguments(t *testing.T) {
	_, err := Run(context.Background(), testConfig("raw", ModeDelete), nil)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = Run(context.Background(), testConfig("nope", ModeDelete), testPayload())
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown codec", func(c *Config) { c.Codec = "brotli" }},
		{"unknown mode", func(c *Config) { c.Mode = "shuffle" }},
		{"no trials", func(c *Config) { c.Trials = 0 }},
		{"zero min size", func(c *Config) { c.MinSize = 0 }},
		{"max below min", func(c *Config) { c.MinSize = 0.5; c.MaxSize = 0.1 }},
		{"max above one", func(c *Config) { c.MaxSize = 1.5 }},
		{"negative rate", func(c *Config) { c.RatePerSecond = -1 }},
		{"negative memory", func(c *Config) { c.MemoryLimitBytes = -1 }},
	}

	base := DefaultConfig()
	require.NoError(t, base.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), errs.ErrInvalidArgument)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campaign.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
codec: lz4
mode: mutate
trials: 500
seed: 7
max_size: 0.05
concurrency: 4
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "lz4", cfg.Codec)
	assert.Equal(t, ModeMutate, cfg.Mode)
	assert.Equal(t, 500, cfg.Trials)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, 0.001, cfg.MinSize, "default kept")
	assert.Equal(t, 0.05, cfg.MaxSize)
	assert.Equal(t, 4, cfg.Concurrency)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = ParseConfig([]byte("trials: [1, 2"))
	assert.Error(t, err)
}

func TestConfig_Permille(t *testing.T) {
	cfg := Config{MinSize: 0.0001, MaxSize: 1}
	lo, hi := cfg.permille()
	assert.Equal(t, int32(1), lo)
	assert.Equal(t, int32(1000), hi)

	cfg = Config{MinSize: 0.25, MaxSize: 0.25}
	lo, hi = cfg.permille()
	assert.Equal(t, int32(250), lo)
	assert.Equal(t, int32(250), hi)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "rejected", Rejected.String())
	assert.Equal(t, "silent", Silent.String())
	assert.Equal(t, "intact", Intact.String())
	assert.Equal(t, "panicked", Panicked.String())
	assert.Equal(t, "Outcome(9)", Outcome(9).String())
}
