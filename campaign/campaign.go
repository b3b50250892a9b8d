package campaign

import (
	"bytes"
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hupe1980/faultkit"
	"github.com/hupe1980/faultkit/codec"
	"github.com/hupe1980/faultkit/corrupt"
	"github.com/hupe1980/faultkit/internal/conv"
	"github.com/hupe1980/faultkit/internal/errs"
	"github.com/hupe1980/faultkit/internal/resource"
	"github.com/hupe1980/faultkit/random"
)

// Outcome classifies how a decoder reacted to a damaged document.
type Outcome int

const (
	// Rejected means Decode returned an error.
	Rejected Outcome = iota
	// Silent means Decode succeeded but returned different bytes.
	Silent
	// Intact means Decode succeeded and returned the original payload.
	Intact
	// Panicked means Decode panicked. The panic was recovered.
	Panicked
)

func (o Outcome) String() string {
	switch o {
	case Rejected:
		return "rejected"
	case Silent:
		return "silent"
	case Intact:
		return "intact"
	case Panicked:
		return "panicked"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Trial is the result of one damaged decode.
type Trial struct {
	Index   int
	Region  corrupt.Region
	Outcome Outcome
	// Detail holds the decode error or panic value, if any.
	Detail string
}

// Summary aggregates the trials of a campaign.
type Summary struct {
	Codec       string
	Mode        Mode
	EncodedSize int

	Rejected int
	Silent   int
	Intact   int
	Panicked int

	// SilentOffsets holds the region offsets that produced silent corruption.
	SilentOffsets *roaring.Bitmap

	// Trials is ordered by trial index.
	Trials []Trial
}

// Total returns the number of trials run.
func (s *Summary) Total() int {
	return s.Rejected + s.Silent + s.Intact + s.Panicked
}

// SilentRate returns the fraction of trials that produced silent corruption.
func (s *Summary) SilentRate() float64 {
	if s.Total() == 0 {
		return 0
	}
	return float64(s.Silent) / float64(s.Total())
}

func (s *Summary) String() string {
	return fmt.Sprintf("%s/%s: %d trials, %d rejected, %d silent, %d intact, %d panicked",
		s.Codec, s.Mode, s.Total(), s.Rejected, s.Silent, s.Intact, s.Panicked)
}

type options struct {
	logger *faultkit.Logger
	codec  codec.Codec
}

// Option configures Run.
type Option func(*options)

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *faultkit.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = faultkit.NoopLogger()
		}
		o.logger = l
	}
}

// WithCodec runs the campaign against c instead of the built-in named by
// Config.Codec.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// Run encodes payload and decodes cfg.Trials damaged copies of it.
//
// Each trial owns a generator seeded with cfg.Seed plus its index, so the
// Summary depends only on cfg and payload, not on cfg.Concurrency.
func Run(ctx context.Context, cfg Config, payload []byte, optFns ...Option) (*Summary, error) {
	o := options{logger: faultkit.NoopLogger()}
	for _, fn := range optFns {
		fn(&o)
	}

	c := o.codec
	if c == nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		c, _ = codec.ByName(cfg.Codec)
	} else if err := cfg.validateTrials(); err != nil {
		return nil, err
	}

	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: empty payload", errs.ErrInvalidArgument)
	}

	encoded, err := c.Encode(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload with %s: %w", c.Name(), err)
	}
	if len(encoded) == 0 {
		return nil, fmt.Errorf("%w: codec %s produced an empty document", errs.ErrInvalidArgument, c.Name())
	}

	res := resource.NewController(resource.Config{
		MemoryLimitBytes: cfg.MemoryLimitBytes,
		MaxWorkers:       int64(max(cfg.Concurrency, 1)),
	})

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}

	logger := o.logger.WithOp("campaign")
	logger.InfoContext(ctx, "campaign started",
		"codec", c.Name(),
		"mode", string(cfg.Mode),
		"trials", cfg.Trials,
		"encoded_size", len(encoded),
	)

	lo, hi := cfg.permille()
	trials := make([]Trial, cfg.Trials)

	g, gctx := errgroup.WithContext(ctx)

	for i := range cfg.Trials {
		if limiter != nil {
			if err := limiter.Wait(gctx); err != nil {
				break
			}
		}
		if gctx.Err() != nil {
			break
		}
		// At most cfg.Concurrency trials hold a worker slot at once.
		if err := res.AcquireWorker(gctx); err != nil {
			break
		}

		g.Go(func() error {
			defer res.ReleaseWorker()

			// A trial holds the damaged copy and the decoded output.
			release, err := res.Acquire(gctx, int64(len(encoded)+len(payload)))
			if err != nil {
				return err
			}
			defer release()

			t, err := runTrial(c, cfg.Mode, encoded, payload, cfg.Seed+uint64(i), lo, hi)
			if err != nil {
				return err
			}
			t.Index = i
			trials[i] = t

			if t.Outcome == Silent || t.Outcome == Panicked {
				logger.DebugContext(gctx, "decoder accepted damage",
					"trial", i,
					"outcome", t.Outcome.String(),
					"offset", t.Region.Offset,
					"count", t.Region.Count,
				)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := &Summary{
		Codec:         c.Name(),
		Mode:          cfg.Mode,
		EncodedSize:   len(encoded),
		SilentOffsets: roaring.New(),
		Trials:        trials,
	}
	for _, t := range trials {
		switch t.Outcome {
		case Rejected:
			s.Rejected++
		case Silent:
			s.Silent++
			off, err := conv.IntToUint32(t.Region.Offset)
			if err != nil {
				return nil, err
			}
			s.SilentOffsets.Add(off)
		case Intact:
			s.Intact++
		case Panicked:
			s.Panicked++
		}
	}

	logger.InfoContext(ctx, "campaign finished",
		"codec", s.Codec,
		"rejected", s.Rejected,
		"silent", s.Silent,
		"intact", s.Intact,
		"panicked", s.Panicked,
	)
	return s, nil
}

func runTrial(c codec.Codec, mode Mode, encoded, payload []byte, seed uint64, lo, hi int32) (Trial, error) {
	rnd := random.New(seed)

	locP, err := random.IntOnInterval(rnd, 0, 999, 0)
	if err != nil {
		return Trial{}, err
	}
	sizeP, err := random.IntOnInterval(rnd, lo, hi, 0)
	if err != nil {
		return Trial{}, err
	}

	r, err := corrupt.Resolve(len(encoded), float64(locP)/1000, float64(sizeP)/1000)
	if err != nil {
		return Trial{}, err
	}

	var damaged []byte
	switch mode {
	case ModeDelete:
		damaged = corrupt.Delete(encoded, r)
	case ModeMutate:
		damaged = corrupt.Mutate(encoded, r, rnd)
	}

	t := Trial{Region: r}
	decoded, panicked, derr := decode(c, damaged)
	switch {
	case panicked:
		t.Outcome = Panicked
		t.Detail = derr.Error()
	case derr != nil:
		t.Outcome = Rejected
		t.Detail = derr.Error()
	case bytes.Equal(decoded, payload):
		t.Outcome = Intact
	default:
		t.Outcome = Silent
	}
	return t, nil
}

// decode calls c.Decode and turns a panic into an error.
func decode(c codec.Codec, src []byte) (out []byte, panicked bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, panicked, err = nil, true, fmt.Errorf("panic: %v", r)
		}
	}()
	out, err = c.Decode(src)
	return out, false, err
}
