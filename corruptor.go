package faultkit

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/faultkit/blobstore"
	"github.com/hupe1980/faultkit/corrupt"
	"github.com/hupe1980/faultkit/hashkey"
	"github.com/hupe1980/faultkit/internal/resource"
	"github.com/hupe1980/faultkit/random"
)

// Operation names used in reports, logs and errors.
const (
	OpDelete  = "CorruptByDeletion"
	OpMutate  = "CorruptByMutation"
	OpReplace = "ReplaceBytes"
	OpCompare = "FilesAreIdentical"
)

// Report describes one completed corruption.
type Report struct {
	Op         string
	Input      string
	Output     string
	InputSize  int
	OutputSize int

	// Region is the byte range that was removed, overwritten or replaced.
	// For ReplaceBytes it is the range after clamping.
	Region corrupt.Region

	InputCRC  uint32
	OutputCRC uint32

	// Advisory is set when the operation completed with a warning.
	Advisory *Advisory
}

// Corruptor applies byte-level corruption to blobs in a store.
//
// Every operation reads the whole input, builds one new buffer and writes
// the whole output. Outputs are created or truncated; with the local store
// the write goes through a temporary file, so a failed operation never
// leaves a partial output behind.
type Corruptor struct {
	store  blobstore.Store
	logger *Logger
	rnd    random.Source
	res    *resource.Controller
}

// New creates a Corruptor.
func New(optFns ...Option) *Corruptor {
	o := options{
		logger: NewLogger(nil),
	}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.store == nil {
		o.store = blobstore.NewLocalStore("")
	}

	return &Corruptor{
		store:  o.store,
		logger: o.logger,
		rnd:    o.rnd,
		res: resource.NewController(resource.Config{
			MemoryLimitBytes:   o.memoryLimit,
			IOLimitBytesPerSec: o.ioLimit,
		}),
	}
}

// Logger returns the logger shared by the Corruptor.
func (c *Corruptor) Logger() *Logger { return c.logger }

// Store returns the backing store.
func (c *Corruptor) Store() blobstore.Store { return c.store }

func (c *Corruptor) random() random.Source {
	if c.rnd != nil {
		return c.rnd
	}
	return random.Default()
}

// GenRandomIntOnInterval draws a uniform integer in [start, end] from the
// Corruptor's random source. A positive seed reseeds the source first.
func (c *Corruptor) GenRandomIntOnInterval(start, end int32, seed int64) (int32, error) {
	v, err := random.IntOnInterval(c.random(), start, end, seed)
	if err != nil {
		c.logger.LogFailure(context.Background(), "GenRandomIntOnInterval", err)
	}
	return v, err
}

// CorruptByDeletion removes the region (loc, size) of in and writes the
// result to out. loc and size are fractions of the input length; see
// corrupt.Resolve for the addressing rule.
func (c *Corruptor) CorruptByDeletion(ctx context.Context, in, out string, loc, size float64) (*Report, error) {
	return c.run(ctx, OpDelete, in, out, func(data []byte) ([]byte, *Report, error) {
		r, err := corrupt.Resolve(len(data), loc, size)
		if err != nil {
			return nil, nil, err
		}
		return corrupt.Delete(data, r), &Report{Region: r}, nil
	}, func() error {
		return corrupt.ValidateFraction(loc, size)
	})
}

// CorruptByMutation overwrites the region (loc, size) of in with random
// bytes and writes the result to out. The output has the input's length.
func (c *Corruptor) CorruptByMutation(ctx context.Context, in, out string, loc, size float64) (*Report, error) {
	return c.run(ctx, OpMutate, in, out, func(data []byte) ([]byte, *Report, error) {
		r, err := corrupt.Resolve(len(data), loc, size)
		if err != nil {
			return nil, nil, err
		}
		return corrupt.Mutate(data, r, c.random()), &Report{Region: r}, nil
	}, func() error {
		return corrupt.ValidateFraction(loc, size)
	})
}

// ReplaceBytes removes count bytes at start and inserts repl in their place.
// If start+count runs past the end of the input, the available bytes are
// replaced and the Report carries an Advisory.
func (c *Corruptor) ReplaceBytes(ctx context.Context, in, out string, start, count int, repl []byte) (*Report, error) {
	return c.run(ctx, OpReplace, in, out, func(data []byte) ([]byte, *Report, error) {
		res, adv, err := corrupt.Replace(data, start, count, repl)
		if err != nil {
			return nil, nil, err
		}
		if adv != nil {
			adv.Op = OpReplace
		}
		off := min(start, len(data))
		return res, &Report{
			Region:   corrupt.Region{Offset: off, Count: min(count, len(data)-off)},
			Advisory: adv,
		}, nil
	}, func() error {
		if start < 0 || count < 0 {
			return fmt.Errorf("%w: start %d, count %d", ErrInvalidArgument, start, count)
		}
		return nil
	})
}

type transform func(data []byte) ([]byte, *Report, error)

func (c *Corruptor) run(ctx context.Context, op, in, out string, fn transform, validate func() error) (*Report, error) {
	rep, err := c.apply(ctx, op, in, out, fn, validate)
	if err != nil {
		c.logger.LogFailure(ctx, op, err)
		return nil, err
	}
	c.logger.LogAdvisory(ctx, rep.Advisory)
	c.logger.LogCorruption(ctx, rep)
	return rep, nil
}

func (c *Corruptor) apply(ctx context.Context, op, in, out string, fn transform, validate func() error) (*Report, error) {
	if in == "" || out == "" {
		return nil, &OpError{Op: op, Err: fmt.Errorf("%w: empty blob name", ErrInvalidArgument)}
	}
	if err := validate(); err != nil {
		return nil, &OpError{Op: op, Name: in, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &OpError{Op: op, Name: in, Err: err}
	}

	data, release, err := c.load(ctx, in)
	if err != nil {
		return nil, &OpError{Op: op, Name: in, Err: err}
	}
	defer release()

	// Output is reserved at input size; growth from a longer replacement is
	// reserved once the result is known.
	releaseOut, err := c.res.Reserve(int64(len(data)))
	if err != nil {
		return nil, &OpError{Op: op, Name: out, Err: err}
	}
	defer releaseOut()

	result, rep, err := fn(data)
	if err != nil {
		return nil, &OpError{Op: op, Name: in, Err: err}
	}
	if grow := len(result) - len(data); grow > 0 {
		releaseGrow, err := c.res.Reserve(int64(grow))
		if err != nil {
			return nil, &OpError{Op: op, Name: out, Err: err}
		}
		defer releaseGrow()
	}

	if err := c.res.WaitIO(ctx, len(result)); err != nil {
		return nil, &OpError{Op: op, Name: out, Err: err}
	}
	if err := c.store.Put(ctx, out, result); err != nil {
		return nil, &OpError{Op: op, Name: out, Err: err}
	}

	rep.Op = op
	rep.Input = in
	rep.Output = out
	rep.InputSize = len(data)
	rep.OutputSize = len(result)
	rep.InputCRC = hashkey.CRC32C(data)
	rep.OutputCRC = hashkey.CRC32C(result)
	return rep, nil
}

// load reads the whole blob after reserving its size against the memory
// limit. The returned release gives the reservation back.
func (c *Corruptor) load(ctx context.Context, name string) ([]byte, func(), error) {
	b, err := c.store.Open(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	defer b.Close()

	release, err := c.res.Reserve(b.Size())
	if err != nil {
		return nil, nil, err
	}
	data, err := blobstore.ReadBlob(ctx, b, name)
	if err != nil {
		release()
		return nil, nil, err
	}
	return data, release, nil
}

// FilesAreIdentical reports whether blobs a and b have the same contents.
func (c *Corruptor) FilesAreIdentical(ctx context.Context, a, b string) (bool, error) {
	same, err := FilesAreIdentical(ctx, c.store, a, b)
	if err != nil {
		c.logger.LogFailure(ctx, OpCompare, err)
	}
	return same, err
}

// FilesAreIdentical reports whether blobs a and b in s have the same
// contents. Sizes are compared before any data is read.
func FilesAreIdentical(ctx context.Context, s blobstore.Store, a, b string) (bool, error) {
	if a == "" || b == "" {
		return false, &OpError{Op: OpCompare, Err: fmt.Errorf("%w: empty blob name", ErrInvalidArgument)}
	}

	ba, err := s.Open(ctx, a)
	if err != nil {
		return false, &OpError{Op: OpCompare, Name: a, Err: err}
	}
	defer ba.Close()

	bb, err := s.Open(ctx, b)
	if err != nil {
		return false, &OpError{Op: OpCompare, Name: b, Err: err}
	}
	defer bb.Close()

	if ba.Size() != bb.Size() {
		return false, nil
	}

	da, err := blobstore.ReadBlob(ctx, ba, a)
	if err != nil {
		return false, &OpError{Op: OpCompare, Name: a, Err: err}
	}
	db, err := blobstore.ReadBlob(ctx, bb, b)
	if err != nil {
		return false, &OpError{Op: OpCompare, Name: b, Err: err}
	}
	return bytes.Equal(da, db), nil
}

// IsNotFound reports whether err means a blob does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
