package faultkit

import (
	"github.com/hupe1980/faultkit/blobstore"
	"github.com/hupe1980/faultkit/random"
)

type options struct {
	logger      *Logger
	rnd         random.Source
	store       blobstore.Store
	memoryLimit int64
	ioLimit     int64
}

// Option configures a Corruptor.
type Option func(*options)

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithRandom sets the source used by CorruptByMutation and
// GenRandomIntOnInterval.
//
// The source is used from whichever goroutine calls the Corruptor. Pass a
// *random.Locked when the Corruptor is shared. If nil is passed, the
// process-wide random.Default() is used.
func WithRandom(src random.Source) Option {
	return func(o *options) {
		o.rnd = src
	}
}

// WithStore sets the store that inputs are read from and outputs written to.
// The default is a LocalStore with an empty root, so names are file paths.
func WithStore(s blobstore.Store) Option {
	return func(o *options) {
		if s != nil {
			o.store = s
		}
	}
}

// WithMemoryLimit caps the bytes of input and output buffers held at once.
// An operation that would exceed it fails with ErrAllocation before any
// output is written. 0 means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithIOLimit caps output throughput in bytes per second. 0 means unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}
