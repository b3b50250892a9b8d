package random

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/faultkit/internal/errs"
)

// ErrInvalidArgument is returned when an interval is empty.
var ErrInvalidArgument = errs.ErrInvalidArgument

// DefaultSeed seeds the process default source.
const DefaultSeed = 1

// Source is a reseedable pseudo-random source.
type Source interface {
	// IntN returns a value in [0, n). It panics if n <= 0.
	IntN(n int) int
	// Int64N returns a value in [0, n). It panics if n <= 0.
	Int64N(n int64) int64
	// Seed resets the generator to a deterministic state.
	Seed(seed uint64)
}

// Rand is a PCG-backed Source. It is not safe for concurrent use.
type Rand struct {
	pcg *rand.PCG
	r   *rand.Rand
}

// New returns a Rand seeded with seed.
func New(seed uint64) *Rand {
	pcg := rand.NewPCG(seed, 0)
	return &Rand{pcg: pcg, r: rand.New(pcg)}
}

func (r *Rand) IntN(n int) int { return r.r.IntN(n) }

func (r *Rand) Int64N(n int64) int64 { return r.r.Int64N(n) }

func (r *Rand) Seed(seed uint64) { r.pcg.Seed(seed, 0) }

// Locked serializes access to an underlying Source.
type Locked struct {
	mu  sync.Mutex
	src Source
}

// NewLocked wraps src. A nil src is replaced by New(DefaultSeed).
func NewLocked(src Source) *Locked {
	if src == nil {
		src = New(DefaultSeed)
	}
	return &Locked{src: src}
}

func (l *Locked) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.IntN(n)
}

func (l *Locked) Int64N(n int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Int64N(n)
}

func (l *Locked) Seed(seed uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.src.Seed(seed)
}

// Fill writes uniform bytes into dst under a single lock acquisition.
func (l *Locked) Fill(dst []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fill(l.src, dst)
}

type holder struct{ src Source }

var defaultSource atomic.Pointer[holder]

func init() {
	ResetDefault()
}

// Default returns the process default source.
func Default() Source {
	return defaultSource.Load().src
}

// SetDefault replaces the process default. A nil src resets it.
func SetDefault(src Source) {
	if src == nil {
		ResetDefault()
		return
	}
	defaultSource.Store(&holder{src: src})
}

// ResetDefault installs a fresh Locked source seeded with DefaultSeed.
func ResetDefault() {
	defaultSource.Store(&holder{src: NewLocked(New(DefaultSeed))})
}

// IntOnInterval draws a value uniformly from the closed interval [start, end].
// If seed > 0, src is reseeded first.
func IntOnInterval(src Source, start, end int32, seed int64) (int32, error) {
	if end < start {
		return 0, fmt.Errorf("%w: invalid range [%d, %d]", ErrInvalidArgument, start, end)
	}
	if src == nil {
		return 0, fmt.Errorf("%w: nil source", ErrInvalidArgument)
	}

	if seed > 0 {
		src.Seed(uint64(seed))
	}

	span := int64(end) - int64(start) + 1
	return int32(int64(start) + src.Int64N(span)), nil
}

// GenIntOnInterval is IntOnInterval against the process default source.
func GenIntOnInterval(start, end int32, seed int64) (int32, error) {
	return IntOnInterval(Default(), start, end, seed)
}

// Bytes fills dst with bytes drawn uniformly from [0, 255].
func Bytes(src Source, dst []byte) {
	if l, ok := src.(*Locked); ok {
		l.Fill(dst)
		return
	}
	fill(src, dst)
}

func fill(src Source, dst []byte) {
	for i := range dst {
		dst[i] = byte(src.IntN(256))
	}
}
