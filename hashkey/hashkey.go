package hashkey

import (
	"fmt"
	"math"

	"github.com/hupe1980/faultkit/internal/errs"
)

// ErrInvalidArgument is returned for empty string input.
var ErrInvalidArgument = errs.ErrInvalidArgument

// Key is an opaque 64-bit hash key. Only equality is meaningful.
type Key = uint64

const (
	stringSeed = 104395301
	// Prime, about 1/700 of the uint64 range.
	stringMul = 26544357894361247
	fastMul   = 37

	pointX = 2173249142.3849
	pointY = 3763193258.6227

	floatPos = 847019.66701
	floatNeg = -217324.91613
)

// String hashes s into 64 bits with a multiply/xor-shift mix.
//
// For n random strings the collision probability is roughly n²/2^65. It was
// checked against all 26^5 five-letter lowercase strings without a collision.
//
// Every byte of s is hashed, including NUL. Implementations that treat the
// input as a C string stop at the first NUL and disagree for such inputs.
func String(s string) (Key, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidArgument)
	}

	hash := uint64(stringSeed)
	for i := 0; i < len(s); i++ {
		hash += (uint64(s[i]) * stringMul) ^ (hash >> 7)
	}
	return hash ^ (hash << 37), nil
}

// StringFast is the polynomial rolling hash h = 37*h + b.
// The distribution is weak; reduce it modulo a prime with Bucket.
// Like String, it hashes embedded NUL bytes.
func StringFast(s string) (Key, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidArgument)
	}

	var h uint64
	for i := 0; i < len(s); i++ {
		h = fastMul*h + uint64(s[i])
	}
	return h, nil
}

// Point hashes an integer coordinate pair.
func Point(x, y int32) Key {
	// Explicit float64 conversions keep the compiler from fusing into an FMA.
	v := float64(pointX*float64(x)) + float64(pointY*float64(y))
	return truncate(v)
}

// Float64 hashes v by scaling with a sign-dependent constant.
// NaN hashes to 0.
func Float64(v float64) Key {
	if v >= 0 {
		v = float64(floatPos * v)
	} else {
		v = float64(floatNeg * v)
	}
	return truncate(v)
}

// Bucket reduces k into a table of nbuckets slots. nbuckets should be prime.
// It returns 0 when nbuckets is 0.
func Bucket(k Key, nbuckets uint32) uint32 {
	if nbuckets == 0 {
		return 0
	}
	return uint32(k % uint64(nbuckets))
}

// truncate converts v to uint64 rounding toward zero. Negative values wrap
// through int64 (two's complement); values beyond the range saturate.
func truncate(v float64) uint64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= 0x1p64:
		return math.MaxUint64
	case v >= 0:
		return uint64(v)
	case v <= -0x1p63:
		return 1 << 63
	default:
		return uint64(int64(v))
	}
}
