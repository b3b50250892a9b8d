package prime

import (
	"fmt"
	"math"

	"github.com/hupe1980/faultkit/internal/errs"
)

// ErrInvalidArgument is returned for n == 0 or a non-positive start.
var ErrInvalidArgument = errs.ErrInvalidArgument

// Verdict is the outcome of IsPrime: either Prime or Composite with its
// smallest divisor. The zero value is Prime.
type Verdict struct {
	factor uint32
}

// Prime returns the prime verdict.
func Prime() Verdict { return Verdict{} }

// Composite returns a composite verdict carrying the smallest divisor found.
func Composite(factor uint32) Verdict { return Verdict{factor: factor} }

// IsPrime reports whether the verdict is Prime.
func (v Verdict) IsPrime() bool { return v.factor == 0 }

// Factor returns the smallest divisor for a Composite verdict.
func (v Verdict) Factor() (uint32, bool) {
	return v.factor, v.factor != 0
}

func (v Verdict) String() string {
	if v.IsPrime() {
		return "prime"
	}
	return fmt.Sprintf("composite(%d)", v.factor)
}

// IsPrime classifies n by trial division.
func IsPrime(n uint64) (Verdict, error) {
	if n == 0 {
		return Verdict{}, fmt.Errorf("%w: n must be > 0", ErrInvalidArgument)
	}

	if n%2 == 0 {
		return Composite(2), nil
	}

	limit := isqrt(n)
	for d := uint64(3); d <= limit; d += 2 {
		if n%d == 0 {
			// d <= sqrt(MaxUint64) < 2^32
			return Composite(uint32(d)), nil
		}
	}

	return Prime(), nil
}

// NextLargerPrime returns the first value greater than start that IsPrime
// classifies as prime. A prime always exists below 2^32 for any int32 start.
func NextLargerPrime(start int32) (uint32, error) {
	if start <= 0 {
		return 0, fmt.Errorf("%w: start must be > 0, got %d", ErrInvalidArgument, start)
	}

	for n := uint64(start) + 1; ; n++ {
		v, err := IsPrime(n)
		if err != nil {
			return 0, err
		}
		if v.IsPrime() {
			return uint32(n), nil
		}
	}
}

// TableSize returns the smallest prime strictly larger than minBuckets,
// suitable as the modulus for hashkey.Bucket.
func TableSize(minBuckets int32) (uint32, error) {
	if minBuckets < 1 {
		minBuckets = 1
	}
	return NextLargerPrime(minBuckets)
}

// isqrt returns floor(sqrt(n)) exactly; the float estimate can be off by one
// for n above 2^52.
func isqrt(n uint64) uint64 {
	r := uint64(math.Sqrt(float64(n)))
	if r > math.MaxUint32 {
		r = math.MaxUint32
	}
	for r*r > n {
		r--
	}
	for (r+1) <= math.MaxUint32 && (r+1)*(r+1) <= n {
		r++
	}
	return r
}
