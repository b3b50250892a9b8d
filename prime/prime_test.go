package prime

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPrime(t *testing.T) {
	tests := []struct {
		name   string
		n      uint64
		prime  bool
		factor uint32
	}{
		{"four", 4, false, 2},
		{"nine", 9, false, 3},
		{"fifteen", 15, false, 3},
		{"thirty-five", 35, false, 5},
		{"three", 3, true, 0},
		{"seven", 7, true, 0},
		{"eleven", 11, true, 0},
		{"mersenne31", 2147483647, true, 0},
		{"largest uint32 prime", 4294967291, true, 0},
		{"semiprime", 1000003 * 1000033, false, 1000003},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := IsPrime(tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.prime, v.IsPrime())

			f, ok := v.Factor()
			assert.Equal(t, !tt.prime, ok)
			assert.Equal(t, tt.factor, f)
		})
	}
}

func TestIsPrime_Zero(t *testing.T) {
	v, err := IsPrime(0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.True(t, v.IsPrime(), "zero verdict on error")
}

// The even short-circuit classifies 2 as composite and 1 falls through the
// trial loop as prime. Both are kept deliberately.
func TestIsPrime_SmallEdgeCases(t *testing.T) {
	v, err := IsPrime(2)
	require.NoError(t, err)
	assert.Equal(t, Composite(2), v)

	v, err = IsPrime(1)
	require.NoError(t, err)
	assert.Equal(t, Prime(), v)
}

// Trial division includes floor(sqrt(n)) itself. A strict bound would
// misclassify these squares of primes as prime.
func TestIsPrime_SquaresOfPrimesAreComposite(t *testing.T) {
	for _, p := range []uint64{3, 5, 7, 11, 13, 65521} {
		v, err := IsPrime(p * p)
		require.NoError(t, err)
		f, ok := v.Factor()
		assert.True(t, ok, "%d should be composite", p*p)
		assert.Equal(t, uint32(p), f)
	}
}

func TestNextLargerPrime(t *testing.T) {
	p, err := NextLargerPrime(7)
	require.NoError(t, err)
	assert.Equal(t, uint32(11), p)

	p, err = NextLargerPrime(1)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), p, "2 is classified composite")

	p, err = NextLargerPrime(math.MaxInt32 - 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxInt32), p)

	for _, bad := range []int32{0, -1, math.MinInt32} {
		p, err := NextLargerPrime(bad)
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.Zero(t, p)
	}
}

func TestNextLargerPrime_NoPrimeSkipped(t *testing.T) {
	for start := int32(1); start < 2000; start++ {
		next, err := NextLargerPrime(start)
		require.NoError(t, err)

		v, err := IsPrime(uint64(next))
		require.NoError(t, err)
		require.True(t, v.IsPrime(), "start=%d next=%d", start, next)

		for n := uint64(start) + 1; n < uint64(next); n++ {
			v, err := IsPrime(n)
			require.NoError(t, err)
			require.False(t, v.IsPrime(), "start=%d skipped prime %d", start, n)
		}
	}
}

func TestTableSize(t *testing.T) {
	p, err := TableSize(100)
	require.NoError(t, err)
	assert.Equal(t, uint32(101), p)

	p, err = TableSize(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), p)
}

func TestVerdict_String(t *testing.T) {
	assert.Equal(t, "prime", Prime().String())
	assert.Equal(t, "composite(3)", Composite(3).String())
}

func TestIsqrt(t *testing.T) {
	for _, n := range []uint64{0, 1, 3, 4, 8, 9, 1<<52 + 1, 1<<62 - 1, math.MaxUint64} {
		r := isqrt(n)
		assert.LessOrEqual(t, r*r, n)
		if r < math.MaxUint32 {
			assert.Greater(t, (r+1)*(r+1), n)
		}
	}
}
