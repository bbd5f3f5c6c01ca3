package vec

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randComplex(n int, seed int64) []complex128 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]complex128, n)
	for i := range out {
		out[i] = complex(2*rng.Float64()-1, 2*rng.Float64()-1)
	}
	return out
}

func TestMulTo(t *testing.T) {
	ops := Default()
	for _, n := range []int{1, 3, 4, 7, 16, 33} {
		a := randComplex(n, 10)
		b := randComplex(n, 11)
		dst := make([]complex128, n)
		ops.MulTo(dst, a, b)
		for i := range dst {
			assert.InDelta(t, real(a[i]*b[i]), real(dst[i]), 1e-15, "n=%d i=%d", n, i)
			assert.InDelta(t, imag(a[i]*b[i]), imag(dst[i]), 1e-15, "n=%d i=%d", n, i)
		}
	}
}

func TestMulAddTo(t *testing.T) {
	ops := Default()
	// Lengths straddling the unroll width, including the scalar tail.
	for _, n := range []int{0, 1, 3, 4, 5, 8, 13, 64} {
		a := randComplex(n, 20)
		b := randComplex(n, 21)
		dst := randComplex(n, 22)
		want := make([]complex128, n)
		for i := range want {
			want[i] = dst[i] + a[i]*b[i]
		}
		ops.MulAddTo(dst, a, b)
		require.Equal(t, want, dst, "n=%d", n)
	}
}

func TestMulAddToAccumulates(t *testing.T) {
	ops := Default()
	a := randComplex(16, 30)
	dst := make([]complex128, 16)
	ones := make([]complex128, 16)
	for i := range ones {
		ones[i] = 1
	}
	ops.MulAddTo(dst, a, ones)
	ops.MulAddTo(dst, a, ones)
	for i := range dst {
		assert.Equal(t, a[i]+a[i], dst[i], "i=%d", i)
	}
}
