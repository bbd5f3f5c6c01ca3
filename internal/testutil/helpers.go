// Package testutil provides reusable helpers for the filter-and-subsample
// tests: complex-slice assertions, deterministic signal generators, and a
// naive direct evaluation of the stage used as the golden reference.
package testutil

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/tphakala/go-soi-fft/internal/filter"
	"github.com/tphakala/go-soi-fft/internal/partition"
)

// DefaultTolerance bounds the element-wise error between the sliding
// window engine and the naive reference on unit-magnitude inputs.
const DefaultTolerance = 1e-12

// AssertComplexInDelta verifies got against want element by element within
// tol in both components.
func AssertComplexInDelta(t *testing.T, want, got []complex128, tol float64) bool {
	t.Helper()
	if !assert.Len(t, got, len(want)) {
		return false
	}
	for i := range want {
		if math.Abs(real(want[i])-real(got[i])) > tol ||
			math.Abs(imag(want[i])-imag(got[i])) > tol {
			return assert.Fail(t, "complex mismatch",
				"at %d: got %v, want %v (tol %g)", i, got[i], want[i], tol)
		}
	}
	return true
}

// AssertComplexEqual verifies bit-identical complex slices.
func AssertComplexEqual(t *testing.T, want, got []complex128) bool {
	t.Helper()
	if !assert.Len(t, got, len(want)) {
		return false
	}
	for i := range want {
		if want[i] != got[i] {
			return assert.Fail(t, "complex slices differ",
				"at %d: got %v, want %v", i, got[i], want[i])
		}
	}
	return true
}

// MaxAbsDiff returns the largest element-wise modulus of a-b.
func MaxAbsDiff(a, b []complex128) float64 {
	var m float64
	for i := range a {
		if d := cmplx.Abs(a[i] - b[i]); d > m {
			m = d
		}
	}
	return m
}

// RandomComplex returns n deterministic pseudo-random samples in the unit
// square, seeded so failures reproduce.
func RandomComplex(n int, seed int64) []complex128 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]complex128, n)
	for i := range out {
		out[i] = complex(2*rng.Float64()-1, 2*rng.Float64()-1)
	}
	return out
}

// Impulse returns a length-n vector with a single unit sample at position at.
func Impulse(n, at int) []complex128 {
	out := make([]complex128, n)
	out[at] = 1
	return out
}

// Tone returns a length-n complex exponential completing cycles periods.
func Tone(n, cycles int) []complex128 {
	out := make([]complex128, n)
	for i := range out {
		arg := 2 * math.Pi * float64(cycles) * float64(i) / float64(n)
		out[i] = cmplx.Exp(complex(0, arg))
	}
	return out
}

// NaiveFilterSubsample evaluates one rank's output directly: a full B-tap
// convolution per row without the sliding window, a forward FFT of each
// oversampled block, and an element-by-element scatter. It is the oracle
// the engine is checked against. ext is the rank's input followed by the
// leading halo segments of the right neighbour's input.
func NaiveFilterSubsample(g *partition.Geometry, bank *filter.Bank, ext []complex128) []complex128 {
	want := (g.LocalBlocks() + g.HaloSegments()) * g.S
	if len(ext) != want {
		panic("testutil: extended input length mismatch")
	}

	fft := fourier.NewCmplxFFT(g.S)
	l := g.OutputStride()
	out := make([]complex128, g.OutputLen())
	beta := make([]complex128, g.S)
	hat := make([]complex128, g.S)

	for j := 0; j < g.BlockRows(); j++ {
		for theta := 0; theta < g.NMu; theta++ {
			for pos := range beta {
				beta[pos] = 0
			}
			for tap := 0; tap < g.B; tap++ {
				seg := ext[(j*g.DMu+tap)*g.S : (j*g.DMu+tap+1)*g.S]
				w := bank.Row(tap, theta)
				for pos := 0; pos < g.S; pos++ {
					beta[pos] += w[pos] * seg[pos]
				}
			}
			fft.Coefficients(hat, beta)
			for s := 0; s < g.S; s++ {
				out[s*l+j*g.NMu+theta] = hat[s]
			}
		}
	}
	return out
}

// ExtendedInput builds rank r's extended input from the global vector:
// the local chunk plus the halo segments that wrap around the ring.
func ExtendedInput(g *partition.Geometry, global []complex128) []complex128 {
	chunk := g.InputLen()
	halo := g.HaloSegments() * g.S
	ext := make([]complex128, chunk+halo)
	copy(ext, global[g.Rank*chunk:(g.Rank+1)*chunk])
	for i := 0; i < halo; i++ {
		ext[chunk+i] = global[((g.Rank+1)*chunk+i)%len(global)]
	}
	return ext
}
