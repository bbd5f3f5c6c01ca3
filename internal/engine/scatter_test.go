package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-soi-fft/internal/testutil"
)

func TestScattererFor(t *testing.T) {
	assert.IsType(t, blockScatter8{}, scattererFor(8))
	assert.IsType(t, scalarScatter{}, scattererFor(5))
}

func TestBlockScatter8MatchesScalar(t *testing.T) {
	const (
		s    = 16
		nMu  = 8
		rows = 3
	)
	l := rows * nMu
	gamma := testutil.RandomComplex(rows*nMu*s, 7)

	want := make([]complex128, s*l)
	got := make([]complex128, s*l)
	for j := 0; j < rows; j++ {
		scalarScatter{}.scatter(want, gamma, s, l, nMu, j)
		blockScatter8{}.scatter(got, gamma, s, l, nMu, j)
	}

	// The specialization must be bit-identical, it only reorders writes.
	testutil.AssertComplexEqual(t, want, got)
}

func TestScalarScatterWritesEachElementOnce(t *testing.T) {
	const (
		s    = 8
		nMu  = 5
		rows = 4
	)
	l := rows * nMu
	gamma := make([]complex128, rows*nMu*s)
	for i := range gamma {
		gamma[i] = complex(float64(i), 0)
	}

	dst := make([]complex128, s*l)
	for i := range dst {
		dst[i] = complex(-1, 0)
	}
	for j := 0; j < rows; j++ {
		scalarScatter{}.scatter(dst, gamma, s, l, nMu, j)
	}

	// No element keeps the sentinel and the layout is the strided one.
	for pos := 0; pos < s; pos++ {
		for j := 0; j < rows; j++ {
			for theta := 0; theta < nMu; theta++ {
				got := dst[pos*l+j*nMu+theta]
				want := gamma[(j*nMu+theta)*s+pos]
				require.Equal(t, want, got, "pos=%d j=%d theta=%d", pos, j, theta)
			}
		}
	}
}
