package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-soi-fft/internal/filter"
	"github.com/tphakala/go-soi-fft/internal/halo"
	"github.com/tphakala/go-soi-fft/internal/partition"
	"github.com/tphakala/go-soi-fft/internal/testutil"
)

// singleRankStage builds a one-rank stage whose ring wraps to itself.
func singleRankStage(t *testing.T, g *partition.Geometry, bank *filter.Bank, workers int) *Stage {
	t.Helper()
	links := halo.ChanRing(1)
	st, err := New(Params{Geometry: g, Bank: bank, Workers: workers, Link: links[0]})
	require.NoError(t, err)
	return st
}

func TestStageMatchesNaiveReference5x4(t *testing.T) {
	g, err := partition.NewGeometry(512, 1, 0, 8, 8, 5, 4)
	require.NoError(t, err)
	bank := filter.NewBank(g.S, g.B, g.NMu, 0)
	st := singleRankStage(t, g, bank, 4)

	alpha := testutil.RandomComplex(g.InputLen(), 1)
	out := make([]complex128, g.OutputLen())
	_, err = st.Run(alpha, out)
	require.NoError(t, err)

	want := testutil.NaiveFilterSubsample(g, bank, testutil.ExtendedInput(g, alpha))
	testutil.AssertComplexInDelta(t, want, out, testutil.DefaultTolerance)
}

func TestStageMatchesNaiveReference8x7(t *testing.T) {
	g, err := partition.NewGeometry(168, 1, 0, 8, 8, 8, 7)
	require.NoError(t, err)
	bank := filter.NewBank(g.S, g.B, g.NMu, 0)
	st := singleRankStage(t, g, bank, 2)

	alpha := testutil.RandomComplex(g.InputLen(), 2)
	out := make([]complex128, g.OutputLen())
	_, err = st.Run(alpha, out)
	require.NoError(t, err)

	want := testutil.NaiveFilterSubsample(g, bank, testutil.ExtendedInput(g, alpha))
	testutil.AssertComplexInDelta(t, want, out, testutil.DefaultTolerance)
}

func TestStageDeterministic(t *testing.T) {
	g, err := partition.NewGeometry(512, 1, 0, 8, 8, 5, 4)
	require.NoError(t, err)
	bank := filter.NewBank(g.S, g.B, g.NMu, 0)
	st := singleRankStage(t, g, bank, 4)

	alpha := testutil.RandomComplex(g.InputLen(), 3)
	first := make([]complex128, g.OutputLen())
	second := make([]complex128, g.OutputLen())

	_, err = st.Run(alpha, first)
	require.NoError(t, err)
	_, err = st.Run(alpha, second)
	require.NoError(t, err)

	// Same stage, same input: bit-identical output.
	testutil.AssertComplexEqual(t, first, second)
}

// passTransform leaves blocks untouched, exposing the scatter layout.
type passTransform struct{}

func (passTransform) Forward([]complex128) {}

func TestStageScatterLayout(t *testing.T) {
	g, err := partition.NewGeometry(512, 1, 0, 8, 8, 5, 4)
	require.NoError(t, err)

	// Single-tap-selective bank: phase θ passes segment j*d_mu scaled by
	// θ+1, every other tap contributes nothing.
	table := make([]complex128, g.B*g.NMu*g.S)
	for theta := 0; theta < g.NMu; theta++ {
		row := table[theta*g.S : (theta+1)*g.S]
		for pos := range row {
			row[pos] = complex(float64(theta+1), 0)
		}
	}
	bank, err := filter.NewBankFromTable(g.S, g.B, g.NMu, table)
	require.NoError(t, err)

	links := halo.ChanRing(1)
	st, err := New(Params{
		Geometry: g,
		Bank:     bank,
		Workers:  4,
		Link:     links[0],
		NewTransform: func(int) BlockTransform {
			return passTransform{}
		},
	})
	require.NoError(t, err)

	alpha := testutil.RandomComplex(g.InputLen(), 4)
	out := make([]complex128, g.OutputLen())
	_, err = st.Run(alpha, out)
	require.NoError(t, err)

	l := g.OutputStride()
	for j := 0; j < g.BlockRows(); j++ {
		for theta := 0; theta < g.NMu; theta++ {
			scale := complex(float64(theta+1), 0)
			for s := 0; s < g.S; s++ {
				want := scale * alpha[j*g.DMu*g.S+s]
				got := out[s*l+j*g.NMu+theta]
				require.Equal(t, want, got, "j=%d theta=%d s=%d", j, theta, s)
			}
		}
	}
}

func TestStageInputLengthChecks(t *testing.T) {
	g, err := partition.NewGeometry(512, 1, 0, 8, 8, 5, 4)
	require.NoError(t, err)
	bank := filter.NewBank(g.S, g.B, g.NMu, 0)
	st := singleRankStage(t, g, bank, 4)

	out := make([]complex128, g.OutputLen())
	_, err = st.Run(make([]complex128, g.InputLen()-1), out)
	assert.Error(t, err)

	_, err = st.Run(make([]complex128, g.InputLen()), out[:len(out)-1])
	assert.Error(t, err)
}

func TestStageRejectsMismatchedBank(t *testing.T) {
	g, err := partition.NewGeometry(512, 1, 0, 8, 8, 5, 4)
	require.NoError(t, err)
	bank := filter.NewBank(g.S, g.B-1, g.NMu, 0)

	links := halo.ChanRing(1)
	_, err = New(Params{Geometry: g, Bank: bank, Workers: 4, Link: links[0]})
	assert.Error(t, err)
}

func TestStageTransportFailure(t *testing.T) {
	g, err := partition.NewGeometry(512, 1, 0, 8, 8, 5, 4)
	require.NoError(t, err)
	bank := filter.NewBank(g.S, g.B, g.NMu, 0)

	st, err := New(Params{Geometry: g, Bank: bank, Workers: 4, Link: refuseLink{}})
	require.NoError(t, err)

	out := make([]complex128, g.OutputLen())
	_, err = st.Run(make([]complex128, g.InputLen()), out)
	require.Error(t, err)
	assert.ErrorIs(t, err, halo.ErrLink)
}

type refuseLink struct{}

func (refuseLink) SendLeft([]complex128) error { return halo.ErrLink }

func (refuseLink) RecvRight([]complex128) error { return halo.ErrLink }

func TestStageMetrics(t *testing.T) {
	g, err := partition.NewGeometry(512, 1, 0, 8, 8, 5, 4)
	require.NoError(t, err)
	bank := filter.NewBank(g.S, g.B, g.NMu, 0)
	st := singleRankStage(t, g, bank, 4)

	alpha := testutil.RandomComplex(g.InputLen(), 5)
	out := make([]complex128, g.OutputLen())
	m, err := st.Run(alpha, out)
	require.NoError(t, err)

	assert.Len(t, m.WorkerBusy, 4)
	assert.Positive(t, m.Convolve)
	assert.Positive(t, m.Transform)
	assert.Positive(t, m.Scatter)
}

func TestVariantFor(t *testing.T) {
	v, err := VariantFor(5, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Unroll)

	v, err = VariantFor(8, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Unroll)

	_, err = VariantFor(3, 2)
	assert.ErrorIs(t, err, ErrUnsupportedRatio)
}
