package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeometryDerivedSizes(t *testing.T) {
	// N=1024, P=4, k=4 -> S=16, M=64, 16 blocks per rank.
	g, err := NewGeometry(1024, 4, 1, 4, 8, 5, 4)
	require.NoError(t, err)

	assert.Equal(t, 16, g.S)
	assert.Equal(t, 64, g.M)
	assert.Equal(t, 80, g.MHat)
	assert.Equal(t, 16, g.LocalBlocks())
	assert.Equal(t, 4, g.BlockRows())
	assert.Equal(t, 2, g.Interior())
	assert.Equal(t, 2, g.Boundary())
	assert.Equal(t, 8, g.TailSegments())
	assert.Equal(t, 4, g.HaloSegments())
	assert.Equal(t, (8+4)*16, g.GhostLen())
	assert.Equal(t, 256, g.InputLen())
	assert.Equal(t, 20, g.OutputStride())
	assert.Equal(t, 320, g.OutputLen())
	assert.Equal(t, 0, g.Left())
	assert.Equal(t, 2, g.Right())
}

func TestNewGeometrySingleRank(t *testing.T) {
	g, err := NewGeometry(512, 1, 0, 8, 8, 5, 4)
	require.NoError(t, err)

	assert.Equal(t, 8, g.S)
	assert.Equal(t, 64, g.LocalBlocks())
	assert.Equal(t, 0, g.Left())
	assert.Equal(t, 0, g.Right())
	// Interior + boundary rows always cover the full row count.
	assert.Equal(t, g.BlockRows(), g.Interior()+g.Boundary())
	// The ghost buffer holds exactly what boundary windows read.
	assert.Equal(t, (g.Boundary()-1)*g.DMu+g.B, g.TailSegments()+g.HaloSegments())
}

func TestNewGeometryErrors(t *testing.T) {
	tests := []struct {
		name             string
		n, p, rank, k, b int
		nMu, dMu         int
		wantErr          error
	}{
		{"rank out of range", 1024, 4, 4, 4, 8, 5, 4, ErrMisaligned},
		{"negative rank", 1024, 4, -1, 4, 8, 5, 4, ErrMisaligned},
		{"taps below step", 1024, 4, 0, 4, 3, 5, 4, ErrMisaligned},
		{"n not multiple of s", 1000, 4, 0, 4, 8, 5, 4, ErrMisaligned},
		{"blocks not divisible by ranks", 96, 4, 0, 2, 4, 5, 4, ErrMisaligned},
		{"window wider than local input", 256, 4, 0, 4, 8, 5, 4, ErrInputTooSmall},
		{"local blocks not multiple of step", 40, 2, 0, 1, 8, 5, 4, ErrMisaligned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGeometry(tt.n, tt.p, tt.rank, tt.k, tt.b, tt.nMu, tt.dMu)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGeometryRingNeighbours(t *testing.T) {
	for rank := 0; rank < 4; rank++ {
		g, err := NewGeometry(1024, 4, rank, 4, 8, 5, 4)
		require.NoError(t, err)
		assert.Equal(t, (rank+3)%4, g.Left())
		assert.Equal(t, (rank+1)%4, g.Right())
	}
}
