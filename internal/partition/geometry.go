// Package partition holds the static geometry of the distributed
// filter-and-subsample computation: how the global vector is split across
// ranks, how many output blocks each rank owns, and how the block and
// position index spaces are divided across workers.
package partition

import (
	"errors"
	"fmt"
)

// Errors reported while validating geometry. The root package wraps these
// into its configuration error taxonomy.
var (
	// ErrInputTooSmall indicates a rank does not hold enough segments to
	// cover even one filter window (M/P < B).
	ErrInputTooSmall = errors.New("local input smaller than one filter window")

	// ErrMisaligned indicates the global sizes do not factor into the
	// required segment/rank/step alignment.
	ErrMisaligned = errors.New("misaligned partition geometry")
)

// Geometry describes one rank's view of the global computation.
//
// The global vector of length N is seen as M = N/S blocks of S elements,
// where S = K*P is the total segment count. Each rank owns M/P consecutive
// blocks. Filtering produces NMu output block rows for every DMu input
// blocks, so the oversampled global block count is MHat = NMu*M/DMu.
type Geometry struct {
	N    int // global vector length
	P    int // number of ranks
	Rank int // this rank, in [0, P)
	K    int // segments per rank
	S    int // total segment count; also the block length
	M    int // global block count N/S
	MHat int // oversampled global block count NMu*M/DMu
	B    int // filter taps, in blocks
	NMu  int // oversampling numerator
	DMu  int // oversampling denominator
}

// NewGeometry derives and checks the per-rank geometry.
func NewGeometry(n, p, rank, k, b, nMu, dMu int) (*Geometry, error) {
	if p < 1 || rank < 0 || rank >= p {
		return nil, fmt.Errorf("%w: rank %d of %d", ErrMisaligned, rank, p)
	}
	if k < 1 || b < 1 || nMu < 1 || dMu < 1 {
		return nil, fmt.Errorf("%w: k=%d B=%d ratio=%d/%d", ErrMisaligned, k, b, nMu, dMu)
	}
	if b < dMu {
		return nil, fmt.Errorf("%w: taps B=%d smaller than block step %d", ErrMisaligned, b, dMu)
	}
	s := k * p
	if n <= 0 || n%s != 0 {
		return nil, fmt.Errorf("%w: N=%d not a multiple of S=%d", ErrMisaligned, n, s)
	}
	m := n / s
	if m%p != 0 {
		return nil, fmt.Errorf("%w: M=%d blocks not divisible by %d ranks", ErrMisaligned, m, p)
	}
	local := m / p
	if local < b {
		return nil, fmt.Errorf("%w: M/P=%d < B=%d", ErrInputTooSmall, local, b)
	}
	if local%dMu != 0 {
		return nil, fmt.Errorf("%w: M/P=%d not a multiple of d_mu=%d", ErrMisaligned, local, dMu)
	}
	if (nMu*m)%dMu != 0 {
		return nil, fmt.Errorf("%w: oversampled length %d*%d not divisible by %d", ErrMisaligned, nMu, m, dMu)
	}
	return &Geometry{
		N:    n,
		P:    p,
		Rank: rank,
		K:    k,
		S:    s,
		M:    m,
		MHat: nMu * m / dMu,
		B:    b,
		NMu:  nMu,
		DMu:  dMu,
	}, nil
}

// LocalBlocks is the number of input blocks this rank owns (M/P).
func (g *Geometry) LocalBlocks() int { return g.M / g.P }

// BlockRows is the number of output block-row groups this rank computes.
// Each group spans NMu oversampling phases, so the rank produces
// BlockRows*NMu output blocks of S samples.
func (g *Geometry) BlockRows() int { return g.LocalBlocks() / g.DMu }

// Interior is K_0, the count of block rows computable from purely local
// data: floor(((M/P) - B) / d_mu).
func (g *Geometry) Interior() int { return (g.LocalBlocks() - g.B) / g.DMu }

// Boundary is the count of block rows that need ghost data.
func (g *Geometry) Boundary() int { return g.BlockRows() - g.Interior() }

// TailSegments is b_cnt, the number of trailing locally owned blocks copied
// into the head of the ghost buffer before boundary rows can start.
func (g *Geometry) TailSegments() int { return g.LocalBlocks() - g.Interior()*g.DMu }

// HaloSegments is the number of blocks received from the right neighbour
// (and sent to the left neighbour): B - d_mu.
func (g *Geometry) HaloSegments() int { return g.B - g.DMu }

// GhostLen is the ghost buffer length in samples: owned tail plus received
// halo, (b_cnt + B - d_mu) * S.
func (g *Geometry) GhostLen() int { return (g.TailSegments() + g.HaloSegments()) * g.S }

// InputLen is the per-rank input length in samples.
func (g *Geometry) InputLen() int { return g.LocalBlocks() * g.S }

// OutputLen is the per-rank output length in samples.
func (g *Geometry) OutputLen() int { return g.OutputStride() * g.S }

// OutputStride is l = MHat/P, the distance in the output array between two
// consecutive sample indices of the same block.
func (g *Geometry) OutputStride() int { return g.MHat / g.P }

// Left is the ring neighbour this rank sends its leading halo to.
func (g *Geometry) Left() int { return (g.Rank + g.P - 1) % g.P }

// Right is the ring neighbour this rank receives ghost data from.
func (g *Geometry) Right() int { return (g.Rank + 1) % g.P }
