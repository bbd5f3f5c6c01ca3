// Package engine implements the filter-and-subsample kernel: the windowed
// convolution of the partitioned input against the analysis bank, the
// per-block forward transform, and the strided scatter of transform outputs
// into the layout the next pipeline stage expects.
package engine

import (
	"errors"
	"fmt"
)

// ErrUnsupportedRatio indicates an oversampling ratio with no specialized
// convolution variant.
var ErrUnsupportedRatio = errors.New("unsupported oversampling ratio")

// Variant is one member of the closed set of ratio specializations. The
// variant is selected once at descriptor construction; the hot loops read
// its constants instead of branching on the ratio.
//
// Unroll is the number of block rows advanced per sliding-window step. It
// mirrors the register budget of the original kernels: the 5-phase variant
// fits two rows of phase accumulators, the 8-phase variant one.
type Variant struct {
	NMu    int
	DMu    int
	Unroll int
}

var (
	variant5x4 = Variant{NMu: 5, DMu: 4, Unroll: 2}
	variant8x7 = Variant{NMu: 8, DMu: 7, Unroll: 1}
)

// VariantFor returns the specialization for an oversampling ratio.
// Only 5/4 and 8/7 are tabulated.
func VariantFor(nMu, dMu int) (Variant, error) {
	switch {
	case nMu == 5 && dMu == 4:
		return variant5x4, nil
	case nMu == 8 && dMu == 7:
		return variant8x7, nil
	default:
		return Variant{}, fmt.Errorf("%w: %d/%d (supported: 5/4, 8/7)", ErrUnsupportedRatio, nMu, dMu)
	}
}
