package engine

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// BlockTransform is the opaque forward-transform collaborator. Forward
// replaces the S-length block with its transform; it must be deterministic
// and free of side effects beyond the block contents.
//
// Instances are not shared across workers: the stage creates one per worker
// through its factory.
type BlockTransform interface {
	Forward(block []complex128)
}

// fftTransform wraps gonum's complex FFT with a scratch buffer so callers
// get in-place semantics without per-call allocation.
type fftTransform struct {
	fft     *fourier.CmplxFFT
	scratch []complex128
}

// NewFFTTransform returns the default forward transform of length n.
func NewFFTTransform(n int) BlockTransform {
	return &fftTransform{
		fft:     fourier.NewCmplxFFT(n),
		scratch: make([]complex128, n),
	}
}

func (t *fftTransform) Forward(block []complex128) {
	copy(t.scratch, block)
	t.fft.Coefficients(block, t.scratch)
}
