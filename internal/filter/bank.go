// Package filter builds the coefficient tables of the oversampled analysis
// bank. A table holds one B-tap complex window per oversampling phase per
// segment position, tiled so that the convolution engine reads each
// (tap, phase) row with unit stride across positions.
package filter

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/tphakala/go-soi-fft/internal/mathutil"
)

// Default prototype design.
const (
	// DefaultAttenuation is the stopband attenuation of the Kaiser
	// prototype when the caller supplies no table.
	DefaultAttenuation = 90.0
)

// Bank is the tiled coefficient table. Rows are indexed by (tap, phase);
// each row holds S coefficients, one per position within a segment block.
// The table is immutable once built and shared read-only across workers.
type Bank struct {
	S    int // positions per row (block length)
	B    int // taps
	NMu  int // oversampling phases
	rows [][]complex128
}

// Row returns the coefficients for one tap of one oversampling phase.
// The returned slice must not be modified.
func (b *Bank) Row(tap, phase int) []complex128 {
	return b.rows[tap*b.NMu+phase]
}

// Coeff returns a single coefficient; used by reference recomputation in
// tests, not by the engine.
func (b *Bank) Coeff(tap, phase, pos int) complex128 {
	return b.rows[tap*b.NMu+phase][pos]
}

// NewBank designs the default bank: a Kaiser-windowed prototype of length
// B·S, modulated per oversampling phase θ by exp(−2πi·θ·t/(n_mu·S)).
func NewBank(s, taps, nMu int, attenuation float64) *Bank {
	if attenuation <= 0 {
		attenuation = DefaultAttenuation
	}
	proto := KaiserWindow(taps*s, mathutil.KaiserBeta(attenuation))

	b := &Bank{S: s, B: taps, NMu: nMu, rows: make([][]complex128, taps*nMu)}
	flat := make([]complex128, taps*nMu*s)
	for tap := 0; tap < taps; tap++ {
		for phase := 0; phase < nMu; phase++ {
			row := flat[(tap*nMu+phase)*s : (tap*nMu+phase+1)*s]
			for pos := 0; pos < s; pos++ {
				t := tap*s + pos
				arg := -2 * math.Pi * float64(phase) * float64(t) / float64(nMu*s)
				row[pos] = complex(proto[t], 0) * cmplx.Exp(complex(0, arg))
			}
			b.rows[tap*nMu+phase] = row
		}
	}
	return b
}

// NewBankFromTable wraps a caller-supplied flat table laid out as
// [tap][phase][position]. The data is referenced, not copied.
func NewBankFromTable(s, taps, nMu int, table []complex128) (*Bank, error) {
	want := taps * nMu * s
	if len(table) != want {
		return nil, fmt.Errorf("filter table has %d coefficients, want %d (B=%d n_mu=%d S=%d)",
			len(table), want, taps, nMu, s)
	}
	b := &Bank{S: s, B: taps, NMu: nMu, rows: make([][]complex128, taps*nMu)}
	for r := range b.rows {
		b.rows[r] = table[r*s : (r+1)*s]
	}
	return b, nil
}

// KaiserWindow generates a Kaiser window of the given length and β,
// normalized so the coefficients sum to 1. The window is symmetric:
// w[i] == w[length-1-i].
func KaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return nil
	}
	window := make([]float64, length)
	if length == 1 {
		window[0] = 1
		return window
	}

	alpha := float64(length-1) / 2
	i0Beta := mathutil.BesselI0(beta)
	var sum float64
	for n := range window {
		x := (float64(n) - alpha) / alpha
		window[n] = mathutil.BesselI0(beta*math.Sqrt(1-x*x)) / i0Beta
		sum += window[n]
	}
	for n := range window {
		window[n] /= sum
	}
	return window
}
