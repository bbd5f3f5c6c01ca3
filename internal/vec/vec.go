// Package vec provides the complex vector kernels used by the convolution
// engine. Operations are exposed through a function table so hot loops bind
// them once at setup time; elementwise products delegate to SIMD-backed
// implementations, the fused multiply-accumulate is a tight scalar loop.
package vec

import (
	"github.com/tphakala/simd/c128"
)

// Ops is the kernel table for complex128 slices. All operations require
// equal-length slices; callers guarantee lengths, no bounds negotiation
// happens in the hot path.
type Ops struct {
	// MulTo computes dst[i] = a[i] * b[i].
	MulTo func(dst, a, b []complex128)

	// MulAddTo computes dst[i] += a[i] * b[i].
	MulAddTo func(dst, a, b []complex128)
}

var defaultOps = Ops{
	MulTo:    c128.Mul,
	MulAddTo: mulAddTo,
}

// Default returns the kernel table.
func Default() *Ops {
	return &defaultOps
}

func mulAddTo(dst, a, b []complex128) {
	if len(a) == 0 {
		return
	}
	_ = dst[len(a)-1]
	_ = b[len(a)-1]
	i := 0
	for ; i+4 <= len(a); i += 4 {
		dst[i] += a[i] * b[i]
		dst[i+1] += a[i+1] * b[i+1]
		dst[i+2] += a[i+2] * b[i+2]
		dst[i+3] += a[i+3] * b[i+3]
	}
	for ; i < len(a); i++ {
		dst[i] += a[i] * b[i]
	}
}
