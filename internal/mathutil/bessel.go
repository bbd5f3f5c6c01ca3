// Package mathutil provides the special functions needed for window design.
package mathutil

import "math"

// Approximation thresholds and Kaiser formula constants.
const (
	besselSmallArg = 3.75 // switch between series and asymptotic forms

	kaiserAttHigh   = 50.0
	kaiserAttMedium = 21.0

	kaiserBetaHighCoeff    = 0.1102
	kaiserBetaHighOffset   = 8.7
	kaiserBetaMediumCoeff1 = 0.5842
	kaiserBetaMediumPower  = 0.4
	kaiserBetaMediumCoeff2 = 0.07886
)

// Chebyshev coefficients for I₀(x), from Abramowitz & Stegun.
var (
	besselI0Series = [6]float64{
		3.5156229, 3.0899424, 1.2067492,
		0.2659732, 0.360768e-1, 0.45813e-2,
	}
	besselI0Asymp = [9]float64{
		0.39894228, 0.1328592e-1, 0.225319e-2,
		-0.157565e-2, 0.916281e-2, -0.2057706e-1,
		0.2635537e-1, -0.1647633e-1, 0.392377e-2,
	}
)

// BesselI0 computes the modified Bessel function of the first kind, order
// zero. It is the kernel of the Kaiser window used to build the prototype
// filter of the analysis bank.
//
// |x| ≤ 3.75 uses the polynomial series expansion, larger arguments the
// exponentially scaled asymptotic expansion; both give ~15 digits, which is
// beyond what the double-precision filter tables can represent.
func BesselI0(x float64) float64 {
	ax := math.Abs(x)

	if ax < besselSmallArg {
		t := x / besselSmallArg
		t *= t
		s := besselI0Series
		return 1.0 + t*(s[0]+t*(s[1]+t*(s[2]+t*(s[3]+t*(s[4]+t*s[5])))))
	}

	t := besselSmallArg / ax
	a := besselI0Asymp
	r := a[0] + t*(a[1]+t*(a[2]+t*(a[3]+t*(a[4]+t*(a[5]+t*(a[6]+t*(a[7]+t*a[8])))))))
	return math.Exp(ax) * r / math.Sqrt(ax)
}

// KaiserBeta computes the Kaiser window β parameter from the desired
// stopband attenuation in decibels, using Kaiser & Schafer's empirical
// formula:
//
//	att > 50 dB:        β = 0.1102 (att − 8.7)
//	21 dB ≤ att ≤ 50:   β = 0.5842 (att − 21)^0.4 + 0.07886 (att − 21)
//	att < 21 dB:        β = 0
func KaiserBeta(attenuation float64) float64 {
	switch {
	case attenuation > kaiserAttHigh:
		return kaiserBetaHighCoeff * (attenuation - kaiserBetaHighOffset)
	case attenuation >= kaiserAttMedium:
		delta := attenuation - kaiserAttMedium
		return kaiserBetaMediumCoeff1*math.Pow(delta, kaiserBetaMediumPower) +
			kaiserBetaMediumCoeff2*delta
	default:
		return 0
	}
}
