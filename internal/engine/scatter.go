package engine

// scatterer redistributes the n_mu transformed blocks of one block-row
// group from block-major storage into the strided output layout: sample s
// of block (j, θ) lands at dst[s*l + j*nMu + θ]. Every output element is
// written exactly once; there is no accumulation.
type scatterer interface {
	scatter(dst, gamma []complex128, s, l, nMu, j int)
}

// scalarScatter is the reference implementation, valid for every geometry.
type scalarScatter struct{}

func (scalarScatter) scatter(dst, gamma []complex128, s, l, nMu, j int) {
	for theta := 0; theta < nMu; theta++ {
		row := gamma[(j*nMu+theta)*s : (j*nMu+theta+1)*s]
		at := j*nMu + theta
		for pos, v := range row {
			dst[pos*l+at] = v
		}
	}
}

// blockScatter8 is the 8-phase specialization: for each sample position the
// eight phases land contiguously, so the write side runs at unit stride and
// the eight row cursors advance together. Results are bit-identical to
// scalarScatter; tests enforce that.
type blockScatter8 struct{}

func (blockScatter8) scatter(dst, gamma []complex128, s, l, nMu, j int) {
	base := j * 8
	r0 := gamma[(base+0)*s : (base+1)*s]
	r1 := gamma[(base+1)*s : (base+2)*s]
	r2 := gamma[(base+2)*s : (base+3)*s]
	r3 := gamma[(base+3)*s : (base+4)*s]
	r4 := gamma[(base+4)*s : (base+5)*s]
	r5 := gamma[(base+5)*s : (base+6)*s]
	r6 := gamma[(base+6)*s : (base+7)*s]
	r7 := gamma[(base+7)*s : (base+8)*s]
	for pos := 0; pos < s; pos++ {
		out := dst[pos*l+base : pos*l+base+8 : pos*l+base+8]
		out[0] = r0[pos]
		out[1] = r1[pos]
		out[2] = r2[pos]
		out[3] = r3[pos]
		out[4] = r4[pos]
		out[5] = r5[pos]
		out[6] = r6[pos]
		out[7] = r7[pos]
	}
}

// scattererFor picks the specialization for the phase count.
func scattererFor(nMu int) scatterer {
	if nMu == 8 {
		return blockScatter8{}
	}
	return scalarScatter{}
}
