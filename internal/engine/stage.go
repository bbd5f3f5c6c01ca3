package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/tphakala/go-soi-fft/internal/filter"
	"github.com/tphakala/go-soi-fft/internal/halo"
	"github.com/tphakala/go-soi-fft/internal/partition"
	"github.com/tphakala/go-soi-fft/internal/vec"
)

// Metrics carries the diagnostic counters of one stage invocation. The
// counters are observational only and never influence results.
//
// Convolve, Transform and Scatter aggregate busy time across workers;
// GhostPost, ExchangeWait and SendWait are wall time on the invoking
// goroutine.
type Metrics struct {
	GhostPost    time.Duration // posting the halo exchange
	Convolve     time.Duration
	Transform    time.Duration
	Scatter      time.Duration
	ExchangeWait time.Duration // blocked until ghost data arrived
	SendWait     time.Duration // blocked until the send buffer was released
	WorkerBusy   []time.Duration
}

// Params configures a Stage.
type Params struct {
	Geometry *partition.Geometry
	Bank     *filter.Bank
	Workers  int
	Link     halo.Link

	// NewTransform builds one forward transform per worker. Nil selects
	// the FFT of length S.
	NewTransform func(n int) BlockTransform
}

// Stage is one rank's filter-and-subsample kernel. It owns the filtered
// intermediate buffer, the per-worker transforms and tap rings, and the
// halo exchange state. A Stage is reusable across invocations but a single
// invocation must not run concurrently with another on the same Stage.
type Stage struct {
	geo     *partition.Geometry
	bank    *filter.Bank
	variant Variant
	plan    *partition.Plan
	ops     *vec.Ops
	scat    scatterer
	exch    *halo.Exchange

	gamma []complex128 // filtered intermediate, block-major
	ffts  []BlockTransform
	rings []*tapRing

	busy  []time.Duration
	tconv []time.Duration
	tfft  []time.Duration
	tscat []time.Duration
}

// New builds the stage for one rank.
func New(p Params) (*Stage, error) {
	g := p.Geometry
	v, err := VariantFor(g.NMu, g.DMu)
	if err != nil {
		return nil, err
	}
	if p.Bank.S != g.S || p.Bank.B != g.B || p.Bank.NMu != g.NMu {
		return nil, fmt.Errorf("filter bank %dx%dx%d does not match geometry S=%d B=%d n_mu=%d",
			p.Bank.B, p.Bank.NMu, p.Bank.S, g.S, g.B, g.NMu)
	}
	plan, err := partition.NewPlan(g.S, p.Workers, v.Unroll, g.Interior())
	if err != nil {
		return nil, err
	}
	newTransform := p.NewTransform
	if newTransform == nil {
		newTransform = NewFFTTransform
	}

	s := &Stage{
		geo:     g,
		bank:    p.Bank,
		variant: v,
		plan:    plan,
		ops:     vec.Default(),
		scat:    scattererFor(g.NMu),
		exch:    halo.New(g, p.Link),
		gamma:   make([]complex128, g.OutputLen()),
		ffts:    make([]BlockTransform, plan.Workers),
		rings:   make([]*tapRing, plan.Workers),
		busy:    make([]time.Duration, plan.Workers),
		tconv:   make([]time.Duration, plan.Workers),
		tfft:    make([]time.Duration, plan.Workers),
		tscat:   make([]time.Duration, plan.Workers),
	}
	for w := range s.ffts {
		s.ffts[w] = newTransform(g.S)
		s.rings[w] = newTapRing(g.B + v.Unroll*g.DMu)
	}
	return s, nil
}

// Run executes the stage: start the halo exchange, convolve and transform
// the interior block rows while boundary data is in flight, then finish the
// boundary rows once the ghost buffer is populated.
func (s *Stage) Run(alpha, out []complex128) (Metrics, error) {
	g := s.geo
	var m Metrics
	if len(alpha) != g.InputLen() {
		return m, fmt.Errorf("input has %d samples, want %d", len(alpha), g.InputLen())
	}
	if len(out) != g.OutputLen() {
		return m, fmt.Errorf("output has %d samples, want %d", len(out), g.OutputLen())
	}
	for w := range s.busy {
		s.busy[w], s.tconv[w], s.tfft[w], s.tscat[w] = 0, 0, 0, 0
	}

	t := time.Now()
	s.exch.Start(alpha)
	m.GhostPost = time.Since(t)

	// Interior rows in the unroll-rounded range: convolution first, then a
	// barrier, then transform+scatter. The barrier keeps each worker's
	// filter rows hot while the block index sweeps.
	s.parallel(func(w int) { s.convolveInterior(w, alpha) })

	spans := partition.SplitEven(0, s.plan.Rounded, s.plan.Workers)
	s.parallel(func(w int) { s.transformScatter(w, out, spans[w]) })

	// Rows the unrolled kernel could not cover, repartitioned evenly.
	s.parallel(func(w int) { s.finishRows(w, alpha, out, s.plan.RemSpans[w], 0) })

	t = time.Now()
	if err := s.exch.WaitRecv(); err != nil {
		return m, err
	}
	m.ExchangeWait = time.Since(t)

	// Boundary rows read the ghost buffer, never alpha.
	bspans := partition.SplitEven(0, g.Boundary(), s.plan.Workers)
	s.parallel(func(w int) { s.finishRows(w, s.exch.Ghost(), out, bspans[w], g.Interior()) })

	t = time.Now()
	if err := s.exch.WaitSend(); err != nil {
		return m, err
	}
	m.SendWait = time.Since(t)

	for w := range s.busy {
		m.Convolve += s.tconv[w]
		m.Transform += s.tfft[w]
		m.Scatter += s.tscat[w]
	}
	m.WorkerBusy = append([]time.Duration(nil), s.busy...)
	return m, nil
}

// Workers returns the worker pool size.
func (s *Stage) Workers() int { return s.plan.Workers }

// Groups returns the number of position groups the pool is split into.
func (s *Stage) Groups() int { return s.plan.Groups }

// parallel runs fn on every worker and waits for all of them.
func (s *Stage) parallel(fn func(w int)) {
	var wg sync.WaitGroup
	wg.Add(s.plan.Workers)
	for w := 0; w < s.plan.Workers; w++ {
		go func(w int) {
			defer wg.Done()
			t := time.Now()
			fn(w)
			s.busy[w] += time.Since(t)
		}(w)
	}
	wg.Wait()
}

// convolveInterior computes the worker's share of interior rows with the
// sliding tap window, one position chunk at a time.
func (s *Stage) convolveInterior(w int, alpha []complex128) {
	t0 := time.Now()
	defer func() { s.tconv[w] += time.Since(t0) }()

	g, v := s.geo, s.variant
	pos := s.plan.PosSpans[s.plan.Group(w)]
	rows := s.plan.BlockSpans[w]
	if rows.Len() == 0 {
		return
	}
	ring := s.rings[w]
	step := v.Unroll * g.DMu

	for i := pos.Begin; i < pos.End; i += partition.ChunkPositions {
		width := min(partition.ChunkPositions, pos.End-i)
		ring.reset()
		base := rows.Begin * g.DMu
		for t := 0; t < g.B-g.DMu; t++ {
			at := (base + t) * g.S
			ring.push(alpha[at+i : at+i+width])
		}
		for j0 := rows.Begin; j0 < rows.End; j0 += v.Unroll {
			for k := 0; k < step; k++ {
				at := (j0*g.DMu + g.B - g.DMu + k) * g.S
				ring.push(alpha[at+i : at+i+width])
			}
			for u := 0; u < v.Unroll; u++ {
				s.accumulateRow(ring, u*g.DMu, j0+u, i, width)
			}
			ring.advance(step)
		}
	}
}

// accumulateRow computes one (row, all phases) strip of the filtered
// intermediate over [i, i+width). Taps accumulate in ascending order; the
// order is part of the reproducibility contract.
func (s *Stage) accumulateRow(ring *tapRing, off, group, i, width int) {
	g := s.geo
	for theta := 0; theta < g.NMu; theta++ {
		at := (group*g.NMu + theta) * g.S
		dst := s.gamma[at+i : at+i+width]
		s.ops.MulTo(dst, s.bank.Row(0, theta)[i:i+width], ring.at(off))
		for tap := 1; tap < g.B; tap++ {
			s.ops.MulAddTo(dst, s.bank.Row(tap, theta)[i:i+width], ring.at(off+tap))
		}
	}
}

// transformScatter runs the forward transform and the strided scatter for
// already-convolved row groups.
func (s *Stage) transformScatter(w int, out []complex128, span partition.Span) {
	g := s.geo
	l := g.OutputStride()
	for j := span.Begin; j < span.End; j++ {
		t0 := time.Now()
		for theta := 0; theta < g.NMu; theta++ {
			at := (j*g.NMu + theta) * g.S
			s.ffts[w].Forward(s.gamma[at : at+g.S])
		}
		t1 := time.Now()
		s.scat.scatter(out, s.gamma, g.S, l, g.NMu, j)
		s.tfft[w] += t1.Sub(t0)
		s.tscat[w] += time.Since(t1)
	}
}

// finishRows convolves, transforms and scatters whole rows with the plain
// full-width kernel. src is alpha for the unrolled-remainder rows and the
// ghost buffer for boundary rows; rowBase shifts row j to its group index
// in the intermediate and output layouts.
func (s *Stage) finishRows(w int, src, out []complex128, span partition.Span, rowBase int) {
	g := s.geo
	l := g.OutputStride()
	for j := span.Begin; j < span.End; j++ {
		group := rowBase + j
		t0 := time.Now()
		for theta := 0; theta < g.NMu; theta++ {
			at := (group*g.NMu + theta) * g.S
			dst := s.gamma[at : at+g.S]
			blk := j * g.DMu * g.S
			s.ops.MulTo(dst, s.bank.Row(0, theta), src[blk:blk+g.S])
			for tap := 1; tap < g.B; tap++ {
				blk = (j*g.DMu + tap) * g.S
				s.ops.MulAddTo(dst, s.bank.Row(tap, theta), src[blk:blk+g.S])
			}
		}
		t1 := time.Now()
		for theta := 0; theta < g.NMu; theta++ {
			at := (group*g.NMu + theta) * g.S
			s.ffts[w].Forward(s.gamma[at : at+g.S])
		}
		t2 := time.Now()
		s.scat.scatter(out, s.gamma, g.S, l, g.NMu, group)
		s.tconv[w] += t1.Sub(t0)
		s.tfft[w] += t2.Sub(t1)
		s.tscat[w] += time.Since(t2)
	}
}
