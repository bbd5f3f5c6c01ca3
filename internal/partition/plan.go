package partition

import (
	"errors"
	"fmt"
)

// Work-partitioning constants. Positions are walked in cache-line sized
// chunks; groups of workers share one position range so that filter rows
// stay resident while the block index advances.
const (
	// ChunkPositions is the number of complex128 positions per inner step,
	// one 64-byte cache line.
	ChunkPositions = 4

	// MaxGroups bounds the number of position groups.
	MaxGroups = 8
)

// ErrTooFewWorkers indicates the worker count cannot cover the required
// position groups. This is a static deployment precondition.
var ErrTooFewWorkers = errors.New("not enough workers for position groups")

// Span is a half-open index range [Begin, End).
type Span struct {
	Begin, End int
}

// Len returns the number of indices in the span.
func (s Span) Len() int { return s.End - s.Begin }

// Plan assigns the position dimension and the block-row dimension to a
// fixed pool of workers.
//
// Workers are split into Groups position groups. Within a group, workers
// divide the interior block-row range [0, Rounded) where Rounded is the
// largest multiple of Unroll not exceeding K_0; the remaining rows
// [Rounded, K_0) are re-partitioned evenly across all workers without the
// unroll constraint.
type Plan struct {
	Workers int
	Groups  int
	Unroll  int
	Rounded int // interior rows processed by the unrolled kernel

	PosSpans   []Span // per group: position range, multiple of ChunkPositions
	BlockSpans []Span // per worker: rows within the group's position range
	RemSpans   []Span // per worker: rows of the unrolled-remainder pass
}

// NewPlan builds the worker plan for S positions, the given worker count,
// the kernel's block unroll factor, and K_0 interior rows.
func NewPlan(s, workers, unroll, interior int) (*Plan, error) {
	if workers < 1 {
		return nil, fmt.Errorf("%w: %d workers", ErrTooFewWorkers, workers)
	}
	if unroll < 1 {
		unroll = 1
	}
	groups := s / ChunkPositions
	if groups > MaxGroups {
		groups = MaxGroups
	}
	if groups < 1 {
		groups = 1
	}
	if workers < groups {
		return nil, fmt.Errorf("%w: have %d, need at least %d", ErrTooFewWorkers, workers, groups)
	}
	if workers%groups != 0 {
		return nil, fmt.Errorf("%w: %d workers not a multiple of %d groups", ErrTooFewWorkers, workers, groups)
	}
	if s%groups != 0 {
		return nil, fmt.Errorf("%w: %d positions not divisible into %d groups", ErrMisaligned, s, groups)
	}

	p := &Plan{
		Workers: workers,
		Groups:  groups,
		Unroll:  unroll,
		Rounded: interior / unroll * unroll,
	}

	perGroup := s / groups
	p.PosSpans = make([]Span, groups)
	for g := range p.PosSpans {
		p.PosSpans[g] = Span{Begin: g * perGroup, End: (g + 1) * perGroup}
	}

	// Rows per worker within a group, rounded up to the unroll granularity
	// so every span the unrolled kernel sees is a whole number of steps.
	threadsPer := workers / groups
	perWorker := (p.Rounded + threadsPer - 1) / threadsPer
	perWorker = (perWorker + unroll - 1) / unroll * unroll

	p.BlockSpans = make([]Span, workers)
	for w := range p.BlockSpans {
		local := w % threadsPer
		begin := min(local*perWorker, p.Rounded)
		p.BlockSpans[w] = Span{Begin: begin, End: min(begin+perWorker, p.Rounded)}
	}

	p.RemSpans = SplitEven(p.Rounded, interior, workers)
	return p, nil
}

// Group returns the position group a worker belongs to.
func (p *Plan) Group(worker int) int { return worker / (p.Workers / p.Groups) }

// SplitEven divides [begin, end) into n near-equal contiguous spans.
// Leading spans are one longer when the range does not divide evenly.
func SplitEven(begin, end, n int) []Span {
	spans := make([]Span, n)
	total := end - begin
	if total < 0 {
		total = 0
	}
	base, extra := total/n, total%n
	at := begin
	for i := range spans {
		size := base
		if i < extra {
			size++
		}
		spans[i] = Span{Begin: at, End: at + size}
		at += size
	}
	return spans
}
