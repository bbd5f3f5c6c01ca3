package soifft

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/tphakala/go-soi-fft/internal/engine"
	"github.com/tphakala/go-soi-fft/internal/partition"
)

// Common errors returned by the package.
var (
	// ErrInvalidConfig indicates invalid or misaligned configuration
	// parameters.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupportedRatio indicates an oversampling ratio without a
	// tabulated convolution variant. Supported: 5/4 and 8/7.
	ErrUnsupportedRatio = errors.New("unsupported oversampling ratio")

	// ErrInputTooSmall indicates a rank holds fewer segments than one
	// filter window spans (M/P < B).
	ErrInputTooSmall = errors.New("local input smaller than filter window")

	// ErrTooFewWorkers indicates the worker pool cannot cover the
	// position groups the geometry requires.
	ErrTooFewWorkers = errors.New("not enough workers")

	// ErrExchange indicates a halo-exchange failure. Results are
	// incomplete; the whole distributed computation must be abandoned.
	ErrExchange = errors.New("halo exchange failed")
)

// Ratio is a rational oversampling factor: Num output block rows are
// produced for every Den input block steps.
type Ratio struct {
	Num, Den int
}

// Tabulated oversampling ratios. Only these two have convolution
// specializations; any other ratio fails validation.
var (
	Ratio5x4 = Ratio{Num: 5, Den: 4}
	Ratio8x7 = Ratio{Num: 8, Den: 7}
)

// Factor returns the oversampling factor as a float.
func (r Ratio) Factor() float64 { return float64(r.Num) / float64(r.Den) }

func (r Ratio) String() string { return fmt.Sprintf("%d/%d", r.Num, r.Den) }

// Config holds the global geometry of the filter-and-subsample stage.
// The same Config is shared by every rank of the process group.
type Config struct {
	// GlobalLength is N, the length of the logically global input
	// vector. Must be a multiple of the segment count S.
	GlobalLength int

	// Ranks is P, the number of cooperating processes on the ring.
	Ranks int

	// SegmentsPerRank is k; the total segment count is S = k*Ranks,
	// which is also the block length handed to the local transform.
	SegmentsPerRank int

	// Taps is B, the number of consecutive segments one output block's
	// filter window spans.
	Taps int

	// Oversampling is the n_mu/d_mu ratio.
	Oversampling Ratio

	// Workers is the per-rank worker pool size. Zero selects a multiple
	// of the position-group count close to GOMAXPROCS.
	Workers int

	// Attenuation is the stopband attenuation in dB of the default
	// Kaiser prototype, used only when Filter is nil. Zero selects the
	// package default.
	Attenuation float64

	// Filter optionally supplies a precomputed coefficient table laid
	// out as [tap][phase][position], length Taps*Oversampling.Num*S.
	// When nil the descriptor designs its own bank.
	Filter []complex128
}

// SegmentCount returns S = SegmentsPerRank * Ranks.
func (c *Config) SegmentCount() int { return c.SegmentsPerRank * c.Ranks }

// InputLength returns the per-rank input length in samples.
func (c *Config) InputLength() int { return c.GlobalLength / c.Ranks }

// OutputLength returns the per-rank output length in samples.
func (c *Config) OutputLength() int {
	return c.InputLength() / c.Oversampling.Den * c.Oversampling.Num
}

// Validate checks the configuration. All ranks observe the same result, so
// callers that want single-point reporting (the MPI convention of rank 0)
// can validate once before fan-out; Cluster does exactly that.
func (c *Config) Validate() error {
	if c.GlobalLength <= 0 || c.Ranks < 1 || c.SegmentsPerRank < 1 || c.Taps < 1 {
		return fmt.Errorf("%w: N=%d P=%d k=%d B=%d", ErrInvalidConfig,
			c.GlobalLength, c.Ranks, c.SegmentsPerRank, c.Taps)
	}

	if _, err := engine.VariantFor(c.Oversampling.Num, c.Oversampling.Den); err != nil {
		return fmt.Errorf("%w: %s (supported: 5/4, 8/7)", ErrUnsupportedRatio, c.Oversampling)
	}

	geo, err := c.geometry(0)
	if err != nil {
		if errors.Is(err, partition.ErrInputTooSmall) {
			return fmt.Errorf("%w: %d segments per rank, window spans %d",
				ErrInputTooSmall, c.InputLength()/c.SegmentCount(), c.Taps)
		}
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}

	variant, _ := engine.VariantFor(c.Oversampling.Num, c.Oversampling.Den)
	if _, err := partition.NewPlan(geo.S, c.effectiveWorkers(), variant.Unroll, geo.Interior()); err != nil {
		if errors.Is(err, partition.ErrTooFewWorkers) {
			return fmt.Errorf("%w: %s", ErrTooFewWorkers, err)
		}
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}

	if c.Filter != nil {
		want := c.Taps * c.Oversampling.Num * c.SegmentCount()
		if len(c.Filter) != want {
			return fmt.Errorf("%w: filter table has %d coefficients, want %d",
				ErrInvalidConfig, len(c.Filter), want)
		}
	}
	return nil
}

// geometry derives the per-rank geometry.
func (c *Config) geometry(rank int) (*partition.Geometry, error) {
	return partition.NewGeometry(c.GlobalLength, c.Ranks, rank, c.SegmentsPerRank,
		c.Taps, c.Oversampling.Num, c.Oversampling.Den)
}

// effectiveWorkers resolves the worker pool size: the configured count, or
// the largest multiple of the group count not exceeding GOMAXPROCS (at
// least one worker per group).
func (c *Config) effectiveWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	groups := c.SegmentCount() / partition.ChunkPositions
	if groups > partition.MaxGroups {
		groups = partition.MaxGroups
	}
	if groups < 1 {
		groups = 1
	}
	procs := runtime.GOMAXPROCS(0)
	if procs < groups {
		return groups
	}
	return procs / groups * groups
}
