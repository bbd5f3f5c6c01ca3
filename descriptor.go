package soifft

import (
	"errors"
	"fmt"
	"time"

	"github.com/tphakala/go-soi-fft/internal/engine"
	"github.com/tphakala/go-soi-fft/internal/filter"
	"github.com/tphakala/go-soi-fft/internal/halo"
	"github.com/tphakala/go-soi-fft/internal/partition"
)

// Link is one rank's point-to-point connection to its ring neighbours.
// NewRing provides the in-process implementation; a different transport
// (sockets, RDMA, a message-passing fabric) can be plugged in by
// implementing these two calls.
type Link interface {
	// SendLeft delivers data to the left neighbour, (rank-1) mod P.
	// Implementations must copy data before returning.
	SendLeft(data []complex128) error

	// RecvRight blocks until len(dst) elements from the right neighbour,
	// (rank+1) mod P, have been stored into dst.
	RecvRight(dst []complex128) error
}

// NewRing builds the in-process channel transport for a p-rank ring.
// Element r of the result is rank r's Link.
func NewRing(p int) []Link {
	chans := halo.ChanRing(p)
	links := make([]Link, p)
	for r := range chans {
		links[r] = chans[r]
	}
	return links
}

// Metrics carries the diagnostic timing counters of one stage invocation.
// Counters are returned by value so the stage stays reentrant; they are
// observational only and never affect results.
type Metrics struct {
	// GhostPost is the time spent posting the halo exchange.
	GhostPost time.Duration

	// Convolve, Transform and Scatter aggregate worker busy time per
	// sub-stage.
	Convolve  time.Duration
	Transform time.Duration
	Scatter   time.Duration

	// ExchangeWait is the time blocked waiting for ghost data;
	// SendWait the time blocked until the send buffer was released.
	ExchangeWait time.Duration
	SendWait     time.Duration

	// WorkerBusy is the total busy time per worker, an observation of
	// load imbalance.
	WorkerBusy []time.Duration
}

// Descriptor is one rank's partition descriptor: the static geometry of
// the computation plus the persistent buffers and plans derived from it
// (filter bank, ghost buffer, filtered intermediate, transforms, worker
// assignment). Build one per rank with NewDescriptor and reuse it across
// invocations.
type Descriptor struct {
	cfg  Config
	geo  *partition.Geometry
	bank *filter.Bank
	st   *engine.Stage
}

// NewDescriptor validates the configuration and builds the descriptor for
// one rank of the ring.
func NewDescriptor(cfg *Config, rank int, link Link) (*Descriptor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rank < 0 || rank >= cfg.Ranks {
		return nil, fmt.Errorf("%w: rank %d of %d", ErrInvalidConfig, rank, cfg.Ranks)
	}
	if link == nil {
		return nil, fmt.Errorf("%w: link is nil", ErrInvalidConfig)
	}

	geo, err := cfg.geometry(rank)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}

	var bank *filter.Bank
	if cfg.Filter != nil {
		bank, err = filter.NewBankFromTable(geo.S, geo.B, geo.NMu, cfg.Filter)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, err)
		}
	} else {
		bank = filter.NewBank(geo.S, geo.B, geo.NMu, cfg.Attenuation)
	}

	st, err := engine.New(engine.Params{
		Geometry: geo,
		Bank:     bank,
		Workers:  cfg.effectiveWorkers(),
		Link:     link,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}

	return &Descriptor{cfg: *cfg, geo: geo, bank: bank, st: st}, nil
}

// Rank returns the rank this descriptor was built for.
func (d *Descriptor) Rank() int { return d.geo.Rank }

// InputLength returns the expected length of the per-rank input vector.
func (d *Descriptor) InputLength() int { return d.geo.InputLen() }

// OutputLength returns the length of the per-rank output array.
func (d *Descriptor) OutputLength() int { return d.geo.OutputLen() }

// FilterSubsample runs the filter-and-subsample stage for this rank:
// windowed convolution of alpha against the analysis bank, per-block
// forward transform, and strided scatter into alphaTilde. The halo
// exchange with the ring neighbours overlaps the interior computation.
//
// alpha is read-only during the call. Every element of alphaTilde is
// written exactly once. A communication failure aborts the invocation
// with an error wrapping ErrExchange; alphaTilde contents are then
// unspecified and the distributed computation as a whole is invalid.
func (d *Descriptor) FilterSubsample(alpha, alphaTilde []complex128) (Metrics, error) {
	em, err := d.st.Run(alpha, alphaTilde)
	m := Metrics{
		GhostPost:    em.GhostPost,
		Convolve:     em.Convolve,
		Transform:    em.Transform,
		Scatter:      em.Scatter,
		ExchangeWait: em.ExchangeWait,
		SendWait:     em.SendWait,
		WorkerBusy:   em.WorkerBusy,
	}
	if err != nil {
		if errors.Is(err, halo.ErrLink) {
			return m, fmt.Errorf("%w: %w", ErrExchange, err)
		}
		return m, err
	}
	return m, nil
}

// Info describes the descriptor's derived configuration.
type Info struct {
	// Algorithm names the kernel in use.
	Algorithm string

	// BlockLength is S, the local transform size.
	BlockLength int

	// Taps is the filter window width in segments.
	Taps int

	// Phases is the oversampling numerator n_mu.
	Phases int

	// InteriorRows is K_0, the block rows computable before ghost data
	// arrives; BoundaryRows need the halo.
	InteriorRows int
	BoundaryRows int

	// Workers and Groups describe the worker pool layout.
	Workers int
	Groups  int

	// MemoryUsage approximates the descriptor-owned buffer bytes.
	MemoryUsage int64
}

// Info returns the derived configuration of this rank.
func (d *Descriptor) Info() Info {
	g := d.geo
	const bytesPerComplex = 16
	buffered := g.OutputLen() + g.GhostLen() + g.B*g.NMu*g.S
	return Info{
		Algorithm:    "soi-filter-subsample",
		BlockLength:  g.S,
		Taps:         g.B,
		Phases:       g.NMu,
		InteriorRows: g.Interior(),
		BoundaryRows: g.Boundary(),
		Workers:      d.st.Workers(),
		Groups:       d.st.Groups(),
		MemoryUsage:  int64(buffered) * bytesPerComplex,
	}
}
