package soifft

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Cluster runs all P ranks of the stage inside one process, connected by
// the channel ring. It is the in-process stand-in for a real process
// group: tests, benchmarks and single-machine deployments use it directly,
// while multi-machine deployments build one Descriptor per process with
// their own Link transport.
type Cluster struct {
	cfg   Config
	descs []*Descriptor
}

// NewCluster validates the configuration once (single-point reporting, the
// ring analogue of rank-0 error output) and builds one descriptor per rank.
func NewCluster(cfg *Config) (*Cluster, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	links := NewRing(cfg.Ranks)
	c := &Cluster{cfg: *cfg, descs: make([]*Descriptor, cfg.Ranks)}
	for r := range c.descs {
		d, err := NewDescriptor(cfg, r, links[r])
		if err != nil {
			return nil, fmt.Errorf("rank %d: %w", r, err)
		}
		c.descs[r] = d
	}
	return c, nil
}

// Ranks returns the number of ranks in the cluster.
func (c *Cluster) Ranks() int { return len(c.descs) }

// Descriptor returns the descriptor of one rank.
func (c *Cluster) Descriptor(rank int) *Descriptor { return c.descs[rank] }

// FilterSubsample runs the stage on every rank concurrently. inputs[r] is
// rank r's chunk of the global vector; the result holds each rank's output
// array and metrics. The first failing rank's error aborts the whole
// invocation: there is no partial-result mode.
func (c *Cluster) FilterSubsample(inputs [][]complex128) ([][]complex128, []Metrics, error) {
	if len(inputs) != len(c.descs) {
		return nil, nil, fmt.Errorf("%w: %d input chunks for %d ranks",
			ErrInvalidConfig, len(inputs), len(c.descs))
	}

	outputs := make([][]complex128, len(c.descs))
	metrics := make([]Metrics, len(c.descs))

	var g errgroup.Group
	for r, d := range c.descs {
		g.Go(func() error {
			outputs[r] = make([]complex128, d.OutputLength())
			m, err := d.FilterSubsample(inputs[r], outputs[r])
			metrics[r] = m
			if err != nil {
				return fmt.Errorf("rank %d: %w", r, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return outputs, metrics, nil
}
