package soifft

import "fmt"

// Split partitions a global input vector into equal per-rank chunks laid out
// the way the cluster expects them. The slices alias global; callers that
// need independent storage should copy first.
func Split(cfg *Config, global []complex128) ([][]complex128, error) {
	if len(global) != cfg.GlobalLength {
		return nil, fmt.Errorf("%w: global input length %d, want %d",
			ErrInvalidConfig, len(global), cfg.GlobalLength)
	}
	chunk := cfg.InputLength()
	parts := make([][]complex128, cfg.Ranks)
	for r := range parts {
		parts[r] = global[r*chunk : (r+1)*chunk]
	}
	return parts, nil
}

// Join concatenates per-rank output chunks back into one global vector.
func Join(parts [][]complex128) []complex128 {
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	out := make([]complex128, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Run is the one-call entry point: it builds an in-process cluster for cfg,
// filters and subsamples the global vector, and returns the concatenated
// result. Metrics are discarded; use Cluster directly to observe them.
func Run(cfg *Config, global []complex128) ([]complex128, error) {
	cluster, err := NewCluster(cfg)
	if err != nil {
		return nil, err
	}
	inputs, err := Split(cfg, global)
	if err != nil {
		return nil, err
	}
	outputs, _, err := cluster.FilterSubsample(inputs)
	if err != nil {
		return nil, err
	}
	return Join(outputs), nil
}
