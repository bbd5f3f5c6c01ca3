// Command soi-bench measures filter-and-subsample throughput on an
// in-process rank ring with synthetic input.
//
// Usage:
//
//	soi-bench -n 1048576 -ranks 4 -segments 16
//	soi-bench -ratio 8/7 -taps 8 -iterations 20
//	soi-bench -workers 8 -v
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/cmplx"
	"time"

	soifft "github.com/tphakala/go-soi-fft"
)

const (
	// CLI defaults
	defaultGlobalLength = 1 << 20
	defaultRanks        = 4
	defaultSegments     = 16
	defaultTaps         = 8
	defaultIterations   = 10

	// Synthetic signal: a handful of incommensurate tones keeps every
	// output block populated.
	toneCount     = 5
	toneBaseCycle = 3

	bytesPerComplex   = 16
	bytesPerMegabyte  = 1024 * 1024
	nanosecondsPerSec = 1e9
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	n := flag.Int("n", defaultGlobalLength, "Global input length in samples")
	ranks := flag.Int("ranks", defaultRanks, "Number of ring ranks")
	segments := flag.Int("segments", defaultSegments, "Segments per rank (block length = segments * ranks)")
	taps := flag.Int("taps", defaultTaps, "Filter window width in segments")
	ratio := flag.String("ratio", "5/4", "Oversampling ratio: 5/4 or 8/7")
	workers := flag.Int("workers", 0, "Workers per rank (0 = derive from GOMAXPROCS)")
	iterations := flag.Int("iterations", defaultIterations, "Timed invocations")
	verbose := flag.Bool("v", false, "Per-rank metric breakdown")
	flag.Parse()

	over, err := parseRatio(*ratio)
	if err != nil {
		return err
	}

	cfg := &soifft.Config{
		GlobalLength:    *n,
		Ranks:           *ranks,
		SegmentsPerRank: *segments,
		Taps:            *taps,
		Oversampling:    over,
		Workers:         *workers,
	}
	cluster, err := soifft.NewCluster(cfg)
	if err != nil {
		return fmt.Errorf("cluster setup: %w", err)
	}

	info := cluster.Descriptor(0).Info()
	fmt.Printf("Configuration:\n")
	fmt.Printf("  Global length: %d samples\n", cfg.GlobalLength)
	fmt.Printf("  Ranks: %d, %d samples each\n", cfg.Ranks, cfg.InputLength())
	fmt.Printf("  Block length: %d, %d taps, ratio %s\n", info.BlockLength, info.Taps, over)
	fmt.Printf("  Rows per rank: %d interior + %d boundary\n", info.InteriorRows, info.BoundaryRows)
	fmt.Printf("  Workers: %d in %d position groups\n", info.Workers, info.Groups)
	fmt.Printf("  Buffers per rank: %.2f MB\n", float64(info.MemoryUsage)/bytesPerMegabyte)

	global := syntheticSignal(cfg.GlobalLength)
	inputs, err := soifft.Split(cfg, global)
	if err != nil {
		return err
	}

	// Warm-up settles the allocator and the FFT twiddle tables.
	if _, _, err := cluster.FilterSubsample(inputs); err != nil {
		return fmt.Errorf("warm-up: %w", err)
	}

	var (
		elapsed time.Duration
		last    []soifft.Metrics
	)
	for i := 0; i < *iterations; i++ {
		start := time.Now()
		_, metrics, err := cluster.FilterSubsample(inputs)
		if err != nil {
			return fmt.Errorf("iteration %d: %w", i, err)
		}
		elapsed += time.Since(start)
		last = metrics
	}

	perCall := elapsed / time.Duration(*iterations)
	throughput := float64(cfg.GlobalLength) * nanosecondsPerSec / float64(perCall.Nanoseconds())
	fmt.Printf("\nTiming over %d iterations:\n", *iterations)
	fmt.Printf("  Per invocation: %v\n", perCall)
	fmt.Printf("  Throughput: %.2f Msamples/s (%.2f MB/s in)\n",
		throughput/1e6, throughput*bytesPerComplex/bytesPerMegabyte)

	if *verbose {
		fmt.Printf("\nLast-iteration metrics:\n")
		for r, m := range last {
			fmt.Printf("  rank %d: post=%v conv=%v fft=%v scatter=%v recv-wait=%v send-wait=%v\n",
				r, m.GhostPost, m.Convolve, m.Transform, m.Scatter, m.ExchangeWait, m.SendWait)
		}
	}
	return nil
}

func parseRatio(s string) (soifft.Ratio, error) {
	switch s {
	case "5/4":
		return soifft.Ratio5x4, nil
	case "8/7":
		return soifft.Ratio8x7, nil
	default:
		return soifft.Ratio{}, fmt.Errorf("unknown ratio %q (use 5/4 or 8/7)", s)
	}
}

// syntheticSignal sums a few complex tones with deterministic phases.
func syntheticSignal(n int) []complex128 {
	out := make([]complex128, n)
	for k := 0; k < toneCount; k++ {
		cycles := float64(int(toneBaseCycle) << k)
		phase := float64(k) / toneCount
		for i := range out {
			arg := 2*math.Pi*cycles*float64(i)/float64(n) + phase
			out[i] += cmplx.Exp(complex(0, arg)) / toneCount
		}
	}
	return out
}
