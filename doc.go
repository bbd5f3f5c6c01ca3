// Package soifft implements the distributed filter-and-subsample front end
// of a segment-of-interest FFT: a windowed polyphase convolution that
// oversamples a long complex vector by a small rational factor n/d, followed
// by an independent forward transform of each oversampled block and a
// strided scatter into the output layout the downstream transform stages
// expect.
//
// # Features
//
//   - Rank-partitioned processing: the global vector is split across P ranks,
//     each holding M/P contiguous blocks, with a one-sided ghost exchange
//     supplying the tap overlap from the right neighbor
//   - Sliding tap window over segment views, so each input segment is read
//     once per pass regardless of the tap count B
//   - Kaiser-window filter bank design with configurable stopband attenuation,
//     or caller-supplied coefficient tables
//   - Oversampling ratios 5/4 and 8/7 with ratio-specific inner loops
//   - Worker pool with group-partitioned positions and evenly split rows,
//     sized from GOMAXPROCS when not configured
//   - Optional SIMD acceleration via github.com/tphakala/simd
//   - Per-invocation metrics: exchange wait times and per-phase busy sums
//
// # Quick Start
//
// For single-process use, [Run] splits a global vector across an in-process
// cluster and concatenates the results:
//
//	cfg := &soifft.Config{
//	    GlobalLength:    1 << 20,
//	    Ranks:           4,
//	    SegmentsPerRank: 16,
//	    Taps:            8,
//	    Oversampling:    soifft.Ratio5x4,
//	}
//	output, err := soifft.Run(cfg, input)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// To observe per-rank metrics or reuse the descriptors across invocations,
// build a [Cluster]:
//
//	cluster, err := soifft.NewCluster(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	outputs, metrics, err := cluster.FilterSubsample(inputs)
//
// # Distributed Use
//
// Each process constructs one [Descriptor] with its rank and a [Link]
// implementation carrying the ghost exchange over the real transport. The
// in-process ring returned by [NewRing] implements the same interface over
// channels and is what [Cluster] uses.
//
// # Architecture
//
// One invocation of [Descriptor.FilterSubsample] runs three fused phases
// per rank:
//
//	Input -> [Windowed Convolution] -> [Block FFT] -> [Strided Scatter] -> Output
//	             (B taps, n/d)          (length S)       (stride M*n/d/P)
//
// Interior rows depend only on local input and overlap with the ghost
// exchange; boundary rows wait for the neighbor's leading segments before
// finishing. The forward transform is an opaque per-block collaborator;
// the default uses gonum's complex FFT, one instance per worker.
//
// # Thread Safety
//
// A [Descriptor] owns scratch state and must not be invoked concurrently
// with itself. Distinct descriptors, including all ranks of a [Cluster],
// run concurrently by design.
package soifft
