// Command soi-analyze runs the filter-and-subsample stage over a WAV file
// and reports the energy distribution of the oversampled blocks. It is a
// diagnostic for filter-bank behaviour on real signals rather than a
// processing tool.
//
// Usage:
//
//	soi-analyze input.wav
//	soi-analyze -segments 16 -taps 8 -top 20 input.wav
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/cmplx"
	"os"
	"sort"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	soifft "github.com/tphakala/go-soi-fft"
)

const (
	defaultSegments = 16
	defaultTaps     = 8
	defaultTopN     = 10

	minRequiredArgs = 1
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	segments := flag.Int("segments", defaultSegments, "Block length in segments")
	taps := flag.Int("taps", defaultTaps, "Filter window width in segments")
	ratio := flag.String("ratio", "5/4", "Oversampling ratio: 5/4 or 8/7")
	top := flag.Int("top", defaultTopN, "Number of highest-energy blocks to list")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		flag.Usage()
		return fmt.Errorf("missing input file")
	}

	samples, rate, err := readWAVMono(args[0], *verbose)
	if err != nil {
		return err
	}

	over := soifft.Ratio5x4
	if *ratio == "8/7" {
		over = soifft.Ratio8x7
	} else if *ratio != "5/4" {
		return fmt.Errorf("unknown ratio %q (use 5/4 or 8/7)", *ratio)
	}

	cfg, global := fitConfig(samples, *segments, *taps, over)
	if cfg == nil {
		return fmt.Errorf("input too short: %d samples cannot cover a %d-tap window", len(samples), *taps)
	}
	if *verbose {
		log.Printf("Analyzing %d of %d samples, block length %d", cfg.GlobalLength, len(samples), cfg.SegmentCount())
	}

	out, err := soifft.Run(cfg, global)
	if err != nil {
		return err
	}

	reportEnergy(out, cfg, rate, *top)
	return nil
}

// readWAVMono decodes a WAV file into normalized float samples, averaging
// channels down to mono.
func readWAVMono(path string, verbose bool) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid WAV file: %s", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	format := buf.Format
	if verbose {
		log.Printf("Input format: %d Hz, %d channels, %d-bit",
			format.SampleRate, format.NumChannels, decoder.BitDepth)
	}
	return monoSamples(buf, int(decoder.BitDepth)), format.SampleRate, nil
}

// monoSamples normalizes an integer PCM buffer to [-1, 1] floats, averaging
// channels down to mono.
func monoSamples(buf *audio.IntBuffer, bitDepth int) []float64 {
	scale := float64(int64(1) << (bitDepth - 1))
	channels := buf.Format.NumChannels
	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			sum += float64(buf.Data[i*channels+ch]) / scale
		}
		samples[i] = sum / float64(channels)
	}
	return samples
}

// fitConfig builds the largest single-rank configuration the sample count
// supports: the input is truncated to a whole number of window steps.
func fitConfig(samples []float64, segments, taps int, over soifft.Ratio) (*soifft.Config, []complex128) {
	s := segments // single rank: block length == segments per rank
	blocks := len(samples) / s / over.Den * over.Den
	if blocks < taps {
		return nil, nil
	}
	n := blocks * s

	global := make([]complex128, n)
	for i := 0; i < n; i++ {
		global[i] = complex(samples[i], 0)
	}
	return &soifft.Config{
		GlobalLength:    n,
		Ranks:           1,
		SegmentsPerRank: segments,
		Taps:            taps,
		Oversampling:    over,
	}, global
}

// reportEnergy prints RMS energy per output block and the dominant blocks.
func reportEnergy(out []complex128, cfg *soifft.Config, rate, top int) {
	s := cfg.SegmentCount()
	blocks := len(out) / s

	type blockEnergy struct {
		index int
		rms   float64
	}
	energies := make([]blockEnergy, blocks)

	// Output layout is position-major: sample s of block b at out[s*blocks+b].
	var total float64
	for b := 0; b < blocks; b++ {
		var sum float64
		for pos := 0; pos < s; pos++ {
			v := out[pos*blocks+b]
			sum += real(v)*real(v) + imag(v)*imag(v)
		}
		rms := math.Sqrt(sum / float64(s))
		energies[b] = blockEnergy{index: b, rms: rms}
		total += sum
	}

	fmt.Printf("Processed %d samples at %d Hz into %d oversampled blocks of %d\n",
		cfg.GlobalLength, rate, blocks, s)
	fmt.Printf("Total energy: %.6g\n", total)

	sort.Slice(energies, func(i, j int) bool { return energies[i].rms > energies[j].rms })
	if top > len(energies) {
		top = len(energies)
	}
	fmt.Printf("\nTop %d blocks by RMS:\n", top)
	for _, e := range energies[:top] {
		peak := peakMagnitude(out, blocks, s, e.index)
		fmt.Printf("  block %4d: rms=%.6g peak=%.6g\n", e.index, e.rms, peak)
	}
}

func peakMagnitude(out []complex128, blocks, s, b int) float64 {
	var peak float64
	for pos := 0; pos < s; pos++ {
		if m := cmplx.Abs(out[pos*blocks+b]); m > peak {
			peak = m
		}
	}
	return peak
}
