package main

import (
	. "fmt"
	"testing"

	"github.com/dustin/go-humanize"
	"github.com/p7r0x7/hashclash"
	"github.com/p7r0x7/hashclash/accel/host"
	"github.com/p7r0x7/hashclash/bignum"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

var sizes = [...]int{1 << 10, 64 << 10, 1 << 20}

// kernelSource is the smallest source the host backend builds for algorithm.
func kernelSource(algorithm string) []byte {
	return []byte("#pragma hashclash algorithm " + algorithm + "\n" +
		"__kernel void hash(__global const ulong *offset, __global const ulong *mask, __global long *out) {}\n")
}

type sample struct {
	rate   float64 /* candidates/s */
	cpc    float64 /* cycles per candidate */
	allocs float64 /* B/op */
}

// measure dispatches full batches of size candidates for algorithm on a fresh host device.
func measure(algorithm string, size int) (sample, error) {
	sess, err := hashclash.Open(host.New(host.Options{}), kernelSource(algorithm), size)
	if err != nil {
		return sample{}, err
	}
	defer sess.Close()
	eval := hashclash.NewDeviceEvaluator(sess)

	var cycles uint64
	var failed error
	r := testing.Benchmark(func(b *testing.B) {
		req := hashclash.ChunkRequest{Mask: 1<<hashclash.MaxWidth - 1, Size: size}
		cycles = 0
		b.SetBytes(int64(size * bignum.Size))
		b.ResetTimer()
		for i := b.N; i > 0; i-- {
			res, err := eval.Evaluate(req)
			if err != nil {
				failed = err
				b.FailNow()
			}
			cycles += res.Cycles
			req.Start = req.Start.Plus(uint64(size))
		}
	})
	if failed != nil {
		return sample{}, failed
	}

	n := float64(r.N) * float64(size)
	return sample{
		rate:   n / r.T.Seconds(),
		cpc:    float64(cycles) / n,
		allocs: float64(r.AllocedBytesPerOp()),
	}, nil
}

func benchAlg(algorithm string) error {
	Printf("%-9s %8s  %8s  %8s\n", algorithm, "1K", "64K", "1M")
	rates, speeds, usages := make([]float64, len(sizes)), make([]float64, len(sizes)), make([]float64, len(sizes))
	var peak float64
	for i, v := range sizes {
		s, err := measure(algorithm, v)
		if err != nil {
			return Errorf("%s at %d candidates: %w", algorithm, v, err)
		}
		rates[i], speeds[i], usages[i] = s.rate/1e6, s.cpc, s.allocs
		if s.rate > peak {
			peak = s.rate
		}
	}

	Println("Speed " + fmtFloats(rates...) + "   M/s")
	if speeds[0]+speeds[1]+speeds[2] > 0 {
		Println("      " + fmtFloats(speeds...) + "   cpc")
	}
	Println("Usage " + fmtFloats(usages...) + "   B/op")
	Println("Peak  " + humanize.SIWithDigits(peak, 3, "candidates/s") + "\n")
	return nil
}

func fmtFloats(f ...float64) string {
	var str, style string
	for _, v := range f {
		switch whole := float64(int64(v)) == v; {
		case v > 1e8 || (v < 1e-6 && !whole):
			style = "%8.3g"
		case v <= 1e1 && !whole:
			style = "%8.6f"
		case v <= 1e2 && !whole:
			style = "%8.5f"
		case v <= 1e3 && !whole:
			style = "%8.4f"
		case v <= 1e4 && !whole:
			style = "%8.3f"
		case v <= 1e5 && !whole:
			style = "%8.2f"
		case v <= 1e6 && !whole:
			style = "%8.1f"
		default:
			style = "%8.f"
		}
		str += "  " + Sprintf(style, v)
	}
	return str
}
