package main

import (
	"math/bits"
	"math/rand"

	"github.com/p7r0x7/hashclash/bignum"
	"github.com/p7r0x7/hashclash/kernels"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

const ints = 50000

// meanBias is the mean absolute deviation of each output bit's set count from half of all outputs,
// as a percentage of that half. An unbiased hash scores near 0.
func meanBias(outputs []uint64) float64 {
	var tally [64]int
	for _, v := range outputs {
		for ; v != 0; v &= v - 1 {
			tally[bits.TrailingZeros64(v)]++
		}
	}
	half := float64(len(outputs)) / 2
	var total float64
	for _, t := range tally {
		if d := float64(t) - half; d < 0 {
			total -= d
		} else {
			total += d
		}
	}
	return total / 64 / half * 100
}

// monobit hashes ints sequential candidates and ints random candidates with fn.
func monobit(fn kernels.Func, seed int64) (sequential, random float64) {
	rng := rand.New(rand.NewSource(seed))
	seq, rnd := make([]uint64, ints), make([]uint64, ints)
	for i := range seq {
		c := bignum.Words{uint64(i)}
		seq[i] = fn(&c)
		for j := range c {
			c[j] = rng.Uint64()
		}
		rnd[i] = fn(&c)
	}
	return meanBias(seq), meanBias(rnd)
}
