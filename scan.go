package hashclash

import "github.com/p7r0x7/hashclash/bignum"

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// Collision is the first positive output of a batch.
type Collision struct {
	Index  int          // position within the batch
	Offset bignum.Words // start + Index
	Hash   int64        // the positive output value
}

// Scan returns the lowest-indexed positive output of a batch that began at start. Zero and
// negative outputs are not hits.
func Scan(start bignum.Words, outputs []int64) (Collision, bool) {
	for i, v := range outputs {
		if v > 0 {
			return Collision{Index: i, Offset: start.Plus(uint64(i)), Hash: v}, true
		}
	}
	return Collision{}, false
}
