// Package hashclash searches for a collision in a truncated hash by evaluating successive batches
// of candidates on a parallel accelerator. A 1024-bit counter enumerates candidates; each batch is
// dispatched to an Evaluator, scanned for the first positive output, and the counter advances by
// the batch size until a hit is found or the evaluator fails.
package hashclash

import (
	"fmt"
	"time"

	"github.com/p7r0x7/hashclash/bignum"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

const (
	// DefaultBatchSize is the number of candidates per dispatch.
	DefaultBatchSize = 1000000

	// DefaultWidth is the default bit width d; the mask is (1 << d) - 1.
	DefaultWidth = 10

	// MaxWidth is the widest mask that keeps every masked output non-negative.
	MaxWidth = 63
)

// Mask returns (1 << d) - 1.
func Mask(d uint) (uint64, error) {
	if d > MaxWidth {
		return 0, fmt.Errorf("hashclash: width %d exceeds %d bits", d, MaxWidth)
	}
	return 1<<d - 1, nil
}

// ChunkRequest asks for one batch: candidates Start+0 … Start+Size-1, each hashed and masked.
type ChunkRequest struct {
	Start bignum.Words
	Mask  uint64
	Size  int
}

// ChunkResult holds one output per candidate, in index order. An output is zero for no match or
// the masked hash otherwise.
type ChunkResult struct {
	Outputs []int64

	/* Diagnostics only; never used for control decisions. */
	DeviceTime time.Duration
	WorkGroup  int
	Cycles     uint64
}

// Evaluator runs the hash over a whole batch. Evaluate blocks until every candidate has been
// evaluated exactly once; it never returns a partial result.
type Evaluator interface {
	Evaluate(req ChunkRequest) (ChunkResult, error)
}
