package buckets

import (
	"errors"
	"fmt"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.
// A table of append-only integer sequences, one per bucket. The search does not populate it yet; it
// is allocated alongside the accelerator session and released with it so that duplicate tracking
// can be added without changing the process lifecycle.

// DefaultCount is the number of buckets allocated by the command-line tool.
const DefaultCount = 15000

var (
	// ErrClosed is returned by operations on a released Index.
	ErrClosed = errors.New("buckets: index closed")

	// ErrBucketRange is returned when a bucket id is outside [0, Len()).
	ErrBucketRange = errors.New("buckets: bucket out of range")
)

// Seq is a growable sequence of signed integers. Its capacity starts at 1 and doubles whenever an
// append finds it full.
type Seq struct {
	data []int64
	n    int
}

func newSeq() *Seq { return &Seq{data: make([]int64, 1)} }

// Append adds v to the end of s.
func (s *Seq) Append(v int64) {
	if s.n >= len(s.data) {
		grown := make([]int64, len(s.data)*2)
		copy(grown, s.data[:s.n])
		s.data = grown
	}
	s.data[s.n] = v
	s.n++
}

// Len is the number of values appended so far.
func (s *Seq) Len() int { return s.n }

// Cap is the current capacity.
func (s *Seq) Cap() int { return len(s.data) }

// At returns the i-th value; it panics if i is out of range, like a slice index.
func (s *Seq) At(i int) int64 {
	if i < 0 || i >= s.n {
		panic(fmt.Sprintf("buckets: index %d out of range [0:%d]", i, s.n))
	}
	return s.data[i]
}

// Values returns a copy of the appended values.
func (s *Seq) Values() []int64 {
	out := make([]int64, s.n)
	copy(out, s.data[:s.n])
	return out
}

// Index is a fixed number of Seqs addressed by bucket id.
type Index struct {
	seqs []*Seq
}

// New allocates count empty buckets.
func New(count int) (*Index, error) {
	if count <= 0 {
		return nil, fmt.Errorf("buckets: count must be positive, got %d", count)
	}
	x := &Index{seqs: make([]*Seq, count)}
	for i := range x.seqs {
		x.seqs[i] = newSeq()
	}
	return x, nil
}

// Len is the number of buckets, 0 once closed.
func (x *Index) Len() int { return len(x.seqs) }

// Append adds v to the given bucket.
func (x *Index) Append(bucket int, v int64) error {
	s, err := x.Bucket(bucket)
	if err != nil {
		return err
	}
	s.Append(v)
	return nil
}

// Bucket returns the sequence for the given bucket id.
func (x *Index) Bucket(bucket int) (*Seq, error) {
	if x.seqs == nil {
		return nil, ErrClosed
	}
	if bucket < 0 || bucket >= len(x.seqs) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrBucketRange, bucket, len(x.seqs))
	}
	return x.seqs[bucket], nil
}

// Close releases every bucket. Closing twice is a no-op.
func (x *Index) Close() error {
	for i := range x.seqs {
		x.seqs[i] = nil
	}
	x.seqs = nil
	return nil
}
