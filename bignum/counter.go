package bignum

import (
	"encoding/binary"
	"math/big"
	"strconv"
	"strings"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.
// A fixed-width, multi-word unsigned counter used to enumerate candidate inputs. Words are stored
// least-significant first so that a snapshot can be copied byte-for-byte into a device buffer.

const (
	// WordCount is the number of 64-bit words in a counter.
	WordCount = 16
	// Bits is the counter's width.
	Bits = WordCount * 64
	// Size is the encoded size of Words in bytes.
	Size = WordCount * 8
)

// Words is an immutable snapshot of a counter value, least-significant word first.
type Words [WordCount]uint64

// Counter is a 1024-bit unsigned integer that only ever increases. The zero value is ready to use
// and represents 0. A Counter is not safe for concurrent use.
type Counter struct {
	w        Words
	overflow bool
}

// New returns a counter starting at w.
func New(w Words) *Counter { return &Counter{w: w} }

// Increment adds by to c, rippling a carry upward only while words keep overflowing. A carry out of
// the most-significant word is dropped: c wraps, and Overflowed reports true from then on.
func (c *Counter) Increment(by uint64) {
	before := c.w[0]
	c.w[0] += by
	if c.w[0] >= before {
		return
	}
	for i := 1; i < WordCount; i++ {
		c.w[i]++
		if c.w[i] != 0 {
			return
		}
	}
	c.overflow = true
}

// Overflowed reports whether any increment has carried past the most-significant word.
func (c *Counter) Overflowed() bool { return c.overflow }

// Snapshot returns a copy of the current words.
func (c *Counter) Snapshot() Words { return c.w }

// String renders the current value, see Words.String.
func (c *Counter) String() string { return c.w.String() }

// Plus returns w + n without modifying w; the result wraps modulo 2^Bits.
func (w Words) Plus(n uint64) Words {
	before := w[0]
	w[0] += n
	if w[0] < before {
		for i := 1; i < WordCount; i++ {
			w[i]++
			if w[i] != 0 {
				break
			}
		}
	}
	return w
}

// IsZero reports whether every word is zero.
func (w Words) IsZero() bool { return w == Words{} }

// String is a fixed-width positional rendering of all WordCount words, most-significant first,
// each as 16 hex digits separated by ':'. It is meant for diagnostics only.
func (w Words) String() string {
	var sb strings.Builder
	sb.Grow(WordCount*17 - 1)
	for i := WordCount - 1; i >= 0; i-- {
		s := strconv.FormatUint(w[i], 16)
		sb.WriteString(strings.Repeat("0", 16-len(s)))
		sb.WriteString(s)
		if i > 0 {
			sb.WriteByte(':')
		}
	}
	return sb.String()
}

// Big converts w to a big.Int.
func (w Words) Big() *big.Int {
	buf := make([]byte, Size)
	for i := range w {
		/* big.Int wants big-endian bytes, so the word order flips too. */
		binary.BigEndian.PutUint64(buf[(WordCount-1-i)*8:], w[i])
	}
	return new(big.Int).SetBytes(buf)
}

// FromBig converts x to Words; x must be non-negative and is reduced modulo 2^Bits.
func FromBig(x *big.Int) Words {
	var w Words
	buf := make([]byte, Size)
	y := new(big.Int).Set(x)
	if y.BitLen() > Bits {
		y.Mod(y, new(big.Int).Lsh(big.NewInt(1), Bits))
	}
	y.FillBytes(buf)
	for i := range w {
		w[i] = binary.BigEndian.Uint64(buf[(WordCount-1-i)*8:])
	}
	return w
}

// PutBytes encodes w into dst as little-endian words; dst must hold at least Size bytes.
func (w Words) PutBytes(dst []byte) {
	_ = dst[Size-1]
	for i, v := range w {
		binary.LittleEndian.PutUint64(dst[i*8:], v)
	}
}

// FromBytes decodes Size little-endian bytes into Words.
func FromBytes(src []byte) Words {
	var w Words
	_ = src[Size-1]
	for i := range w {
		w[i] = binary.LittleEndian.Uint64(src[i*8:])
	}
	return w
}
