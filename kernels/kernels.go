package kernels

import (
	"encoding/binary"
	"fmt"
	"sort"
	"sync"

	"github.com/aead/chacha20/chacha"
	"github.com/minio/sha256-simd"
	"github.com/p7r0x7/hashclash/bignum"
	"github.com/zeebo/blake3"
	"github.com/zeebo/xxh3"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.
// Per-candidate hash algorithms that a kernel program can bind to. Every algorithm sees a candidate
// as its bignum.Size-byte little-endian encoding and returns a 64-bit digest; masking is the
// kernel's job, not the algorithm's.

// Func hashes one candidate.
type Func func(candidate *bignum.Words) uint64

var (
	mu       sync.RWMutex
	registry = map[string]Func{
		"strhash": StrHash,
		"xxh3":    XXH3,
		"blake3":  Blake3,
		"sha256":  SHA256,
		"chacha8": ChaCha8,
	}
)

// Register makes fn available under name, replacing any previous registration.
func Register(name string, fn Func) {
	if fn == nil {
		panic("kernels: Register of nil Func for " + name)
	}
	mu.Lock()
	registry[name] = fn
	mu.Unlock()
}

// Lookup returns the algorithm registered under name.
func Lookup(name string) (Func, error) {
	mu.RLock()
	fn, ok := registry[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("kernels: unknown algorithm %q", name)
	}
	return fn, nil
}

// Names lists registered algorithms in lexical order.
func Names() []string {
	mu.RLock()
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	mu.RUnlock()
	sort.Strings(names)
	return names
}

// StrHash is the classic multiplicative string hash (x = 1000003*x ^ byte) over the candidate's
// bytes, seeded with the first byte and finished with the length. -1 is reserved and becomes -2.
func StrHash(c *bignum.Words) uint64 {
	var buf [bignum.Size]byte
	c.PutBytes(buf[:])

	x := int64(buf[0]) << 7
	for _, b := range buf {
		x = (1000003 * x) ^ int64(b)
	}
	x ^= bignum.Size
	if x == -1 {
		x = -2
	}
	return uint64(x)
}

// XXH3 is the 64-bit XXH3 digest of the candidate.
func XXH3(c *bignum.Words) uint64 {
	var buf [bignum.Size]byte
	c.PutBytes(buf[:])
	return xxh3.Hash(buf[:])
}

// Blake3 is the low 8 bytes of the candidate's BLAKE3-256 digest.
func Blake3(c *bignum.Words) uint64 {
	var buf [bignum.Size]byte
	c.PutBytes(buf[:])
	sum := blake3.Sum256(buf[:])
	return binary.LittleEndian.Uint64(sum[:8])
}

// SHA256 is the low 8 bytes of the candidate's SHA-256 digest.
func SHA256(c *bignum.Words) uint64 {
	var buf [bignum.Size]byte
	c.PutBytes(buf[:])
	sum := sha256.Sum256(buf[:])
	return binary.LittleEndian.Uint64(sum[:8])
}

// ChaCha8 keys an 8-round ChaCha stream with the candidate folded to 32 bytes and returns the
// first 8 bytes of keystream.
func ChaCha8(c *bignum.Words) uint64 {
	var key [32]byte
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint64(key[i*8:],
			c[i]^c[i+4]^c[i+8]^c[i+12])
	}
	var nonce [chacha.NonceSize]byte
	binary.LittleEndian.PutUint64(nonce[:], c[0]^c[15]) /* Separates candidates that fold alike. */

	var out [8]byte
	chacha.XORKeyStream(out[:], out[:], nonce[:], key[:], 8)
	return binary.LittleEndian.Uint64(out[:])
}
