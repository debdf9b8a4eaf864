package kernels

import (
	"encoding/binary"
	"testing"

	"github.com/minio/sha256-simd"
	"github.com/p7r0x7/hashclash/bignum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/xxh3"
)

func TestLookup(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"strhash", "xxh3", "blake3", "sha256", "chacha8"} {
		fn, err := Lookup(name)
		require.NoError(t, err, name)
		require.NotNil(t, fn, name)
	}
	_, err := Lookup("md5")
	assert.ErrorContains(t, err, `"md5"`)
}

func TestNamesSorted(t *testing.T) {
	t.Parallel()
	names := Names()
	require.GreaterOrEqual(t, len(names), 5)
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
}

func TestRegister(t *testing.T) {
	Register("test-const", func(*bignum.Words) uint64 { return 99 })
	fn, err := Lookup("test-const")
	require.NoError(t, err)
	assert.Equal(t, uint64(99), fn(&bignum.Words{}))
	assert.Panics(t, func() { Register("nil", nil) })
}

func TestAlgorithms_DeterministicAndDistinct(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"strhash", "xxh3", "blake3", "sha256", "chacha8"} {
		fn, err := Lookup(name)
		require.NoError(t, err)

		seen := map[uint64]bool{}
		for i := uint64(0); i < 256; i++ {
			w := bignum.Words{}.Plus(i)
			h := fn(&w)
			assert.Equal(t, h, fn(&w), "%s not deterministic", name)
			seen[h] = true
		}
		assert.Greater(t, len(seen), 250, "%s collides too often on small inputs", name)
	}
}

func TestStrHash_ByHand(t *testing.T) {
	t.Parallel()
	/* All-zero input: x starts at 0 and stays 0 through every round, then x ^= length. */
	assert.Equal(t, uint64(bignum.Size), StrHash(&bignum.Words{}))

	w := bignum.Words{1}
	var x int64 = 1 << 7
	x = 1000003*x ^ 1
	for i := 1; i < bignum.Size; i++ {
		x = 1000003 * x
	}
	x ^= bignum.Size
	assert.Equal(t, uint64(x), StrHash(&w))
}

func TestXXH3_MatchesLibrary(t *testing.T) {
	t.Parallel()
	w := bignum.Words{0xdeadbeef, 3}
	buf := make([]byte, bignum.Size)
	w.PutBytes(buf)
	assert.Equal(t, xxh3.Hash(buf), XXH3(&w))
}

func TestSHA256_MatchesLibrary(t *testing.T) {
	t.Parallel()
	w := bignum.Words{5}
	buf := make([]byte, bignum.Size)
	w.PutBytes(buf)
	sum := sha256.Sum256(buf)
	assert.Equal(t, binary.LittleEndian.Uint64(sum[:8]), SHA256(&w))
}

func BenchmarkAlgorithms(b *testing.B) {
	for _, name := range Names() {
		fn, _ := Lookup(name)
		b.Run(name, func(b *testing.B) {
			w := bignum.Words{}
			b.SetBytes(bignum.Size)
			b.ReportAllocs()
			for i := b.N; i > 0; i-- {
				w = w.Plus(1)
				fn(&w)
			}
		})
	}
}
