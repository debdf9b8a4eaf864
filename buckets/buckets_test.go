package buckets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeq_DoublesWhenFull(t *testing.T) {
	t.Parallel()
	s := newSeq()
	require.Equal(t, 1, s.Cap())
	require.Equal(t, 0, s.Len())

	caps := []int{}
	for i := int64(0); i < 9; i++ {
		s.Append(i * -3)
		caps = append(caps, s.Cap())
	}
	assert.Equal(t, []int{1, 2, 4, 4, 8, 8, 8, 8, 16}, caps)
	assert.Equal(t, 9, s.Len())
	assert.Equal(t, int64(-24), s.At(8))
	assert.Equal(t, []int64{0, -3, -6, -9, -12, -15, -18, -21, -24}, s.Values())
}

func TestSeq_AtOutOfRange(t *testing.T) {
	t.Parallel()
	s := newSeq()
	s.Append(1)
	assert.Panics(t, func() { s.At(1) })
	assert.Panics(t, func() { s.At(-1) })
}

func TestIndex_Lifecycle(t *testing.T) {
	t.Parallel()
	x, err := New(DefaultCount)
	require.NoError(t, err)
	require.Equal(t, DefaultCount, x.Len())

	require.NoError(t, x.Append(0, 5))
	require.NoError(t, x.Append(DefaultCount-1, 6))
	require.NoError(t, x.Append(DefaultCount-1, 7))

	s, err := x.Bucket(DefaultCount - 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{6, 7}, s.Values())

	empty, err := x.Bucket(1)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())

	require.NoError(t, x.Close())
	assert.Equal(t, 0, x.Len())
	assert.ErrorIs(t, x.Append(0, 1), ErrClosed)
	require.NoError(t, x.Close())
}

func TestIndex_BucketRange(t *testing.T) {
	t.Parallel()
	x, err := New(3)
	require.NoError(t, err)
	assert.ErrorIs(t, x.Append(3, 1), ErrBucketRange)
	assert.ErrorIs(t, x.Append(-1, 1), ErrBucketRange)

	_, err = New(0)
	assert.Error(t, err)
}
