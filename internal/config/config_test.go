package config

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestConf_May(t *testing.T) {
	var buf bytes.Buffer
	c := New(zerolog.New(&buf))
	t.Setenv("HASHCLASH_BATCH", " 4096 ")
	t.Setenv("HASHCLASH_BUCKETS", "many")
	t.Setenv("HASHCLASH_MAX_ITERATIONS", "-1")
	t.Setenv("HASHCLASH_QUIET", "true")
	t.Setenv("HASHCLASH_NO_CODES", "sometimes")
	t.Setenv("HASHCLASH_KERNEL", "")

	assert.Equal(t, 4096, c.MayInt("BATCH", 1))
	assert.Equal(t, 15000, c.MayInt("BUCKETS", 15000))
	assert.Equal(t, uint64(9), c.MayUint("MAX_ITERATIONS", 9))
	assert.True(t, c.MayBool("QUIET", false))
	assert.False(t, c.MayBool("NO_CODES", false))
	assert.Equal(t, "include/hash.cl", c.MayString("KERNEL", "include/hash.cl"))
	assert.Equal(t, 7, c.MayInt("UNSET_FOR_TEST", 7))

	logs := buf.String()
	assert.Contains(t, logs, `"key":"HASHCLASH_BUCKETS"`)
	assert.Contains(t, logs, `"key":"HASHCLASH_MAX_ITERATIONS"`)
	assert.Contains(t, logs, `"key":"HASHCLASH_NO_CODES"`)
	assert.NotContains(t, logs, "HASHCLASH_BATCH")
}

func TestConf_Prefix(t *testing.T) {
	c := New(zerolog.Nop()).Prefix("LOG_")
	assert.Equal(t, "HASHCLASH_LOG_LEVEL", c.Key("LEVEL"))
	t.Setenv("HASHCLASH_LOG_LEVEL", "warn")
	assert.Equal(t, "warn", c.MayString("LEVEL", "info"))
}
