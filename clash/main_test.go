package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/p7r0x7/hashclash"
	"github.com/p7r0x7/hashclash/buckets"
	"github.com/p7r0x7/hashclash/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kernelPath = "../include/hash.cl"

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := program(append([]string{"--no-codes"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestParseWidth(t *testing.T) {
	for in, want := range map[string]uint{"0": 0, "10": 10, "63": 63, "007": 7} {
		d, err := parseWidth(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, d)
	}
	for _, in := range []string{"64", "-1", "ten", "", "1.5", "0x10"} {
		_, err := parseWidth(in)
		assert.ErrorIs(t, err, errUsage, in)
	}
}

func TestParse_Defaults(t *testing.T) {
	o, _, err := parse(nil, config.New(zerolog.Nop()))
	require.NoError(t, err)
	assert.Equal(t, uint(hashclash.DefaultWidth), o.width)
	assert.Equal(t, hashclash.DefaultBatchSize, o.batch)
	assert.Equal(t, buckets.DefaultCount, o.buckets)
	assert.Equal(t, "include/hash.cl", o.kernel)
	assert.Equal(t, "info", o.logLevel)
	assert.Zero(t, o.maxIter)
}

func TestParse_FlagsAndEnv(t *testing.T) {
	t.Setenv("HASHCLASH_BATCH", "2048")
	t.Setenv("HASHCLASH_DEVICE", "host")
	o, _, err := parse([]string{"--batch", "4096", "--quiet", "12"}, config.New(zerolog.Nop()))
	require.NoError(t, err)
	assert.Equal(t, uint(12), o.width)
	assert.Equal(t, 4096, o.batch)
	assert.Equal(t, "host", o.device)
	assert.True(t, o.noCodes)
	assert.Equal(t, "warn", o.logLevel)

	o, _, err = parse([]string{"--quiet", "--log-level", "error"}, config.New(zerolog.Nop()))
	require.NoError(t, err)
	assert.Equal(t, "error", o.logLevel)
}

func TestParse_Invalid(t *testing.T) {
	for _, args := range [][]string{
		{"64"},
		{"abc"},
		{"1", "2"},
		{"--batch", "0"},
		{"--buckets", "-3"},
		{"--unknown"},
	} {
		_, _, err := parse(args, config.New(zerolog.Nop()))
		assert.ErrorIs(t, err, errUsage, "%v", args)
	}
}

func TestProgram_ExitCodes(t *testing.T) {
	code, _, stderr := run(t, "99")
	assert.Equal(t, invalid, code)
	assert.Contains(t, stderr, "bit width")

	code, _, stderr = run(t, "--help")
	assert.Equal(t, success, code)
	assert.Contains(t, stderr, "Usage:")
	assert.Contains(t, stderr, "--max-iterations")
	assert.NotContains(t, stderr, "\033[")

	code, _, stderr = run(t, "--kernel", filepath.Join(t.TempDir(), "missing.cl"))
	assert.Equal(t, failure, code)
	assert.Contains(t, stderr, "failed to read kernel source")

	bad := filepath.Join(t.TempDir(), "bad.cl")
	require.NoError(t, os.WriteFile(bad, []byte("#pragma hashclash algorithm md4\n"), 0o644))
	code, _, stderr = run(t, "--kernel", bad, "--device", "host")
	assert.Equal(t, failure, code)
	assert.Contains(t, stderr, "CL_BUILD_PROGRAM_FAILURE")

	code, _, stderr = run(t, "--kernel", kernelPath, "--device", "nowhere")
	assert.Equal(t, failure, code)
	assert.Contains(t, stderr, "failed to select a device")
}

func TestProgram_FindsCollision(t *testing.T) {
	code, stdout, _ := run(t, "--kernel", kernelPath, "--device", "host", "--batch", "1024", "8")
	require.Equal(t, success, code)
	/* Candidate 0 hashes to 128 under the shipped kernel, which survives an 8-bit mask. */
	assert.Contains(t, stdout, "Collision with 128 at 0\n")
	assert.Contains(t, stdout, "Total time elapsed: ")
}

func TestProgram_IterationBound(t *testing.T) {
	code, stdout, stderr := run(t, "--kernel", kernelPath, "--device", "host", "--batch", "256",
		"--max-iterations", "4", "--log-format", "json", "0")
	require.Equal(t, success, code)
	assert.NotContains(t, stdout, "Collision")
	assert.Contains(t, stdout, "Total time elapsed: ")
	assert.Equal(t, 4, bytes.Count([]byte(stderr), []byte(`"message":"batch"`)))
}

func TestHelp_UnderlinesName(t *testing.T) {
	saved := [4]string{yell, purp, und, zero}
	defer func() { yell, purp, und, zero = saved[0], saved[1], saved[2], saved[3] }()
	yell, purp, und, zero = "\033[33m", "\033[35m", "\033[4m", "\033[0m"

	_, fs, err := parse([]string{"-h"}, config.New(zerolog.Nop()))
	require.NoError(t, err)
	var buf bytes.Buffer
	help(&buf, fs)
	assert.Contains(t, buf.String(), "Usage:\n  \033[4m")
}
