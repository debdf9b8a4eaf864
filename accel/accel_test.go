package accel

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	Device
	name   string
	closed bool
}

func (d *fakeDevice) Info() DeviceInfo { return DeviceInfo{Name: d.name} }
func (d *fakeDevice) Close() error     { d.closed = true; return nil }

type fakePlatform struct {
	devs []Device
	err  error
}

func (p fakePlatform) Devices() ([]Device, error) { return p.devs, p.err }

/* The registry is process-wide, so these tests use unique names and run serially. */

func TestOpen_PrefersNamedPlatform(t *testing.T) {
	a, b := &fakeDevice{name: "a0"}, &fakeDevice{name: "a1"}
	Register("zz-test-a", fakePlatform{devs: []Device{a, b}})

	dev, err := Open("zz-test-a")
	require.NoError(t, err)
	assert.Equal(t, "a0", dev.Info().Name)
	assert.True(t, b.closed, "extra devices are released")
	assert.False(t, a.closed)
}

func TestOpen_UnknownPreference(t *testing.T) {
	_, err := Open("zz-missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, StatusPlatformNotFound))
}

func TestOpen_EmptyPlatform(t *testing.T) {
	Register("zz-test-empty", fakePlatform{err: StatusDeviceNotAvailable})
	_, err := Open("zz-test-empty")
	require.Error(t, err)
	assert.Equal(t, StatusDeviceNotFound, StatusOf(err))
}

func TestRegister_Duplicate(t *testing.T) {
	Register("zz-test-dup", fakePlatform{})
	assert.Panics(t, func() { Register("zz-test-dup", fakePlatform{}) })
	assert.Panics(t, func() { Register("zz-test-nil", nil) })
	assert.Contains(t, Platforms(), "zz-test-dup")
}

func TestStatus_Names(t *testing.T) {
	t.Parallel()
	cases := map[Status]string{
		StatusSuccess:               "CL_SUCCESS",
		StatusBuildProgramFailure:   "CL_BUILD_PROGRAM_FAILURE",
		StatusInvalidArgIndex:       "CL_INVALID_ARG_INDEX",
		StatusInvalidGlobalWorkSize: "CL_INVALID_GLOBAL_WORK_SIZE",
		StatusPlatformNotFound:      "CL_PLATFORM_NOT_FOUND_KHR",
		Status(-20):                 "Unknown accelerator error",
		Status(7):                   "Unknown accelerator error",
	}
	for s, want := range cases {
		assert.Equal(t, want, s.String())
	}
	assert.Equal(t, "CL_OUT_OF_RESOURCES (-5)", StatusOutOfResources.Error())
}

func TestStatusOf(t *testing.T) {
	t.Parallel()
	assert.Equal(t, StatusSuccess, StatusOf(nil))
	assert.Equal(t, StatusInvalidValue, StatusOf(errors.New("plain")))
	wrapped := fmt.Errorf("enqueue: %w", StatusOutOfResources)
	assert.Equal(t, StatusOutOfResources, StatusOf(wrapped))

	be := &BuildError{Status: StatusBuildProgramFailure, Log: "line 3: oops"}
	assert.Equal(t, StatusBuildProgramFailure, StatusOf(fmt.Errorf("build: %w", be)))
	assert.Contains(t, be.Error(), "line 3: oops")
}

func TestAccessString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "read-only", ReadOnly.String())
	assert.Equal(t, "write-only", WriteOnly.String())
	assert.Equal(t, "read-write", ReadWrite.String())
}
