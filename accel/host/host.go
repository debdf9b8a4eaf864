// Package host is an accelerator backend that runs kernels on the host CPU. Each compute unit is a
// goroutine; a dispatch splits its range into work-group aligned slices and fans them out with an
// errgroup limited to the unit count. Importing the package registers the "host" platform.
package host

import (
	"runtime"
	"sync"
	"time"

	"github.com/p7r0x7/hashclash/accel"
	"golang.org/x/sys/cpu"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// PlatformName is the name the backend registers under.
const PlatformName = "host"

func init() { accel.Register(PlatformName, Platform{}) }

// Platform yields a single host device with default options.
type Platform struct{}

// Devices implements accel.Platform.
func (Platform) Devices() ([]accel.Device, error) {
	return []accel.Device{New(Options{})}, nil
}

// Options configure a host device. Zero values select defaults.
type Options struct {
	Name          string
	ComputeUnits  int /* default runtime.NumCPU() */
	WorkGroupSize int /* default derived from CPU vector features */
}

// Device is a host accelerator.
type Device struct {
	info  accel.DeviceInfo
	group int
	epoch time.Time

	mu     sync.Mutex
	live   map[*buffer]struct{}
	closed bool
}

// New opens a host device.
func New(opt Options) *Device {
	if opt.Name == "" {
		opt.Name = runtime.GOARCH + " host"
	}
	if opt.ComputeUnits <= 0 {
		opt.ComputeUnits = runtime.NumCPU()
	}
	feats := features()
	if opt.WorkGroupSize <= 0 {
		opt.WorkGroupSize = preferredGroup()
	}
	return &Device{
		info: accel.DeviceInfo{
			Name:         opt.Name,
			Platform:     PlatformName,
			ComputeUnits: opt.ComputeUnits,
			Features:     feats,
		},
		group: opt.WorkGroupSize,
		epoch: time.Now(),
		live:  map[*buffer]struct{}{},
	}
}

// Info implements accel.Device.
func (d *Device) Info() accel.DeviceInfo { return d.info }

// Close releases every live buffer. Closing twice is a no-op.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	for b := range d.live {
		b.data, b.released = nil, true
	}
	d.live, d.closed = nil, true
	return nil
}

// Live reports the number of buffers allocated and not yet released.
func (d *Device) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

func (d *Device) usable() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return accel.StatusInvalidDevice
	}
	return nil
}

/* Device clock: nanoseconds since the device was opened. */
func (d *Device) now() uint64 { return uint64(time.Since(d.epoch)) }

func features() []string {
	var f []string
	switch runtime.GOARCH {
	case "amd64", "386":
		for _, v := range []struct {
			ok   bool
			name string
		}{
			{cpu.X86.HasSSE41, "sse4.1"},
			{cpu.X86.HasPOPCNT, "popcnt"},
			{cpu.X86.HasAVX2, "avx2"},
			{cpu.X86.HasAVX512F, "avx512f"},
			{cpu.X86.HasAES, "aes"},
		} {
			if v.ok {
				f = append(f, v.name)
			}
		}
	case "arm64":
		if cpu.ARM64.HasASIMD {
			f = append(f, "asimd")
		}
		if cpu.ARM64.HasSHA2 {
			f = append(f, "sha2")
		}
	}
	return f
}

func preferredGroup() int {
	switch {
	case cpu.X86.HasAVX512F:
		return 256
	case cpu.X86.HasAVX2, cpu.ARM64.HasASIMD:
		return 128
	default:
		return 64
	}
}
