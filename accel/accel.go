// Package accel describes the capabilities the search needs from a parallel compute accelerator:
// device selection, kernel building, buffer management, one-dimensional dispatch and profiling.
// Backends register a Platform under a name, much like database/sql drivers.
package accel

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// Access is the kernel-side access hint of a buffer.
type Access int

const (
	ReadWrite Access = iota
	ReadOnly
	WriteOnly
)

func (a Access) String() string {
	switch a {
	case ReadOnly:
		return "read-only"
	case WriteOnly:
		return "write-only"
	default:
		return "read-write"
	}
}

// DeviceInfo is static information about a device.
type DeviceInfo struct {
	Name         string
	Platform     string
	ComputeUnits int
	Features     []string
}

// Platform enumerates the devices of one backend.
type Platform interface {
	Devices() ([]Device, error)
}

// Device is an opened accelerator. Every method may be called from one goroutine at a time.
type Device interface {
	Info() DeviceInfo

	// Build compiles source and returns the kernel named entry. On a compile failure the error is
	// a *BuildError carrying the build log.
	Build(source []byte, entry string) (Kernel, error)

	// Alloc reserves a device buffer of size bytes.
	Alloc(size int, access Access) (Buffer, error)

	// Write and Read copy between host memory and b, blocking until the copy completes.
	Write(b Buffer, src []byte) error
	Read(b Buffer, dst []byte) error

	// Enqueue submits k over the range [0, workItems) and returns immediately.
	Enqueue(k Kernel, workItems int) (Event, error)

	// Close releases the device and anything still allocated on it.
	Close() error
}

// Kernel is a built entry point with bound arguments.
type Kernel interface {
	Name() string
	SetArg(index int, b Buffer) error
	// WorkGroupSize is the device's preferred grouping of work items; it is advisory.
	WorkGroupSize() int
}

// Buffer is device memory.
type Buffer interface {
	Size() int
	Access() Access
	Release() error
}

// Event tracks one enqueued dispatch.
type Event interface {
	// Wait blocks until the dispatch has finished and reports its failure, if any.
	Wait() error
	// Profile returns the device clock in nanoseconds when execution started and ended.
	Profile() (start, end uint64, err error)
}

var (
	mu        sync.RWMutex
	platforms = map[string]Platform{}
)

// Register makes a platform available by name. It panics on duplicates.
func Register(name string, p Platform) {
	mu.Lock()
	defer mu.Unlock()
	if p == nil {
		panic("accel: Register platform is nil")
	}
	if _, dup := platforms[name]; dup {
		panic("accel: Register called twice for platform " + name)
	}
	platforms[name] = p
}

// Platforms lists registered platform names in lexical order.
func Platforms() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(platforms))
	for name := range platforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open returns the first device of the preferred platform, or if preference is empty, the first
// device of the first platform that yields one.
func Open(preference string) (Device, error) {
	names := Platforms()
	if len(names) == 0 {
		return nil, fmt.Errorf("accel: no platforms registered: %w", StatusPlatformNotFound)
	}
	if preference != "" {
		names = []string{preference}
	}

	var tried []string
	for _, name := range names {
		mu.RLock()
		p, ok := platforms[name]
		mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("accel: platform %q: %w", name, StatusPlatformNotFound)
		}
		devs, err := p.Devices()
		if err != nil || len(devs) == 0 {
			tried = append(tried, name)
			continue
		}
		/* Only the first device is kept; release any others the platform opened. */
		for _, d := range devs[1:] {
			_ = d.Close()
		}
		return devs[0], nil
	}
	return nil, fmt.Errorf("accel: no device on platforms %s: %w",
		strings.Join(tried, ", "), StatusDeviceNotFound)
}
