package hashclash

import (
	"errors"
	"fmt"

	"github.com/p7r0x7/hashclash/accel"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// EntryPoint is the kernel function every kernel source must define.
const EntryPoint = "hash"

// Session owns one device, the built hash kernel and the persistent output buffer sized for one
// batch. It is not safe for concurrent use.
type Session struct {
	dev    accel.Device
	kernel accel.Kernel
	out    accel.Buffer
	batch  int
	group  int
	closed bool
}

// Open builds source on dev and prepares a session for batches of exactly batch candidates. The
// session takes ownership of dev: Close releases it, and so does a failed Open.
func Open(dev accel.Device, source []byte, batch int) (*Session, error) {
	if dev == nil {
		return nil, setupErr(StageDevice, accel.StatusDeviceNotFound)
	}
	if batch <= 0 {
		_ = dev.Close()
		return nil, setupErr(StageAlloc, fmt.Errorf("batch size %d: %w", batch, accel.StatusInvalidBufferSize))
	}

	k, err := dev.Build(source, EntryPoint)
	if err != nil {
		_ = dev.Close()
		return nil, setupErr(StageBuild, err)
	}
	out, err := dev.Alloc(batch*8, accel.WriteOnly)
	if err != nil {
		_ = dev.Close()
		return nil, setupErr(StageAlloc, err)
	}
	group := k.WorkGroupSize()
	if group <= 0 {
		_ = out.Release()
		_ = dev.Close()
		return nil, setupErr(StageWorkGroup, accel.StatusInvalidWorkGroupSize)
	}
	return &Session{dev: dev, kernel: k, out: out, batch: batch, group: group}, nil
}

// Device is the accelerator the session runs on.
func (s *Session) Device() accel.Device { return s.dev }

// BatchSize is the number of candidates every dispatch evaluates.
func (s *Session) BatchSize() int { return s.batch }

// WorkGroupSize was queried once at Open.
func (s *Session) WorkGroupSize() int { return s.group }

// Close releases the output buffer and the device. Calling it again is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return errors.Join(s.out.Release(), s.dev.Close())
}
