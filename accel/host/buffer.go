package host

import (
	"github.com/p7r0x7/hashclash/accel"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

type buffer struct {
	dev      *Device
	data     []byte
	size     int
	access   accel.Access
	released bool
}

func (b *buffer) Size() int            { return b.size }
func (b *buffer) Access() accel.Access { return b.access }

func (b *buffer) Release() error {
	d := b.dev
	d.mu.Lock()
	defer d.mu.Unlock()
	if b.released {
		return accel.StatusInvalidMemObject
	}
	b.data, b.released = nil, true
	delete(d.live, b)
	return nil
}

// Alloc implements accel.Device.
func (d *Device) Alloc(size int, access accel.Access) (accel.Buffer, error) {
	if size <= 0 {
		return nil, accel.StatusInvalidBufferSize
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, accel.StatusInvalidDevice
	}
	b := &buffer{dev: d, data: make([]byte, size), size: size, access: access}
	d.live[b] = struct{}{}
	return b, nil
}

func (d *Device) own(b accel.Buffer) (*buffer, error) {
	hb, ok := b.(*buffer)
	if !ok || hb == nil || hb.dev != d {
		return nil, accel.StatusInvalidMemObject
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, accel.StatusInvalidDevice
	}
	if hb.released {
		return nil, accel.StatusInvalidMemObject
	}
	return hb, nil
}

// Write implements accel.Device.
func (d *Device) Write(b accel.Buffer, src []byte) error {
	hb, err := d.own(b)
	if err != nil {
		return err
	}
	if len(src) > hb.size {
		return accel.StatusInvalidValue
	}
	copy(hb.data, src)
	return nil
}

// Read implements accel.Device.
func (d *Device) Read(b accel.Buffer, dst []byte) error {
	hb, err := d.own(b)
	if err != nil {
		return err
	}
	if len(dst) > hb.size {
		return accel.StatusInvalidValue
	}
	copy(dst, hb.data)
	return nil
}
