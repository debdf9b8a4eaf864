package hashclash

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/p7r0x7/hashclash/accel"
	"github.com/p7r0x7/hashclash/bignum"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// DeviceEvaluator dispatches batches to a Session's accelerator.
type DeviceEvaluator struct {
	s   *Session
	raw []byte
}

// NewDeviceEvaluator returns an Evaluator backed by s. The session must stay open while the
// evaluator is in use.
func NewDeviceEvaluator(s *Session) *DeviceEvaluator {
	return &DeviceEvaluator{s: s, raw: make([]byte, s.batch*8)}
}

type cycler interface{ Cycles() uint64 }

// Evaluate implements Evaluator. The offset and mask buffers live for one call and are released on
// every path out of it.
func (e *DeviceEvaluator) Evaluate(req ChunkRequest) (res ChunkResult, err error) {
	s := e.s
	if s.closed {
		return res, dispatchErr(StageEnqueue, accel.StatusInvalidDevice)
	}
	if req.Size != s.batch {
		return res, dispatchErr(StageBatch, fmt.Errorf("request for %d candidates on a session of %d: %w",
			req.Size, s.batch, accel.StatusInvalidGlobalWorkSize))
	}

	var transient []accel.Buffer
	defer func() {
		var errs []error
		for _, b := range transient {
			errs = append(errs, b.Release())
		}
		if rerr := errors.Join(errs...); rerr != nil && err == nil {
			res, err = ChunkResult{}, dispatchErr(StageRelease, rerr)
		}
	}()

	off, err := s.dev.Alloc(bignum.Size, accel.ReadOnly)
	if err != nil {
		return res, dispatchErr(StageAlloc, err)
	}
	transient = append(transient, off)
	mask, err := s.dev.Alloc(8, accel.ReadOnly)
	if err != nil {
		return res, dispatchErr(StageAlloc, err)
	}
	transient = append(transient, mask)

	var word [bignum.Size]byte
	req.Start.PutBytes(word[:])
	if err = s.dev.Write(off, word[:]); err != nil {
		return res, dispatchErr(StageWriteOffset, err)
	}
	binary.LittleEndian.PutUint64(word[:8], req.Mask)
	if err = s.dev.Write(mask, word[:8]); err != nil {
		return res, dispatchErr(StageWriteMask, err)
	}

	for i, b := range [...]accel.Buffer{off, mask, s.out} {
		if err = s.kernel.SetArg(i, b); err != nil {
			return res, dispatchErr(StageSetArgs, fmt.Errorf("argument %d: %w", i, err))
		}
	}

	ev, err := s.dev.Enqueue(s.kernel, s.batch)
	if err != nil {
		return res, dispatchErr(StageEnqueue, err)
	}
	if err = ev.Wait(); err != nil {
		return res, dispatchErr(StageWait, err)
	}
	if err = s.dev.Read(s.out, e.raw); err != nil {
		return res, dispatchErr(StageReadOutputs, err)
	}

	res.Outputs = make([]int64, s.batch)
	for i := range res.Outputs {
		res.Outputs[i] = int64(binary.LittleEndian.Uint64(e.raw[i*8:]))
	}
	res.WorkGroup = s.group
	/* Profiling is advisory; a device without it reports zero time. */
	if start, end, perr := ev.Profile(); perr == nil && end >= start {
		res.DeviceTime = time.Duration(end - start)
	}
	if c, ok := ev.(cycler); ok {
		res.Cycles = c.Cycles()
	}
	return res, nil
}
