package host

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"regexp"
	"strings"

	"github.com/p7r0x7/hashclash/accel"
	"github.com/p7r0x7/hashclash/bignum"
	"github.com/p7r0x7/hashclash/kernels"
	"golang.org/x/sync/errgroup"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.
// The host "compiler" does not translate kernel source: it reads the directive naming the hash
// algorithm and checks that the requested entry point is declared, then binds the Go rendition of
// that algorithm. The kernel body itself is fixed:
//
//	out[gid] = H(offset + gid) & mask
//
// with args 0 = offset (bignum.Size bytes), 1 = mask (8 bytes), 2 = out (8 bytes per work item).

const (
	// ArgCount is the number of buffer arguments the hash kernel takes.
	ArgCount = 3

	argOffset, argMask, argOut = 0, 1, 2
)

var (
	pragmaRx = regexp.MustCompile(`^\s*#\s*pragma\s+hashclash\s+algorithm\s+(\S+)\s*$`)
	entryRx  = regexp.MustCompile(`__kernel\s+void\s+([A-Za-z_]\w*)\s*\(`)
)

type kernel struct {
	dev   *Device
	entry string
	algo  string
	fn    kernels.Func
	args  [ArgCount]*buffer
}

func (k *kernel) Name() string       { return k.entry }
func (k *kernel) WorkGroupSize() int { return k.dev.group }

// Algorithm is the hash algorithm the kernel was bound to at build time.
func (k *kernel) Algorithm() string { return k.algo }

func (k *kernel) SetArg(index int, b accel.Buffer) error {
	if index < 0 || index >= ArgCount {
		return accel.StatusInvalidArgIndex
	}
	hb, err := k.dev.own(b)
	if err != nil {
		return err
	}
	k.args[index] = hb
	return nil
}

// Build implements accel.Device.
func (d *Device) Build(source []byte, entry string) (accel.Kernel, error) {
	if err := d.usable(); err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(source)) == 0 {
		return nil, accel.StatusInvalidValue
	}

	var algo string
	var algoLine int
	var log []string
	entries := map[string]int{}

	sc, line := bufio.NewScanner(bytes.NewReader(source)), 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if m := pragmaRx.FindStringSubmatch(text); m != nil {
			if algo != "" {
				log = append(log, fmt.Sprintf("line %d: algorithm already set to %q on line %d",
					line, algo, algoLine))
				continue
			}
			algo, algoLine = m[1], line
			continue
		}
		for _, m := range entryRx.FindAllStringSubmatch(text, -1) {
			if _, dup := entries[m[1]]; !dup {
				entries[m[1]] = line
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &accel.BuildError{Status: accel.StatusBuildProgramFailure, Log: err.Error()}
	}

	var fn kernels.Func
	if algo == "" {
		log = append(log, "missing `#pragma hashclash algorithm <name>` directive")
	} else if f, err := kernels.Lookup(algo); err != nil {
		log = append(log, fmt.Sprintf("line %d: unknown algorithm %q (available: %s)",
			algoLine, algo, strings.Join(kernels.Names(), ", ")))
	} else {
		fn = f
	}
	if len(log) > 0 {
		return nil, &accel.BuildError{Status: accel.StatusBuildProgramFailure, Log: strings.Join(log, "\n")}
	}
	if _, ok := entries[entry]; !ok {
		return nil, fmt.Errorf("host: no kernel named %q: %w", entry, accel.StatusInvalidKernelName)
	}
	return &kernel{dev: d, entry: entry, algo: algo, fn: fn}, nil
}

// Enqueue implements accel.Device. The offset and mask are captured at submission.
func (d *Device) Enqueue(k accel.Kernel, workItems int) (accel.Event, error) {
	hk, ok := k.(*kernel)
	if !ok || hk == nil || hk.dev != d {
		return nil, accel.StatusInvalidKernel
	}
	if err := d.usable(); err != nil {
		return nil, err
	}
	if workItems <= 0 {
		return nil, accel.StatusInvalidGlobalWorkSize
	}
	for _, a := range hk.args {
		if a == nil || a.released {
			return nil, accel.StatusInvalidKernelArgs
		}
	}
	off, mask, out := hk.args[argOffset], hk.args[argMask], hk.args[argOut]
	if off.size < bignum.Size || mask.size < 8 || out.size < workItems*8 {
		return nil, accel.StatusInvalidArgSize
	}

	base := bignum.FromBytes(off.data)
	m := binary.LittleEndian.Uint64(mask.data)
	dst, fn := out.data[:workItems*8], hk.fn
	slice := d.slice(workItems)

	ev := &event{done: make(chan struct{})}
	go func() {
		defer close(ev.done)
		ev.start = d.now()
		c0 := cyclesStart()

		var g errgroup.Group
		g.SetLimit(d.info.ComputeUnits)
		for lo := 0; lo < workItems; lo += slice {
			lo, hi := lo, lo+slice
			if hi > workItems {
				hi = workItems
			}
			g.Go(func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						err = fmt.Errorf("host: work items [%d, %d): %v: %w",
							lo, hi, r, accel.StatusExecStatusErrorForEvents)
					}
				}()
				for i := lo; i < hi; i++ {
					c := base.Plus(uint64(i))
					binary.LittleEndian.PutUint64(dst[i*8:], fn(&c)&m)
				}
				return nil
			})
		}
		ev.err = g.Wait()

		ev.cycles = cyclesEnd() - c0
		ev.end = d.now()
	}()
	return ev, nil
}

/* Work is split into at most four slices per compute unit, each a whole number of groups. */
func (d *Device) slice(n int) int {
	per := (n + d.info.ComputeUnits*4 - 1) / (d.info.ComputeUnits * 4)
	if rem := per % d.group; rem != 0 {
		per += d.group - rem
	}
	if per == 0 {
		per = d.group
	}
	return per
}

type event struct {
	done       chan struct{}
	err        error
	start, end uint64
	cycles     uint64
}

func (e *event) Wait() error {
	<-e.done
	return e.err
}

func (e *event) Profile() (uint64, uint64, error) {
	select {
	case <-e.done:
		return e.start, e.end, nil
	default:
		return 0, 0, accel.StatusProfilingInfoNotAvailable
	}
}

// Cycles is the TSC cycle count of the dispatch; 0 where no cycle counter is available or before
// the dispatch completes.
func (e *event) Cycles() uint64 {
	select {
	case <-e.done:
		return e.cycles
	default:
		return 0
	}
}
