package hashclash

import (
	"errors"
	"testing"

	"github.com/p7r0x7/hashclash/accel"
	"github.com/p7r0x7/hashclash/accel/host"
	"github.com/p7r0x7/hashclash/bignum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// faultyDevice is a host device that fails one dispatch stage on demand.
type faultyDevice struct {
	*host.Device
	fail Stage
}

type faultyKernel struct {
	accel.Kernel
	dev *faultyDevice
}

/* leakyBuffer frees its memory but still reports a failed release. */
type leakyBuffer struct{ accel.Buffer }

type failedEvent struct{}

func (failedEvent) Wait() error { return accel.StatusExecStatusErrorForEvents }
func (failedEvent) Profile() (uint64, uint64, error) { return 0, 0, nil }

func (b *leakyBuffer) Release() error {
	if err := b.Buffer.Release(); err != nil {
		return err
	}
	return accel.StatusInvalidMemObject
}

func unwrap(b accel.Buffer) accel.Buffer {
	if lb, ok := b.(*leakyBuffer); ok {
		return lb.Buffer
	}
	return b
}

func (d *faultyDevice) Build(source []byte, entry string) (accel.Kernel, error) {
	k, err := d.Device.Build(source, entry)
	if err != nil {
		return nil, err
	}
	return &faultyKernel{Kernel: k, dev: d}, nil
}

func (d *faultyDevice) Alloc(size int, access accel.Access) (accel.Buffer, error) {
	b, err := d.Device.Alloc(size, access)
	if err == nil && d.fail == StageRelease && access == accel.ReadOnly {
		return &leakyBuffer{b}, nil
	}
	return b, err
}

func (d *faultyDevice) Write(b accel.Buffer, src []byte) error {
	switch {
	case d.fail == StageWriteOffset && len(src) == bignum.Size,
		d.fail == StageWriteMask && len(src) == 8:
		return accel.StatusOutOfResources
	}
	return d.Device.Write(unwrap(b), src)
}

func (d *faultyDevice) Read(b accel.Buffer, dst []byte) error {
	if d.fail == StageReadOutputs {
		return accel.StatusOutOfResources
	}
	return d.Device.Read(b, dst)
}

func (d *faultyDevice) Enqueue(k accel.Kernel, workItems int) (accel.Event, error) {
	switch d.fail {
	case StageEnqueue:
		return nil, accel.StatusOutOfResources
	case StageWait:
		return failedEvent{}, nil
	}
	return d.Device.Enqueue(k.(*faultyKernel).Kernel, workItems)
}

func (k *faultyKernel) SetArg(index int, b accel.Buffer) error {
	if k.dev.fail == StageSetArgs && index == 1 {
		return accel.StatusInvalidArgValue
	}
	return k.Kernel.SetArg(index, unwrap(b))
}

func TestEvaluate_ReleasesOnEveryFailure(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		stage  Stage
		status accel.Status
	}{
		{StageWriteOffset, accel.StatusOutOfResources},
		{StageWriteMask, accel.StatusOutOfResources},
		{StageSetArgs, accel.StatusInvalidArgValue},
		{StageEnqueue, accel.StatusOutOfResources},
		{StageWait, accel.StatusExecStatusErrorForEvents},
		{StageReadOutputs, accel.StatusOutOfResources},
		{StageRelease, accel.StatusInvalidMemObject},
	} {
		tc := tc
		t.Run(string(tc.stage), func(t *testing.T) {
			t.Parallel()
			dev := &faultyDevice{Device: host.New(host.Options{ComputeUnits: 2})}
			s, err := Open(dev, source(t), 128)
			require.NoError(t, err)
			defer s.Close()

			res, err := NewDeviceEvaluator(s).Evaluate(ChunkRequest{Mask: 0xff, Size: 128})
			require.Error(t, err)
			assert.Nil(t, res.Outputs)
			assert.ErrorIs(t, err, ErrDispatch)
			assert.NotErrorIs(t, err, ErrSetup)

			var se *StageError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tc.stage, se.Stage)
			assert.Equal(t, tc.status, se.Status())
			/* Only the session's output buffer survives the failed batch. */
			assert.Equal(t, 1, dev.Live())
		})
	}
}

func TestEvaluate_SucceedsThroughWrapper(t *testing.T) {
	t.Parallel()
	dev := &faultyDevice{Device: host.New(host.Options{ComputeUnits: 2})}
	s, err := Open(dev, source(t), 64)
	require.NoError(t, err)
	defer s.Close()

	res, err := NewDeviceEvaluator(s).Evaluate(ChunkRequest{Mask: 0xff, Size: 64})
	require.NoError(t, err)
	require.Len(t, res.Outputs, 64)
	assert.Equal(t, int64(128), res.Outputs[0])
	assert.Equal(t, 1, dev.Live())
}
