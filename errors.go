package hashclash

import (
	"errors"

	"github.com/p7r0x7/hashclash/accel"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

var (
	// ErrSetup matches any failure while opening a Session.
	ErrSetup = errors.New("hashclash: accelerator setup failed")

	// ErrDispatch matches any failure while evaluating a batch.
	ErrDispatch = errors.New("hashclash: batch dispatch failed")

	// ErrExhausted is returned when the counter has wrapped past its maximum value.
	ErrExhausted = errors.New("hashclash: candidate space exhausted")
)

// Stage names the step of setup or dispatch that failed.
type Stage string

const (
	StageDevice      Stage = "select a device"
	StageBuild       Stage = "build program executable"
	StageAlloc       Stage = "allocate device memory"
	StageWorkGroup   Stage = "retrieve kernel work group info"
	StageBatch       Stage = "match batch size"
	StageWriteOffset Stage = "write offset"
	StageWriteMask   Stage = "write mask"
	StageSetArgs     Stage = "set kernel arguments"
	StageEnqueue     Stage = "execute kernel"
	StageWait        Stage = "wait for kernel"
	StageReadOutputs Stage = "read output array"
	StageRelease     Stage = "release device memory"
	StageEvaluate    Stage = "evaluate batch"
)

// StageError is a setup or dispatch failure. errors.Is(err, ErrSetup) or errors.Is(err,
// ErrDispatch) distinguishes the two; the accelerator status is reachable through Unwrap.
type StageError struct {
	Stage Stage
	Setup bool
	Err   error
}

func (e *StageError) Error() string { return "failed to " + string(e.Stage) + ": " + e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

func (e *StageError) Is(target error) bool {
	return target == ErrSetup && e.Setup || target == ErrDispatch && !e.Setup
}

// Status is the accelerator status code behind the failure.
func (e *StageError) Status() accel.Status { return accel.StatusOf(e.Err) }

func setupErr(stage Stage, err error) error {
	return &StageError{Stage: stage, Setup: true, Err: err}
}

func dispatchErr(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
