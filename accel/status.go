package accel

import (
	"errors"
	"fmt"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// Status is an accelerator result code. Codes and names follow OpenCL so that a native backend can
// pass its codes straight through.
type Status int32

const (
	StatusSuccess                      Status = 0
	StatusDeviceNotFound               Status = -1
	StatusDeviceNotAvailable           Status = -2
	StatusCompilerNotAvailable         Status = -3
	StatusMemObjectAllocationFailure   Status = -4
	StatusOutOfResources               Status = -5
	StatusOutOfHostMemory              Status = -6
	StatusProfilingInfoNotAvailable    Status = -7
	StatusMemCopyOverlap               Status = -8
	StatusImageFormatMismatch          Status = -9
	StatusImageFormatNotSupported      Status = -10
	StatusBuildProgramFailure          Status = -11
	StatusMapFailure                   Status = -12
	StatusMisalignedSubBufferOffset    Status = -13
	StatusExecStatusErrorForEvents     Status = -14
	StatusCompileProgramFailure        Status = -15
	StatusLinkerNotAvailable           Status = -16
	StatusLinkProgramFailure           Status = -17
	StatusDevicePartitionFailed        Status = -18
	StatusKernelArgInfoNotAvailable    Status = -19
	StatusInvalidValue                 Status = -30
	StatusInvalidDeviceType            Status = -31
	StatusInvalidPlatform              Status = -32
	StatusInvalidDevice                Status = -33
	StatusInvalidContext               Status = -34
	StatusInvalidQueueProperties       Status = -35
	StatusInvalidCommandQueue          Status = -36
	StatusInvalidHostPtr               Status = -37
	StatusInvalidMemObject             Status = -38
	StatusInvalidImageFormatDescriptor Status = -39
	StatusInvalidImageSize             Status = -40
	StatusInvalidSampler               Status = -41
	StatusInvalidBinary                Status = -42
	StatusInvalidBuildOptions          Status = -43
	StatusInvalidProgram               Status = -44
	StatusInvalidProgramExecutable     Status = -45
	StatusInvalidKernelName            Status = -46
	StatusInvalidKernelDefinition      Status = -47
	StatusInvalidKernel                Status = -48
	StatusInvalidArgIndex              Status = -49
	StatusInvalidArgValue              Status = -50
	StatusInvalidArgSize               Status = -51
	StatusInvalidKernelArgs            Status = -52
	StatusInvalidWorkDimension         Status = -53
	StatusInvalidWorkGroupSize         Status = -54
	StatusInvalidWorkItemSize          Status = -55
	StatusInvalidGlobalOffset          Status = -56
	StatusInvalidEventWaitList         Status = -57
	StatusInvalidEvent                 Status = -58
	StatusInvalidOperation             Status = -59
	StatusInvalidGLObject              Status = -60
	StatusInvalidBufferSize            Status = -61
	StatusInvalidMipLevel              Status = -62
	StatusInvalidGlobalWorkSize        Status = -63
	StatusInvalidProperty              Status = -64
	StatusInvalidImageDescriptor       Status = -65
	StatusInvalidCompilerOptions       Status = -66
	StatusInvalidLinkerOptions         Status = -67
	StatusInvalidDevicePartitionCount  Status = -68
	StatusInvalidGLSharegroupReference Status = -1000
	StatusPlatformNotFound             Status = -1001
	StatusInvalidD3D10Device           Status = -1002
	StatusInvalidD3D10Resource         Status = -1003
	StatusD3D10ResourceAlreadyAcquired Status = -1004
	StatusD3D10ResourceNotAcquired     Status = -1005
)

var statusNames = map[Status]string{
	0:     "CL_SUCCESS",
	-1:    "CL_DEVICE_NOT_FOUND",
	-2:    "CL_DEVICE_NOT_AVAILABLE",
	-3:    "CL_COMPILER_NOT_AVAILABLE",
	-4:    "CL_MEM_OBJECT_ALLOCATION_FAILURE",
	-5:    "CL_OUT_OF_RESOURCES",
	-6:    "CL_OUT_OF_HOST_MEMORY",
	-7:    "CL_PROFILING_INFO_NOT_AVAILABLE",
	-8:    "CL_MEM_COPY_OVERLAP",
	-9:    "CL_IMAGE_FORMAT_MISMATCH",
	-10:   "CL_IMAGE_FORMAT_NOT_SUPPORTED",
	-11:   "CL_BUILD_PROGRAM_FAILURE",
	-12:   "CL_MAP_FAILURE",
	-13:   "CL_MISALIGNED_SUB_BUFFER_OFFSET",
	-14:   "CL_EXEC_STATUS_ERROR_FOR_EVENTS_IN_WAIT_LIST",
	-15:   "CL_COMPILE_PROGRAM_FAILURE",
	-16:   "CL_LINKER_NOT_AVAILABLE",
	-17:   "CL_LINK_PROGRAM_FAILURE",
	-18:   "CL_DEVICE_PARTITION_FAILED",
	-19:   "CL_KERNEL_ARG_INFO_NOT_AVAILABLE",
	-30:   "CL_INVALID_VALUE",
	-31:   "CL_INVALID_DEVICE_TYPE",
	-32:   "CL_INVALID_PLATFORM",
	-33:   "CL_INVALID_DEVICE",
	-34:   "CL_INVALID_CONTEXT",
	-35:   "CL_INVALID_QUEUE_PROPERTIES",
	-36:   "CL_INVALID_COMMAND_QUEUE",
	-37:   "CL_INVALID_HOST_PTR",
	-38:   "CL_INVALID_MEM_OBJECT",
	-39:   "CL_INVALID_IMAGE_FORMAT_DESCRIPTOR",
	-40:   "CL_INVALID_IMAGE_SIZE",
	-41:   "CL_INVALID_SAMPLER",
	-42:   "CL_INVALID_BINARY",
	-43:   "CL_INVALID_BUILD_OPTIONS",
	-44:   "CL_INVALID_PROGRAM",
	-45:   "CL_INVALID_PROGRAM_EXECUTABLE",
	-46:   "CL_INVALID_KERNEL_NAME",
	-47:   "CL_INVALID_KERNEL_DEFINITION",
	-48:   "CL_INVALID_KERNEL",
	-49:   "CL_INVALID_ARG_INDEX",
	-50:   "CL_INVALID_ARG_VALUE",
	-51:   "CL_INVALID_ARG_SIZE",
	-52:   "CL_INVALID_KERNEL_ARGS",
	-53:   "CL_INVALID_WORK_DIMENSION",
	-54:   "CL_INVALID_WORK_GROUP_SIZE",
	-55:   "CL_INVALID_WORK_ITEM_SIZE",
	-56:   "CL_INVALID_GLOBAL_OFFSET",
	-57:   "CL_INVALID_EVENT_WAIT_LIST",
	-58:   "CL_INVALID_EVENT",
	-59:   "CL_INVALID_OPERATION",
	-60:   "CL_INVALID_GL_OBJECT",
	-61:   "CL_INVALID_BUFFER_SIZE",
	-62:   "CL_INVALID_MIP_LEVEL",
	-63:   "CL_INVALID_GLOBAL_WORK_SIZE",
	-64:   "CL_INVALID_PROPERTY",
	-65:   "CL_INVALID_IMAGE_DESCRIPTOR",
	-66:   "CL_INVALID_COMPILER_OPTIONS",
	-67:   "CL_INVALID_LINKER_OPTIONS",
	-68:   "CL_INVALID_DEVICE_PARTITION_COUNT",
	-1000: "CL_INVALID_GL_SHAREGROUP_REFERENCE_KHR",
	-1001: "CL_PLATFORM_NOT_FOUND_KHR",
	-1002: "CL_INVALID_D3D10_DEVICE_KHR",
	-1003: "CL_INVALID_D3D10_RESOURCE_KHR",
	-1004: "CL_D3D10_RESOURCE_ALREADY_ACQUIRED_KHR",
	-1005: "CL_D3D10_RESOURCE_NOT_ACQUIRED_KHR",
}

// String returns the symbolic name of s.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Unknown accelerator error"
}

func (s Status) Error() string { return fmt.Sprintf("%s (%d)", s.String(), int32(s)) }

// StatusOf extracts the Status carried by err, or StatusSuccess if err is nil, or
// StatusInvalidValue if err carries none.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var s Status
	if errors.As(err, &s) {
		return s
	}
	return StatusInvalidValue
}

// BuildError reports a failed kernel build together with the compiler log.
type BuildError struct {
	Status Status
	Log    string
}

func (e *BuildError) Error() string {
	if e.Log == "" {
		return e.Status.Error()
	}
	return e.Status.Error() + ":\n" + e.Log
}

func (e *BuildError) Unwrap() error { return e.Status }
