package voxelize

import "errors"

var (
	// ErrInitialization is returned when the pipeline cannot be built; the
	// pipeline must not be used afterwards.
	ErrInitialization = errors.New("voxelize: initialization failed")
	// ErrUnsupportedCapability is returned when a feature the device does
	// not expose is requested.
	ErrUnsupportedCapability = errors.New("voxelize: unsupported capability")
	// ErrNotReady is returned when an operation needs the Ready state.
	ErrNotReady = errors.New("voxelize: pipeline not ready")
)
