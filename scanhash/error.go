// Copyright (c) 2023 The Decred developers.

package scanhash

import "errors"

var (
	// ErrUnknownAlgorithm is returned for an algorithm name or value that
	// has no implementation.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")

	// ErrUnsupportedLanes is returned for a lane count other than 1, 2, 4,
	// 8 or 16.
	ErrUnsupportedLanes = errors.New("unsupported lane count")

	// ErrStaleMidstate is returned when a batch is requested for a job
	// other than the one the hasher was prepared for.
	ErrStaleMidstate = errors.New("midstate belongs to another job")
)
