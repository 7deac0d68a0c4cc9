package repository

import "errors"

// Storage-level outcomes every implementation reports with these values.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrCapacityReached means the conditional seat increment matched no row.
	ErrCapacityReached = errors.New("capacity reached")
)
