package models

import "errors"

// Repository errors shared by every store implementation.
var (
	ErrNotFound        = errors.New("record not found")
	ErrVersionConflict = errors.New("record was modified concurrently")
	ErrForbidden       = errors.New("not allowed for this user")
)
