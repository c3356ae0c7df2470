package models

import "errors"

// Sentinel errors services return so handlers can map them to status codes
// without string matching.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)
