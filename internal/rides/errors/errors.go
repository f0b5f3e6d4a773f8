package errors

import "errors"

var (
	ErrNotFound = errors.New("ride not found")
)
