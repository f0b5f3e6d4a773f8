package errors

import "errors"

var (
	ErrNotFound = errors.New("transfer request not found")
)
