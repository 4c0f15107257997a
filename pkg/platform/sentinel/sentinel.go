// Package sentinel holds dependency-level errors. Stores and clients return
// these (optionally wrapped) so services translate them into domain errors
// exactly once.
package sentinel

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrAlreadyUsed  = errors.New("already used")
	ErrUnavailable  = errors.New("unavailable")
)
