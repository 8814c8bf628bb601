package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and services translate them into domain errors:
//   - ErrNotFound: record does not exist
//   - ErrConflict: a unique constraint rejected the write
//   - ErrExpired: token or record is past its expiry
//   - ErrUnavailable: backing service cannot be reached
//   - ErrInvalidState: the operation does not apply to the input
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrExpired     = errors.New("expired")
	ErrUnavailable = errors.New("unavailable")

	ErrInvalidState = errors.New("invalid state")
)
