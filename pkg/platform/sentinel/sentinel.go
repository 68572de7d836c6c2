package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Entity stores and lockers return
// these (optionally wrapped) so the dispatcher can translate them into domain
// errors:
//   - ErrNotFound: no entity with the requested key
//   - ErrAlreadyUsed: a uniqueness constraint rejected the write (second
//     shipment or invoice for one contract)
//   - ErrInvalidState: entity in wrong state for requested operation
//   - ErrUnavailable: backing service (postgres, redis, kafka) unreachable
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
