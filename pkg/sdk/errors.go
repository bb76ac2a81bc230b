package photodex

import "github.com/kailas-cloud/photodex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRequest     = domain.ErrInvalidRequest
	ErrSearchEngine       = domain.ErrSearchEngine
	ErrIndexWriteRejected = domain.ErrIndexWriteRejected
	ErrNLUUnavailable     = domain.ErrNLUUnavailable
)
