package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest signals malformed or missing client input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrObjectNotFound signals a missing storage object.
	ErrObjectNotFound = errors.New("object not found")
	// ErrStorage signals an object storage failure.
	ErrStorage = errors.New("object storage error")
	// ErrDetectionFailed signals a label detection failure.
	ErrDetectionFailed = errors.New("label detection failed")
	// ErrNLUUnavailable signals an NLU provider failure.
	ErrNLUUnavailable = errors.New("nlu provider unavailable")
	// ErrSearchEngine signals a non-success answer from the search engine.
	ErrSearchEngine = errors.New("search engine error")
	// ErrIndexWriteRejected signals that the search engine refused a document write.
	ErrIndexWriteRejected = errors.New("index write rejected")
	// ErrPayloadTooLarge signals an upload above the configured size limit.
	ErrPayloadTooLarge = errors.New("payload too large")
)

// EngineError wraps ErrSearchEngine with the engine status and body.
type EngineError struct {
	Status int
	Body   string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", ErrSearchEngine.Error(), e.Status, e.Body)
}

func (e *EngineError) Unwrap() error { return ErrSearchEngine }

// NewEngineError creates a search engine error.
func NewEngineError(status int, body string) error {
	return &EngineError{Status: status, Body: body}
}
