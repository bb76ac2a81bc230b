package db

import "errors"

// ErrKeyNotFound signals a missing key in the key-value store.
var ErrKeyNotFound = errors.New("db: key not found")

// Op constants name backend operations for error context.
const (
	OpPing        = "PING"
	OpGet         = "GET"
	OpSet         = "SET"
	OpCreateIndex = "PUT /{index}"
	OpIndexDoc    = "PUT /{index}/_doc/{id}"
	OpSearch      = "POST /{index}/_search"
	OpClusterInfo = "GET /"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
