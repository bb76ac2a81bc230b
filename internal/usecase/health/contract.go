package health

import "context"

// Pinger checks backend availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NLUChecker checks NLU provider availability.
type NLUChecker interface {
	HealthCheck(ctx context.Context) error
}
