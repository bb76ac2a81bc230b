package domain

import "context"

// SlotExtractor is the shared NLU contract: it returns the interpreted value of
// every filled slot for a single-turn utterance, in a stable order.
type SlotExtractor interface {
	ExtractSlots(ctx context.Context, text string) ([]string, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
