package keyword

import "context"

// SlotExtractor asks an NLU provider for filled slot values.
type SlotExtractor interface {
	ExtractSlots(ctx context.Context, text string) ([]string, error)
}
