package search

import (
	"context"

	"github.com/kailas-cloud/photodex/internal/domain/search/result"
)

// Repository runs conjunctive label queries against the photo index.
type Repository interface {
	Search(ctx context.Context, keywords []string) ([]result.Result, error)
}

// KeywordExtractor turns query text into keywords. Empty means match-all.
type KeywordExtractor interface {
	Extract(ctx context.Context, text string) []string
}
