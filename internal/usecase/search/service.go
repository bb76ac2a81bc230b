package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/photodex/internal/domain"
	"github.com/kailas-cloud/photodex/internal/domain/search/result"
	"github.com/kailas-cloud/photodex/internal/logger"
)

// Service answers free-text photo queries.
type Service struct {
	repo     Repository
	keywords KeywordExtractor
}

// New creates a search service.
func New(repo Repository, keywords KeywordExtractor) *Service {
	return &Service{repo: repo, keywords: keywords}
}

// Search extracts keywords from text and returns matching photos in engine order.
// Engine failures are returned, never reported as an empty result.
func (s *Service) Search(ctx context.Context, text string) ([]result.Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty query: %w", domain.ErrInvalidRequest)
	}

	keywords := s.keywords.Extract(ctx, text)
	logger.FromContext(ctx).Debug("query keywords",
		zap.String("q", text),
		zap.Strings("keywords", keywords),
	)

	results, err := s.repo.Search(ctx, keywords)
	if err != nil {
		return nil, fmt.Errorf("search photos: %w", err)
	}
	return results, nil
}
