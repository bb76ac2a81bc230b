// Package keyword turns raw query text into search keywords: wildcard check,
// then the NLU tier when configured, then the deterministic fallback.
package keyword

import (
	"context"

	"go.uber.org/zap"

	domkw "github.com/kailas-cloud/photodex/internal/domain/keyword"
	"github.com/kailas-cloud/photodex/internal/logger"
	"github.com/kailas-cloud/photodex/internal/metrics"
)

// Extraction tiers, used as metric labels.
const (
	TierWildcard = "wildcard"
	TierNLU      = "nlu"
	TierFallback = "fallback"
)

// Service extracts keywords from query text. It never fails.
type Service struct {
	nlu      SlotExtractor
	provider string
}

// New creates a keyword service. nlu may be nil to disable the NLU tier.
func New(nlu SlotExtractor, provider string) *Service {
	return &Service{nlu: nlu, provider: provider}
}

// Extract returns the keywords for text. An empty result means match-all.
func (s *Service) Extract(ctx context.Context, text string) []string {
	keywords, _ := s.extract(ctx, text)
	return keywords
}

// extract also reports the tier that produced the keywords.
func (s *Service) extract(ctx context.Context, text string) ([]string, string) {
	if domkw.IsWildcard(text) {
		metrics.KeywordExtractionsTotal.WithLabelValues(TierWildcard).Inc()
		return []string{}, TierWildcard
	}

	if s.nlu != nil {
		out := s.attemptNLU(ctx, text)
		metrics.NLURequestsTotal.WithLabelValues(s.provider, out.Kind().String()).Inc()

		switch out.Kind() {
		case domkw.Found:
			metrics.KeywordExtractionsTotal.WithLabelValues(TierNLU).Inc()
			return out.Keywords(), TierNLU
		case domkw.Failed:
			logger.FromContext(ctx).Warn("nlu extraction failed, using fallback",
				zap.String("provider", s.provider),
				zap.Error(out.Err()),
			)
		case domkw.Empty:
			logger.FromContext(ctx).Debug("nlu returned no slots, using fallback",
				zap.String("provider", s.provider),
			)
		}
	}

	metrics.KeywordExtractionsTotal.WithLabelValues(TierFallback).Inc()
	return domkw.Fallback(text), TierFallback
}

func (s *Service) attemptNLU(ctx context.Context, text string) domkw.Outcome {
	slots, err := s.nlu.ExtractSlots(ctx, text)
	if err != nil {
		return domkw.FailedOutcome(err)
	}
	return domkw.FoundOutcome(domkw.FromSlots(slots))
}
