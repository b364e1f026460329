package aggregator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/ObiAU/newsfanout/internal/cache"
	"github.com/ObiAU/newsfanout/internal/models"
)

var ErrEmptyPhrase = errors.New("search phrase is empty")

// Service runs the whole pipeline for one phrase: aggregate, reduce, and
// remember the result for a while when a cache is set.
type Service struct {
	aggregator *Aggregator
	sources    []models.Source
	policy     Policy
	cache      *cache.Cache
	logger     *slog.Logger
	runs       atomic.Int64
}

// NewService takes an optional cache; nil disables caching.
func NewService(agg *Aggregator, srcs []models.Source, policy Policy, resultCache *cache.Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		aggregator: agg,
		sources:    srcs,
		policy:     policy,
		cache:      resultCache,
		logger:     logger,
	}
}

func (s *Service) Search(ctx context.Context, phrase string) ([]models.Article, error) {
	if strings.TrimSpace(phrase) == "" {
		return nil, ErrEmptyPhrase
	}

	if s.cache != nil {
		if articles, ok := s.cache.Get(phrase); ok {
			s.logger.Debug("serving cached result", "phrase", phrase, "count", len(articles))
			return articles, nil
		}
	}

	s.runs.Add(1)
	candidates := s.aggregator.Aggregate(ctx, phrase, s.sources)
	result := s.policy.Apply(candidates)

	s.logger.Info("aggregation finished",
		"phrase", phrase,
		"sources", len(s.sources),
		"candidates", len(candidates),
		"returned", len(result))

	if s.cache != nil && ctx.Err() == nil {
		s.cache.Put(phrase, result)
	}

	return result, nil
}

func (s *Service) Sources() []models.Source {
	return s.sources
}

func (s *Service) Policy() Policy {
	return s.policy
}

func (s *Service) Stats() map[string]interface{} {
	stats := map[string]interface{}{
		"runs":         s.runs.Load(),
		"sources":      len(s.sources),
		"max_articles": s.policy.Cap,
	}
	if s.cache != nil {
		stats["cache"] = s.cache.Stats()
	}
	return stats
}
