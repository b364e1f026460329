package aggregator

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ObiAU/newsfanout/internal/match"
	"github.com/ObiAU/newsfanout/internal/models"
	"github.com/ObiAU/newsfanout/internal/sources"
)

// Aggregator queries every source concurrently and merges what the
// successful ones return.
type Aggregator struct {
	querier sources.Querier
	logger  *slog.Logger
}

func New(querier sources.Querier, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		querier: querier,
		logger:  logger,
	}
}

// Aggregate returns once every source has answered or failed. Failed
// sources are logged and left out. The merged order follows completion
// order.
func (a *Aggregator) Aggregate(ctx context.Context, phrase string, srcs []models.Source) []models.Article {
	allArticles := []models.Article{}
	if len(srcs) == 0 {
		return allArticles
	}

	pred := match.Build(phrase)

	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, source := range srcs {
		wg.Add(1)
		go func(src models.Source) {
			defer wg.Done()

			articles, err := a.querier.Query(ctx, pred, src)
			if err != nil {
				a.logger.Warn("source query failed",
					"source", src.ID,
					"name", src.Name,
					"error", err)
				return
			}

			mu.Lock()
			allArticles = append(allArticles, articles...)
			mu.Unlock()

			a.logger.Debug("source query done", "source", src.ID, "matched", len(articles))
		}(source)
	}

	wg.Wait()

	return allArticles
}
