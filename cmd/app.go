package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ObiAU/newsfanout/internal/aggregator"
	"github.com/ObiAU/newsfanout/internal/ai"
	"github.com/ObiAU/newsfanout/internal/cache"
	"github.com/ObiAU/newsfanout/internal/config"
	"github.com/ObiAU/newsfanout/internal/logging"
	"github.com/ObiAU/newsfanout/internal/models"
	"github.com/ObiAU/newsfanout/internal/sources"
)

// app holds the wired components shared by the subcommands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	service  *aggregator.Service
	cache    *cache.Cache
	digester ai.Digester
}

// newApp loads and validates configuration before anything else is built,
// so a missing credential stops the process before any query.
func newApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.sourcesFile)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	logger := logging.New(cmd.ErrOrStderr(), level, cfg.LogFormat)
	slog.SetDefault(logger)

	for _, id := range cfg.UnknownPriority() {
		logger.Warn("priority list names an unknown source", "source", id)
	}

	router := sources.NewRouter().
		Register(models.KindNewsAPI, sources.NewNewsAPIClient(cfg.NewsAPIKey, cfg.NewsAPIBaseURL, cfg.PageSize, cfg.RequestTimeout)).
		Register(models.KindRSS, sources.NewRSSClient(cfg.RequestTimeout))

	var resultCache *cache.Cache
	if cfg.CacheRetention > 0 {
		resultCache = cache.New(cfg.CacheSize, cfg.CacheRetention)
	}

	policy := aggregator.Policy{
		Priority:        cfg.Priority,
		Cap:             cfg.MaxArticles,
		IncludeUnranked: cfg.IncludeUnranked,
	}
	service := aggregator.NewService(aggregator.New(router, logger), cfg.Sources, policy, resultCache, logger)

	var digester ai.Digester
	if cfg.OpenAIAPIKey != "" {
		digester = ai.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		service:  service,
		cache:    resultCache,
		digester: digester,
	}, nil
}

func (a *app) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
}
