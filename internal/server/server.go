package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ObiAU/newsfanout/internal/aggregator"
	"github.com/ObiAU/newsfanout/internal/ai"
	"github.com/ObiAU/newsfanout/internal/models"
)

const shutdownTimeout = 5 * time.Second

type Service interface {
	Search(ctx context.Context, phrase string) ([]models.Article, error)
	Sources() []models.Source
	Policy() aggregator.Policy
	Stats() map[string]interface{}
}

type Options struct {
	Port           string
	AllowedOrigins []string
	// Digester is optional; without it /news/digest answers 503.
	Digester ai.Digester
	// Webhook receives Telegram updates on POST /webhook when set.
	Webhook http.Handler
	Logger  *slog.Logger
}

type Server struct {
	service  Service
	digester ai.Digester
	logger   *slog.Logger
	engine   *gin.Engine
	server   *http.Server
}

type NewsResponse struct {
	Phrase   string           `json:"phrase"`
	Count    int              `json:"count"`
	Articles []models.Article `json:"articles"`
}

type DigestResponse struct {
	Phrase   string           `json:"phrase"`
	Digest   string           `json:"digest"`
	Articles []models.Article `json:"articles"`
}

type SourceResponse struct {
	models.Source
	Rank int `json:"rank"`
}

func New(service Service, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		service:  service,
		digester: opts.Digester,
		logger:   logger,
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: opts.AllowedOrigins,
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type"},
		}))
	}

	r.GET("/health", s.healthHandler)
	r.GET("/stats", s.statsHandler)
	r.GET("/sources", s.sourcesHandler)
	r.GET("/news", s.newsHandler)
	r.GET("/news/digest", s.digestHandler)
	if opts.Webhook != nil {
		r.POST("/webhook", gin.WrapH(opts.Webhook))
	}

	s.engine = r
	s.server = &http.Server{
		Addr:              ":" + opts.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) statsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.Stats())
}

func (s *Server) sourcesHandler(c *gin.Context) {
	policy := s.service.Policy()
	srcs := s.service.Sources()

	res := make([]SourceResponse, 0, len(srcs))
	for _, src := range srcs {
		res = append(res, SourceResponse{Source: src, Rank: policy.Rank(src.ID)})
	}
	c.JSON(http.StatusOK, gin.H{"sources": res})
}

func (s *Server) newsHandler(c *gin.Context) {
	phrase, ok := s.phrase(c)
	if !ok {
		return
	}

	articles, ok := s.search(c, phrase)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, NewsResponse{
		Phrase:   phrase,
		Count:    len(articles),
		Articles: articles,
	})
}

func (s *Server) digestHandler(c *gin.Context) {
	if s.digester == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Digests are not enabled"})
		return
	}

	phrase, ok := s.phrase(c)
	if !ok {
		return
	}

	articles, ok := s.search(c, phrase)
	if !ok {
		return
	}

	digest, err := s.digester.Digest(c.Request.Context(), phrase, articles)
	if err != nil {
		s.logger.Error("error writing digest", "phrase", phrase, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Digest unavailable"})
		return
	}

	c.JSON(http.StatusOK, DigestResponse{
		Phrase:   phrase,
		Digest:   digest,
		Articles: articles,
	})
}

func (s *Server) phrase(c *gin.Context) (string, bool) {
	phrase := strings.TrimSpace(c.Query("q"))
	if phrase == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing search phrase"})
		return "", false
	}
	return phrase, true
}

func (s *Server) search(c *gin.Context, phrase string) ([]models.Article, bool) {
	articles, err := s.service.Search(c.Request.Context(), phrase)
	if err != nil {
		if errors.Is(err, aggregator.ErrEmptyPhrase) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing search phrase"})
			return nil, false
		}
		s.logger.Error("error searching news", "phrase", phrase, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return nil, false
	}
	if articles == nil {
		articles = []models.Article{}
	}
	return articles, true
}
