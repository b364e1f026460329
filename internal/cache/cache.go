package cache

import (
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/ObiAU/newsfanout/internal/match"
	"github.com/ObiAU/newsfanout/internal/models"
)

const DefaultSize = 256

// Cache keeps recent result sets keyed by normalized search phrase.
type Cache struct {
	results   *expirable.LRU[string, []models.Article]
	retention time.Duration
	hits      atomic.Int64
	misses    atomic.Int64
}

func New(size int, retention time.Duration) *Cache {
	if size <= 0 {
		size = DefaultSize
	}
	return &Cache{
		results:   expirable.NewLRU[string, []models.Article](size, nil, retention),
		retention: retention,
	}
}

func Key(phrase string) string {
	return match.Normalize(phrase)
}

func (c *Cache) Get(phrase string) ([]models.Article, bool) {
	articles, ok := c.results.Get(Key(phrase))
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return articles, ok
}

func (c *Cache) Put(phrase string, articles []models.Article) {
	stored := make([]models.Article, len(articles))
	copy(stored, articles)
	c.results.Add(Key(phrase), stored)
}

func (c *Cache) Close() {
	c.results.Purge()
}

func (c *Cache) Stats() map[string]interface{} {
	return map[string]interface{}{
		"entries":   c.results.Len(),
		"hits":      c.hits.Load(),
		"misses":    c.misses.Load(),
		"retention": c.retention.String(),
	}
}
