package aggregator

import "github.com/ObiAU/newsfanout/internal/models"

// Policy decides which candidates survive into the result set.
type Policy struct {
	// Priority lists source ids, highest priority first.
	Priority []string
	// Cap is the maximum number of articles returned.
	Cap int
	// IncludeUnranked lets sources missing from Priority fill the slots
	// left after the priority walk, in candidate order. When false those
	// sources are dropped whenever the candidates exceed Cap.
	IncludeUnranked bool
}

// Reduce caps articles to limit, taking sources in priority order. Articles
// from sources absent from priority are never picked once the cap applies.
func Reduce(articles []models.Article, priority []string, limit int) []models.Article {
	return Policy{Priority: priority, Cap: limit}.Apply(articles)
}

func (p Policy) Apply(articles []models.Article) []models.Article {
	if p.Cap <= 0 {
		return []models.Article{}
	}
	if len(articles) <= p.Cap {
		return articles
	}

	bySource := make(map[string][]models.Article)
	for _, article := range articles {
		bySource[article.SourceID] = append(bySource[article.SourceID], article)
	}

	result := make([]models.Article, 0, p.Cap)
	ranked := make(map[string]bool, len(p.Priority))
	for _, id := range p.Priority {
		if ranked[id] {
			continue
		}
		ranked[id] = true
		for _, article := range bySource[id] {
			result = append(result, article)
			if len(result) == p.Cap {
				return result
			}
		}
	}

	if !p.IncludeUnranked {
		return result
	}

	for _, article := range articles {
		if ranked[article.SourceID] {
			continue
		}
		result = append(result, article)
		if len(result) == p.Cap {
			break
		}
	}
	return result
}

// Rank returns the 1-based priority of a source id, or 0 when it is not
// listed.
func (p Policy) Rank(id string) int {
	for i, pid := range p.Priority {
		if pid == id {
			return i + 1
		}
	}
	return 0
}
