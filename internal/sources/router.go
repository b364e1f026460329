package sources

import (
	"context"
	"fmt"

	"github.com/ObiAU/newsfanout/internal/match"
	"github.com/ObiAU/newsfanout/internal/models"
)

// Querier issues one query against one source.
type Querier interface {
	Query(ctx context.Context, pred match.Predicate, src models.Source) ([]models.Article, error)
}

// Router sends each source to the querier registered for its kind. An
// empty kind means newsapi.
type Router struct {
	byKind map[string]Querier
}

func NewRouter() *Router {
	return &Router{byKind: make(map[string]Querier)}
}

func (r *Router) Register(kind string, q Querier) *Router {
	r.byKind[kind] = q
	return r
}

func (r *Router) Query(ctx context.Context, pred match.Predicate, src models.Source) ([]models.Article, error) {
	kind := src.Kind
	if kind == "" {
		kind = models.KindNewsAPI
	}
	q, ok := r.byKind[kind]
	if !ok {
		return nil, &TransportError{Source: src.ID, Err: fmt.Errorf("no querier for kind %q", kind)}
	}
	return q.Query(ctx, pred, src)
}
