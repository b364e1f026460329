package aggregator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ObiAU/newsfanout/internal/models"
	"github.com/ObiAU/newsfanout/internal/sources"
)

func TestReduce_IdentityUnderCap(t *testing.T) {
	articles := []models.Article{article("z", "1"), article("a", "2"), article("z", "3")}

	got := Reduce(articles, []string{"a"}, 3)

	assert.Equal(t, articles, got)
}

func TestReduce_ZeroCap(t *testing.T) {
	got := Reduce([]models.Article{article("a", "1")}, []string{"a"}, 0)

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestReduce_NegativeCap(t *testing.T) {
	assert.Empty(t, Reduce([]models.Article{article("a", "1")}, []string{"a"}, -1))
}

func TestReduce_PriorityOrder(t *testing.T) {
	articles := []models.Article{
		article("a", "a1"),
		article("c", "c1"),
		article("b", "b1"),
		article("a", "a2"),
		article("b", "b2"),
	}

	got := Reduce(articles, []string{"b", "a", "c"}, 4)

	titles := make([]string, 0, len(got))
	for _, a := range got {
		titles = append(titles, a.Title)
	}
	assert.Equal(t, []string{"b1", "b2", "a1", "a2"}, titles)
}

func TestReduce_TruncatesMidSource(t *testing.T) {
	articles := []models.Article{
		article("a", "a1"), article("a", "a2"), article("a", "a3"), article("b", "b1"),
	}

	got := Reduce(articles, []string{"a", "b"}, 2)

	require.Len(t, got, 2)
	assert.Equal(t, "a1", got[0].Title)
	assert.Equal(t, "a2", got[1].Title)
}

func TestReduce_DropsUnrankedSources(t *testing.T) {
	articles := []models.Article{
		article("x", "x1"), article("a", "a1"), article("x", "x2"), article("y", "y1"),
	}

	got := Reduce(articles, []string{"a"}, 3)

	require.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].Title)
}

func TestReduce_NeverExceedsCap(t *testing.T) {
	var articles []models.Article
	for _, id := range []string{"a", "b", "c", "a", "b", "c", "a"} {
		articles = append(articles, article(id, id))
	}
	for limit := 0; limit <= len(articles)+1; limit++ {
		got := Reduce(articles, []string{"c", "a", "b"}, limit)
		assert.LessOrEqual(t, len(got), limit)
		if limit <= len(articles) {
			assert.Len(t, got, limit)
		}
	}
}

func TestReduce_DuplicatePriorityIgnored(t *testing.T) {
	articles := []models.Article{article("a", "a1"), article("b", "b1"), article("b", "b2")}

	got := Reduce(articles, []string{"a", "a", "b"}, 2)

	require.Len(t, got, 2)
	assert.Equal(t, "a1", got[0].Title)
	assert.Equal(t, "b1", got[1].Title)
}

func TestPolicy_IncludeUnranked(t *testing.T) {
	articles := []models.Article{
		article("x", "x1"), article("a", "a1"), article("y", "y1"), article("x", "x2"),
	}
	policy := Policy{Priority: []string{"a"}, Cap: 3, IncludeUnranked: true}

	got := policy.Apply(articles)

	titles := make([]string, 0, len(got))
	for _, a := range got {
		titles = append(titles, a.Title)
	}
	assert.Equal(t, []string{"a1", "x1", "y1"}, titles)
}

func TestPolicy_Rank(t *testing.T) {
	p := Policy{Priority: []string{"b", "a"}}

	assert.Equal(t, 1, p.Rank("b"))
	assert.Equal(t, 2, p.Rank("a"))
	assert.Equal(t, 0, p.Rank("c"))
}

func TestPipeline_PriorityScenario(t *testing.T) {
	// Given: A has two matches, B has one, C fails, D is not prioritized.
	srcs := append([]models.Source{}, abc...)
	srcs = append(srcs, models.Source{ID: "d", Name: "Source D"})
	q := &stubQuerier{
		articles: map[string][]models.Article{
			"a": {article("a", "Election a1"), article("a", "Election a2")},
			"b": {article("b", "Election b1")},
			"d": {article("d", "Election d1")},
		},
		errs: map[string]error{"c": &sources.TransportError{Source: "c", Err: errors.New("timeout")}},
	}

	// When: aggregating and reducing with cap 2 and priority [B, A, C]
	candidates := New(q, quietLogger()).Aggregate(context.Background(), "election", srcs)
	got := Reduce(candidates, []string{"b", "a", "c"}, 2)

	// Then: one article from B followed by one from A
	require.Len(t, candidates, 4)
	require.Len(t, got, 2)
	assert.Equal(t, "Election b1", got[0].Title)
	assert.Equal(t, "Election a1", got[1].Title)
}
