package sources

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/ObiAU/newsfanout/internal/match"
	"github.com/ObiAU/newsfanout/internal/models"
)

// RSSClient queries RSS and Atom feeds addressed by Source.URL.
type RSSClient struct {
	parser *gofeed.Parser
}

func NewRSSClient(timeout time.Duration) *RSSClient {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	return &RSSClient{parser: parser}
}

func (c *RSSClient) Query(ctx context.Context, pred match.Predicate, src models.Source) ([]models.Article, error) {
	feed, err := c.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			return nil, &RemoteStatusError{Source: src.ID, Status: httpErr.Status}
		}
		return nil, &TransportError{Source: src.ID, Err: err}
	}

	articles := make([]models.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || !pred.Any(item.Title, item.Description) {
			continue
		}

		var ts float64
		if item.PublishedParsed != nil {
			ts = models.EpochSeconds(*item.PublishedParsed)
		} else if item.UpdatedParsed != nil {
			ts = models.EpochSeconds(*item.UpdatedParsed)
		}

		articles = append(articles, models.Article{
			Title:       item.Title,
			Description: item.Description,
			Timestamp:   ts,
			Source:      src.Name,
			SourceID:    src.ID,
			URL:         item.Link,
			MediaURL:    mediaURL(item),
		})
	}

	return articles, nil
}

func mediaURL(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}
