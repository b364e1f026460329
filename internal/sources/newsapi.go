package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ObiAU/newsfanout/internal/match"
	"github.com/ObiAU/newsfanout/internal/models"
)

const DefaultNewsAPIBaseURL = "https://newsapi.org"

type NewsAPIClient struct {
	apiKey   string
	baseURL  string
	pageSize int
	client   *http.Client
}

type NewsAPIResponse struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Articles []NewsAPIArticle `json:"articles"`
}

// NewsAPIArticle fields are pointers because the upstream sends null for
// missing values.
type NewsAPIArticle struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	URL         string  `json:"url"`
	URLToImage  *string `json:"urlToImage"`
	PublishedAt string  `json:"publishedAt"`
}

func NewNewsAPIClient(apiKey, baseURL string, pageSize int, timeout time.Duration) *NewsAPIClient {
	if baseURL == "" {
		baseURL = DefaultNewsAPIBaseURL
	}
	return &NewsAPIClient{
		apiKey:   apiKey,
		baseURL:  strings.TrimRight(baseURL, "/"),
		pageSize: pageSize,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Query fetches the top headlines of src and keeps the ones whose title or
// description satisfies pred.
func (c *NewsAPIClient) Query(ctx context.Context, pred match.Predicate, src models.Source) ([]models.Article, error) {
	params := url.Values{}
	params.Set("sources", src.ID)
	if c.pageSize > 0 {
		params.Set("pageSize", strconv.Itoa(c.pageSize))
	}
	endpoint := c.baseURL + "/v2/top-headlines?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransportError{Source: src.ID, Err: err}
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Source: src.ID, Err: err}
	}
	defer resp.Body.Close()

	// Error responses carry the same envelope, so the body is decoded
	// before the HTTP status is looked at.
	var apiResp NewsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &RemoteStatusError{Source: src.ID, Status: resp.Status}
		}
		return nil, &TransportError{Source: src.ID, Err: fmt.Errorf("decode newsapi response: %w", err)}
	}

	if apiResp.Status != "ok" {
		return nil, &RemoteStatusError{
			Source:  src.ID,
			Status:  apiResp.Status,
			Code:    apiResp.Code,
			Message: apiResp.Message,
		}
	}

	articles := make([]models.Article, 0, len(apiResp.Articles))
	for _, apiArticle := range apiResp.Articles {
		title := deref(apiArticle.Title)
		description := deref(apiArticle.Description)
		if !pred.Any(title, description) {
			continue
		}

		articles = append(articles, models.Article{
			Title:       title,
			Description: description,
			Timestamp:   parseTimestamp(apiArticle.PublishedAt),
			Source:      src.Name,
			SourceID:    src.ID,
			URL:         apiArticle.URL,
			MediaURL:    deref(apiArticle.URLToImage),
		})
	}

	return articles, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// parseTimestamp returns 0 for dates it cannot read.
func parseTimestamp(publishedAt string) float64 {
	t, err := time.Parse(time.RFC3339Nano, publishedAt)
	if err != nil {
		return 0
	}
	return models.EpochSeconds(t)
}
