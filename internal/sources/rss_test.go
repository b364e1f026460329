package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ObiAU/newsfanout/internal/match"
	"github.com/ObiAU/newsfanout/internal/models"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Example Wire</title>
  <item>
    <title>Election night live</title>
    <link>https://wire.example/1</link>
    <description>Updates as results come in</description>
    <pubDate>Sun, 13 Sep 2020 12:26:40 GMT</pubDate>
    <enclosure url="https://wire.example/1.png" type="image/png" length="10"/>
  </item>
  <item>
    <title>Weather today</title>
    <link>https://wire.example/2</link>
    <description>Sunny</description>
  </item>
</channel>
</rss>`

func TestRSSQuery_FiltersItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(testFeed))
	}))
	defer srv.Close()

	src := models.Source{ID: "wire", Name: "Example Wire", Kind: models.KindRSS, URL: srv.URL}
	articles, err := NewRSSClient(5*time.Second).Query(context.Background(), match.Build("election"), src)

	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Election night live", articles[0].Title)
	assert.Equal(t, "wire", articles[0].SourceID)
	assert.Equal(t, "Example Wire", articles[0].Source)
	assert.Equal(t, "https://wire.example/1", articles[0].URL)
	assert.Equal(t, "https://wire.example/1.png", articles[0].MediaURL)
	assert.Equal(t, 1_600_000_000.0, articles[0].Timestamp)
}

func TestRSSQuery_HTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	src := models.Source{ID: "wire", Kind: models.KindRSS, URL: srv.URL}
	_, err := NewRSSClient(time.Second).Query(context.Background(), match.Build("election"), src)

	var statusErr *RemoteStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, "wire", statusErr.Source)
}

func TestRSSQuery_NotAFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("plain text"))
	}))
	defer srv.Close()

	src := models.Source{ID: "wire", Kind: models.KindRSS, URL: srv.URL}
	_, err := NewRSSClient(time.Second).Query(context.Background(), match.Build("election"), src)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
}
