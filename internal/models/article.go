package models

import "time"

const (
	KindNewsAPI = "newsapi"
	KindRSS     = "rss"
)

// Source is a configured news origin. ID addresses the remote query and is
// what the priority list refers to.
type Source struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
}

type Article struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Timestamp   float64 `json:"timestamp"`
	Source      string  `json:"source"`
	SourceID    string  `json:"sourceId"`
	URL         string  `json:"url"`
	MediaURL    string  `json:"mediaUrl,omitempty"`
}

// EpochSeconds converts t to seconds since the epoch, keeping the
// millisecond fraction.
func EpochSeconds(t time.Time) float64 {
	return float64(t.UnixMilli()) / 1000
}

// PublishedAt is the inverse of EpochSeconds, for display.
func (a Article) PublishedAt() time.Time {
	return time.UnixMilli(int64(a.Timestamp * 1000)).UTC()
}
