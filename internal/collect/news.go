package collect

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed/rss"

	"github.com/TobiSchelling/pulseboard/internal/fetch"
	"github.com/TobiSchelling/pulseboard/internal/model"
)

const (
	newsBaseURL = "https://news.google.com"
	newsLimit   = 20
)

// News searches the Google News RSS feed.
type News struct {
	client   *fetch.Client
	BaseURL  string
	Language string // e.g. en-US
	Region   string // e.g. US
	Now      func() time.Time
}

// NewNews creates a new news adapter.
func NewNews(client *fetch.Client, language, region string) *News {
	if language == "" {
		language = "en-US"
	}
	if region == "" {
		region = "US"
	}
	return &News{client: client, BaseURL: newsBaseURL, Language: language, Region: region, Now: time.Now}
}

// Fetch returns up to 20 articles matching topic.
func (n *News) Fetch(ctx context.Context, topic string) []model.NewsItem {
	chain := Chain[model.NewsItem]{
		Source: "news",
		Strategies: []Strategy[model.NewsItem]{{
			Name: "search",
			Fetch: func(ctx context.Context, topic string) ([]model.NewsItem, error) {
				params := n.locale()
				params.Set("q", topic)
				return n.feed(ctx, "/rss/search?"+params.Encode(), newsLimit)
			},
		}},
	}
	return chain.Run(ctx, topic)
}

// TopStories returns the general top-stories feed.
func (n *News) TopStories(ctx context.Context, limit int) ([]model.NewsItem, error) {
	return n.feed(ctx, "/rss?"+n.locale().Encode(), limit)
}

func (n *News) locale() url.Values {
	lang := n.Language
	if i := len(lang); i > 2 && lang[2] == '-' {
		lang = lang[:2]
	}
	return url.Values{
		"hl":   {n.Language},
		"gl":   {n.Region},
		"ceid": {n.Region + ":" + lang},
	}
}

func (n *News) feed(ctx context.Context, path string, limit int) ([]model.NewsItem, error) {
	body, err := n.client.Get(ctx, n.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}

	feed, err := (&rss.Parser{}).Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing news feed: %w", err)
	}

	now := n.Now()
	var out []model.NewsItem
	for _, item := range feed.Items {
		if len(out) >= limit {
			break
		}
		outlet := "News"
		if item.Source != nil && item.Source.Title != "" {
			outlet = cleanText(item.Source.Title)
		}
		ni := model.NewsItem{
			Title:     cleanText(item.Title),
			URL:       item.Link,
			Source:    outlet,
			PubDate:   item.PubDate,
			Timestamp: model.ResolveTime(item.PubDate, now),
		}
		if item.PubDateParsed != nil {
			ni.Timestamp = *item.PubDateParsed
		}
		ni.Stamp(now)
		out = append(out, ni)
	}
	return out, nil
}
