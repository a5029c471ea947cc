// Package trending pulls what is hot right now across front pages, without
// a topic filter.
package trending

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/TobiSchelling/pulseboard/internal/cache"
	"github.com/TobiSchelling/pulseboard/internal/collect"
	"github.com/TobiSchelling/pulseboard/internal/config"
	"github.com/TobiSchelling/pulseboard/internal/fetch"
	"github.com/TobiSchelling/pulseboard/internal/model"
)

const cacheKey = "trending"

// Topic is one trending headline.
type Topic struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	Score  int    `json:"score"`
	URL    string `json:"url"`
}

// Feed is one front-page source.
type Feed struct {
	Name  string
	Limit int
	Fetch func(ctx context.Context, limit int) ([]Topic, error)
}

// Service merges feeds in order and caches the combined list.
type Service struct {
	feeds []Feed
	cache *cache.Cache[[]Topic]
}

// NewService creates a trending service over feeds.
func NewService(ttl time.Duration, feeds ...Feed) *Service {
	return &Service{feeds: feeds, cache: cache.New[[]Topic](ttl)}
}

// FromConfig builds the Hacker News, Lobsters and news front-page feeds.
func FromConfig(cfg *config.Config, client *fetch.Client) *Service {
	hn := collect.NewHackerNews(client)
	lobsters := collect.NewLobsters(client)
	news := collect.NewNews(client, cfg.Sources.News.Language, cfg.Sources.News.Region)

	return NewService(cfg.Cache.TrendingTTL,
		Feed{Name: "hn", Limit: 10, Fetch: discussions(hn.FrontPage)},
		Feed{Name: "lobsters", Limit: 8, Fetch: discussions(lobsters.Hottest)},
		Feed{Name: model.SourceNews, Limit: 10, Fetch: headlines(news.TopStories)},
	)
}

// Topics returns the merged front pages. A failing feed contributes nothing.
func (s *Service) Topics(ctx context.Context) ([]Topic, error) {
	topics, _, err := s.cache.GetOrLoad(ctx, cacheKey, s.load)
	return topics, err
}

func (s *Service) load(ctx context.Context) ([]Topic, error) {
	batches := make([][]Topic, len(s.feeds))

	var g errgroup.Group
	for i, f := range s.feeds {
		g.Go(func() error {
			items, err := f.Fetch(ctx, f.Limit)
			if err != nil {
				log.Warn("Trending feed failed", "feed", f.Name, "err", err)
				return nil
			}
			if len(items) > f.Limit {
				items = items[:f.Limit]
			}
			batches[i] = items
			return nil
		})
	}
	_ = g.Wait()

	topics := []Topic{}
	for _, b := range batches {
		topics = append(topics, b...)
	}
	return topics, nil
}

func discussions(fn func(context.Context, int) ([]model.Discussion, error)) func(context.Context, int) ([]Topic, error) {
	return func(ctx context.Context, limit int) ([]Topic, error) {
		ds, err := fn(ctx, limit)
		if err != nil {
			return nil, err
		}
		out := make([]Topic, len(ds))
		for i, d := range ds {
			out[i] = Topic{Title: d.Title, Source: string(d.Source), Score: d.Score, URL: d.URL}
		}
		return out, nil
	}
}

func headlines(fn func(context.Context, int) ([]model.NewsItem, error)) func(context.Context, int) ([]Topic, error) {
	return func(ctx context.Context, limit int) ([]Topic, error) {
		items, err := fn(ctx, limit)
		if err != nil {
			return nil, err
		}
		out := make([]Topic, len(items))
		for i, n := range items {
			out[i] = Topic{Title: n.Title, Source: n.Source, URL: n.URL}
		}
		return out, nil
	}
}
