package collect

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/TobiSchelling/pulseboard/internal/config"
	"github.com/TobiSchelling/pulseboard/internal/fetch"
	"github.com/TobiSchelling/pulseboard/internal/model"
)

// DiscussionSource searches one discussion platform.
// Fetch never fails; an unreachable platform yields an empty slice.
type DiscussionSource interface {
	Platform() model.Platform
	Fetch(ctx context.Context, topic string) []model.Discussion
}

// NewsSource searches a news feed.
type NewsSource interface {
	Fetch(ctx context.Context, topic string) []model.NewsItem
}

// Batch is the output of one discussion source.
type Batch struct {
	Platform    model.Platform
	Discussions []model.Discussion
}

// Result holds the raw output of a collection run.
type Result struct {
	Batches []Batch // in source registration order
	News    []model.NewsItem
}

// Collector fans a topic out to every configured source concurrently.
type Collector struct {
	discussions []DiscussionSource
	news        []NewsSource
}

// NewCollector creates a collector over the given sources.
func NewCollector(discussions []DiscussionSource, news ...NewsSource) *Collector {
	return &Collector{discussions: discussions, news: news}
}

// FromConfig builds a collector with the sources enabled in cfg.
func FromConfig(cfg *config.Config, client *fetch.Client) *Collector {
	var ds []DiscussionSource
	if cfg.Sources.Reddit.Enabled {
		ds = append(ds, NewReddit(client))
	}
	if cfg.Sources.HackerNews.Enabled {
		ds = append(ds, NewHackerNews(client))
	}
	if cfg.Sources.Lobsters.Enabled {
		ds = append(ds, NewLobsters(client))
	}
	if cfg.Sources.Microblog.Enabled && len(cfg.Sources.Microblog.Mirrors) > 0 {
		ds = append(ds, NewMicroblog(client, cfg.Sources.Microblog.Mirrors))
	}

	var ns []NewsSource
	if cfg.Sources.News.Enabled {
		ns = append(ns, NewNews(client, cfg.Sources.News.Language, cfg.Sources.News.Region))
	}
	return NewCollector(ds, ns...)
}

// Collect queries all sources for topic. Every source runs even when others
// fail or panic; a misbehaving source contributes nothing.
func (c *Collector) Collect(ctx context.Context, topic string) *Result {
	r := &Result{Batches: make([]Batch, len(c.discussions))}
	news := make([][]model.NewsItem, len(c.news))

	var g errgroup.Group
	for i, src := range c.discussions {
		r.Batches[i].Platform = src.Platform()
		g.Go(func() error {
			defer recoverSource(string(src.Platform()))
			r.Batches[i].Discussions = src.Fetch(ctx, topic)
			return nil
		})
	}
	for i, src := range c.news {
		g.Go(func() error {
			defer recoverSource(model.SourceNews)
			news[i] = src.Fetch(ctx, topic)
			return nil
		})
	}
	_ = g.Wait()

	for _, items := range news {
		r.News = append(r.News, items...)
	}

	total := 0
	for _, b := range r.Batches {
		total += len(b.Discussions)
	}
	log.Debug("Collection finished", "topic", topic, "discussions", total, "news", len(r.News))
	return r
}

func recoverSource(name string) {
	if p := recover(); p != nil {
		log.Error("Source panicked", "source", name, "panic", fmt.Sprint(p), "stack", string(debug.Stack()))
	}
}
