package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/TobiSchelling/pulseboard/internal/cache"
	"github.com/TobiSchelling/pulseboard/internal/collect"
	"github.com/TobiSchelling/pulseboard/internal/config"
	"github.com/TobiSchelling/pulseboard/internal/fetch"
	"github.com/TobiSchelling/pulseboard/internal/keywords"
	"github.com/TobiSchelling/pulseboard/internal/llm"
	"github.com/TobiSchelling/pulseboard/internal/model"
	"github.com/TobiSchelling/pulseboard/internal/narrative"
	"github.com/TobiSchelling/pulseboard/internal/rank"
	"github.com/TobiSchelling/pulseboard/internal/synthesize"
	"github.com/TobiSchelling/pulseboard/internal/triage"
)

var (
	// ErrInvalidTopic is returned for a blank topic. No aggregation is attempted.
	ErrInvalidTopic = errors.New("topic is required")
	// ErrInternal wraps unexpected failures in the compute stage.
	ErrInternal = errors.New("analysis failed")
)

// Collector gathers raw items for a topic from every source.
type Collector interface {
	Collect(ctx context.Context, topic string) *collect.Result
}

// Refiner optionally rewrites the prose of a computed narrative.
type Refiner interface {
	Refine(ctx context.Context, f *narrative.Facts, n narrative.Narrative) (narrative.Narrative, error)
}

// StepResult holds the outcome of a single aggregation step.
type StepResult struct {
	Name    string
	Summary string
	Elapsed time.Duration
}

// Options tunes an aggregation.
type Options struct {
	MaxDiscussions int
	MaxNews        int
	Refiner        Refiner // nil keeps the deterministic narrative
	Now            func() time.Time
}

// Pipeline turns a topic into an AnalysisResult, fronted by a result cache.
type Pipeline struct {
	collector Collector
	cache     *cache.Cache[*model.AnalysisResult]
	opts      Options
}

// New creates a new pipeline. A nil cache disables caching.
func New(c Collector, rc *cache.Cache[*model.AnalysisResult], opts Options) *Pipeline {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MaxDiscussions <= 0 {
		opts.MaxDiscussions = 30
	}
	if opts.MaxNews <= 0 {
		opts.MaxNews = 15
	}
	return &Pipeline{collector: c, cache: rc, opts: opts}
}

// FromConfig wires the sources, cache and optional LLM refiner described by cfg.
func FromConfig(ctx context.Context, cfg *config.Config) *Pipeline {
	client := fetch.NewClient(fetch.Options{
		Timeout:           cfg.HTTP.Timeout,
		UserAgent:         cfg.HTTP.UserAgent,
		RequestsPerSecond: cfg.HTTP.RequestsPerSecond,
	})

	opts := Options{
		MaxDiscussions: cfg.Results.MaxDiscussions,
		MaxNews:        cfg.Results.MaxNews,
	}
	if provider := llm.CreateProvider(ctx, cfg.Summarization); provider != nil {
		opts.Refiner = synthesize.NewSynthesizer(provider, cfg.Summarization.MaxTokens, cfg.Summarization.Timeout)
	}

	rc := cache.New[*model.AnalysisResult](cfg.Cache.TTL,
		cache.WithCoalescing(cfg.Cache.Coalesce),
		cache.WithLoadTimeout(cfg.Cache.LoadTimeout),
	)
	return New(collect.FromConfig(cfg, client), rc, opts)
}

// Analyze returns the analysis for topic, from cache when a live entry exists.
func (p *Pipeline) Analyze(ctx context.Context, topic string) (*model.AnalysisResult, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, ErrInvalidTopic
	}
	if p.cache == nil {
		return p.Aggregate(ctx, topic)
	}

	res, hit, err := p.cache.GetOrLoad(ctx, topic, func(ctx context.Context) (*model.AnalysisResult, error) {
		return p.Aggregate(ctx, topic)
	})
	if hit {
		log.Debug("Cache hit", "topic", topic)
	}
	return res, err
}

// Aggregate runs a full uncached aggregation for topic. If ctx ends before
// the result is ready, its error is returned instead of a degraded result.
func (p *Pipeline) Aggregate(ctx context.Context, topic string) (*model.AnalysisResult, error) {
	submitted := topic
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrInvalidTopic
	}

	start := time.Now()
	var steps []StepResult
	step := func(name string, started time.Time, format string, args ...any) {
		steps = append(steps, StepResult{Name: name, Summary: fmt.Sprintf(format, args...), Elapsed: time.Since(started)})
	}

	t := time.Now()
	raw := p.collector.Collect(ctx, topic)
	step("collect", t, "%d sources, %d news", len(raw.Batches), len(raw.News))
	if err := ctx.Err(); err != nil {
		log.Warn("Analysis abandoned", "topic", topic, "err", err)
		return nil, err
	}

	res, err := p.compute(ctx, topic, raw, step)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		log.Warn("Analysis abandoned", "topic", topic, "err", err)
		return nil, err
	}
	res.Topic = submitted

	for _, s := range steps {
		log.Debug("Step finished", "step", s.Name, "summary", s.Summary, "elapsed", s.Elapsed)
	}
	log.Info("Analysis complete",
		"topic", topic,
		"discussions", len(res.Discussions),
		"news", len(res.News),
		"pulse", res.PulseScore,
		"refined", res.Refined,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return res, nil
}

// compute derives the result from raw items. A panic here fails the whole
// request with ErrInternal rather than returning a partial result.
func (p *Pipeline) compute(ctx context.Context, topic string, raw *collect.Result, step func(string, time.Time, string, ...any)) (res *model.AnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Analysis panicked", "topic", topic, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			res, err = nil, fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	now := p.opts.Now()
	sources := make(map[string]int)

	t := time.Now()
	batches := make([][]model.Discussion, 0, len(raw.Batches))
	for _, b := range raw.Batches {
		kept := triage.Filter(b.Discussions, topic, func(d model.Discussion) string { return d.Title })
		sources[string(b.Platform)] += len(kept)
		batches = append(batches, kept)
	}
	news := rank.SortNews(triage.Filter(raw.News, topic, func(n model.NewsItem) string { return n.Title }))
	sources[model.SourceNews] = len(news)
	step("filter", t, "%d discussions, %d news kept", sumLen(batches), len(news))

	t = time.Now()
	ranked := rank.Rank(rank.Merge(batches...), now)
	score, breakdown := rank.Pulse(ranked, news, now)
	step("rank", t, "pulse %d", score)

	t = time.Now()
	facts := narrative.NewFacts(topic, ranked, news, now)
	story := narrative.Build(facts)
	kws := keywords.Extract(facts.Titles(), topic)
	step("narrate", t, "sentiment %s, %d keywords", story.Sentiment, len(kws))

	refined := false
	if p.opts.Refiner != nil {
		t = time.Now()
		if r, err := p.opts.Refiner.Refine(ctx, facts, story); err != nil {
			log.Warn("Refinement failed, using computed narrative", "topic", topic, "err", err)
			step("refine", t, "fallback")
		} else {
			story, refined = r, true
			step("refine", t, "applied")
		}
	}

	return &model.AnalysisResult{
		Topic:         topic,
		Timestamp:     now,
		PulseScore:    score,
		Pulse:         breakdown,
		Summary:       story.Summary,
		Sentiment:     story.Sentiment,
		KeyVoices:     story.KeyVoices,
		Controversies: story.Controversies,
		Predictions:   story.Predictions,
		Discussions:   capped(ranked, p.opts.MaxDiscussions),
		News:          capped(news, p.opts.MaxNews),
		Keywords:      nonNil(kws),
		Timeline:      rank.Timeline(ranked, now),
		Sources:       sources,
		Refined:       refined,
	}, nil
}

func capped[T any](s []T, n int) []T {
	if len(s) > n {
		s = s[:n]
	}
	return nonNil(s)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func sumLen[T any](batches [][]T) int {
	n := 0
	for _, b := range batches {
		n += len(b)
	}
	return n
}
