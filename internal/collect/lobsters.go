package collect

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/TobiSchelling/pulseboard/internal/fetch"
	"github.com/TobiSchelling/pulseboard/internal/model"
)

const (
	lobstersBaseURL = "https://lobste.rs"
	lobstersLimit   = 15
)

// Lobsters queries the Lobsters story search.
type Lobsters struct {
	client  *fetch.Client
	BaseURL string
	Now     func() time.Time
}

// NewLobsters creates a new Lobsters adapter.
func NewLobsters(client *fetch.Client) *Lobsters {
	return &Lobsters{client: client, BaseURL: lobstersBaseURL, Now: time.Now}
}

func (l *Lobsters) Platform() model.Platform { return model.PlatformLobsters }

// Fetch returns up to 15 newest stories matching topic.
func (l *Lobsters) Fetch(ctx context.Context, topic string) []model.Discussion {
	chain := Chain[model.Discussion]{
		Source:     "lobsters",
		Strategies: []Strategy[model.Discussion]{{Name: "search", Fetch: l.search}},
	}
	return chain.Run(ctx, topic)
}

func (l *Lobsters) search(ctx context.Context, topic string) ([]model.Discussion, error) {
	params := url.Values{
		"q":     {topic},
		"what":  {"stories"},
		"order": {"newest"},
	}
	return l.list(ctx, "/search.json?"+params.Encode(), lobstersLimit)
}

// Hottest returns the current Lobsters hottest list.
func (l *Lobsters) Hottest(ctx context.Context, limit int) ([]model.Discussion, error) {
	return l.list(ctx, "/hottest.json", limit)
}

func (l *Lobsters) list(ctx context.Context, path string, limit int) ([]model.Discussion, error) {
	body, err := l.client.Get(ctx, l.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("lobsters returned invalid JSON")
	}

	stories := gjson.ParseBytes(body)
	if !stories.IsArray() {
		return nil, fmt.Errorf("lobsters returned %s, want array", stories.Type)
	}

	now := l.Now()
	var out []model.Discussion
	stories.ForEach(func(_, s gjson.Result) bool {
		if len(out) >= limit {
			return false
		}
		out = append(out, lobstersStory(s, now))
		return true
	})
	return out, nil
}

func lobstersStory(s gjson.Result, now time.Time) model.Discussion {
	link := s.Get("url").String()
	if link == "" {
		link = s.Get("short_id_url").String()
	}

	// submitter_user is a bare username in newer responses and an object in older ones.
	submitter := s.Get("submitter_user")
	author := submitter.String()
	if submitter.IsObject() {
		author = submitter.Get("username").String()
	}

	d := model.Discussion{
		ID:        s.Get("short_id").String(),
		Title:     cleanText(s.Get("title").String()),
		URL:       link,
		Score:     int(s.Get("score").Int()),
		Comments:  int(s.Get("comment_count").Int()),
		Author:    orUnknown(author),
		Source:    model.PlatformLobsters,
		Timestamp: model.ResolveTime(s.Get("created_at").String(), now),
	}
	d.Stamp(now)
	return d
}
