package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/TobiSchelling/pulseboard/internal/fetch"
	"github.com/TobiSchelling/pulseboard/internal/model"
)

const (
	hnBaseURL = "https://hn.algolia.com/api/v1"
	hnEnough  = 20
)

type hnResponse struct {
	Hits []hnHit `json:"hits"`
}

type hnHit struct {
	ObjectID    string  `json:"objectID"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Points      int     `json:"points"`
	NumComments int     `json:"num_comments"`
	Author      string  `json:"author"`
	CreatedAtI  float64 `json:"created_at_i"`
	CreatedAt   string  `json:"created_at"`
}

// HackerNews queries the Algolia search API for recent and top stories.
type HackerNews struct {
	client  *fetch.Client
	BaseURL string
	Now     func() time.Time
}

// NewHackerNews creates a new Hacker News adapter.
func NewHackerNews(client *fetch.Client) *HackerNews {
	return &HackerNews{client: client, BaseURL: hnBaseURL, Now: time.Now}
}

func (h *HackerNews) Platform() model.Platform { return model.PlatformHN }

// Fetch combines the last day's stories with the week's top stories,
// deduplicated by story id.
func (h *HackerNews) Fetch(ctx context.Context, topic string) []model.Discussion {
	chain := Chain[model.Discussion]{
		Source: "hn",
		Strategies: []Strategy[model.Discussion]{
			{Name: "recent", Fetch: h.recent},
			{Name: "top", Fetch: h.top},
		},
		Key:    func(d model.Discussion) string { return d.ID },
		Enough: hnEnough,
	}
	return chain.Run(ctx, topic)
}

func (h *HackerNews) recent(ctx context.Context, topic string) ([]model.Discussion, error) {
	now := h.Now()
	params := url.Values{
		"query":          {topic},
		"tags":           {"story"},
		"hitsPerPage":    {"30"},
		"numericFilters": {fmt.Sprintf("created_at_i>%d", now.Add(-24*time.Hour).Unix())},
	}
	return h.search(ctx, "/search_by_date", params, now)
}

func (h *HackerNews) top(ctx context.Context, topic string) ([]model.Discussion, error) {
	now := h.Now()
	params := url.Values{
		"query":          {topic},
		"tags":           {"story"},
		"hitsPerPage":    {"20"},
		"numericFilters": {fmt.Sprintf("created_at_i>%d,points>5", now.Add(-7*24*time.Hour).Unix())},
	}
	return h.search(ctx, "/search", params, now)
}

// FrontPage returns the current Hacker News front page.
func (h *HackerNews) FrontPage(ctx context.Context, limit int) ([]model.Discussion, error) {
	params := url.Values{
		"tags":        {"front_page"},
		"hitsPerPage": {fmt.Sprint(limit)},
	}
	return h.search(ctx, "/search", params, h.Now())
}

func (h *HackerNews) search(ctx context.Context, path string, params url.Values, now time.Time) ([]model.Discussion, error) {
	body, err := h.client.Get(ctx, h.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var resp hnResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding algolia response: %w", err)
	}

	out := make([]model.Discussion, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		out = append(out, hit.toDiscussion(now))
	}
	return out, nil
}

func (hit hnHit) toDiscussion(now time.Time) model.Discussion {
	link := hit.URL
	if link == "" {
		link = "https://news.ycombinator.com/item?id=" + hit.ObjectID
	}

	ts := model.ResolveUnix(hit.CreatedAtI, now)
	if hit.CreatedAtI <= 0 {
		ts = model.ResolveTime(hit.CreatedAt, now)
	}

	d := model.Discussion{
		ID:        hit.ObjectID,
		Title:     cleanText(hit.Title),
		URL:       link,
		Score:     hit.Points,
		Comments:  hit.NumComments,
		Author:    orUnknown(hit.Author),
		Source:    model.PlatformHN,
		Timestamp: ts,
	}
	d.Stamp(now)
	return d
}
