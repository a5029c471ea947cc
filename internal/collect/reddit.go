package collect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/tidwall/gjson"

	"github.com/TobiSchelling/pulseboard/internal/fetch"
	"github.com/TobiSchelling/pulseboard/internal/model"
)

const (
	redditBaseURL = "https://www.reddit.com"
	redditLimit   = 25
	redditEnough  = 10
)

var errBlocked = errors.New("response is not a JSON listing")

// Reddit searches Reddit through its JSON listing, falling back to the Atom
// search feed only when the JSON endpoints yield nothing.
type Reddit struct {
	client  *fetch.Client
	BaseURL string
	Now     func() time.Time
}

// NewReddit creates a new Reddit adapter.
func NewReddit(client *fetch.Client) *Reddit {
	return &Reddit{client: client, BaseURL: redditBaseURL, Now: time.Now}
}

func (r *Reddit) Platform() model.Platform { return model.PlatformReddit }

// Fetch returns deduplicated posts matching topic. Failures yield an empty slice.
func (r *Reddit) Fetch(ctx context.Context, topic string) []model.Discussion {
	chain := Chain[model.Discussion]{
		Source: "reddit",
		Strategies: []Strategy[model.Discussion]{
			{Name: "json-new", Fetch: r.searchJSON("new", "day")},
			{Name: "json-relevance", Fetch: r.searchJSON("relevance", "week")},
			{Name: "atom", Fetch: r.searchAtom, Fallback: true},
		},
		Key:    func(d model.Discussion) string { return d.ID },
		Enough: redditEnough,
	}
	return chain.Run(ctx, topic)
}

func (r *Reddit) searchJSON(sort, window string) func(context.Context, string) ([]model.Discussion, error) {
	return func(ctx context.Context, topic string) ([]model.Discussion, error) {
		params := url.Values{
			"q":     {topic},
			"sort":  {sort},
			"t":     {window},
			"limit": {fmt.Sprint(redditLimit)},
		}
		body, err := r.client.Get(ctx, r.BaseURL+"/search.json?"+params.Encode(), http.Header{
			"Accept": {"application/json"},
		})
		if err != nil {
			return nil, err
		}
		return parseRedditListing(body, r.Now())
	}
}

func parseRedditListing(body []byte, now time.Time) ([]model.Discussion, error) {
	if !bytes.HasPrefix(bytes.TrimSpace(body), []byte("{")) || !gjson.ValidBytes(body) {
		return nil, errBlocked
	}

	var out []model.Discussion
	gjson.GetBytes(body, "data.children.#.data").ForEach(func(_, post gjson.Result) bool {
		id := post.Get("name").String()
		if id == "" {
			id = "t3_" + post.Get("id").String()
		}
		d := model.Discussion{
			ID:        id,
			Title:     cleanText(post.Get("title").String()),
			URL:       "https://reddit.com" + post.Get("permalink").String(),
			Score:     int(post.Get("score").Int()),
			Comments:  int(post.Get("num_comments").Int()),
			Author:    orUnknown(post.Get("author").String()),
			Source:    model.PlatformReddit,
			Timestamp: model.ResolveUnix(post.Get("created_utc").Float(), now),
			Community: post.Get("subreddit").String(),
		}
		d.Stamp(now)
		out = append(out, d)
		return true
	})
	return out, nil
}

func (r *Reddit) searchAtom(ctx context.Context, topic string) ([]model.Discussion, error) {
	params := url.Values{
		"q":    {topic},
		"sort": {"new"},
		"t":    {"week"},
	}
	body, err := r.client.Get(ctx, r.BaseURL+"/search.xml?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parsing atom feed: %w", err)
	}

	now := r.Now()
	var out []model.Discussion
	for _, item := range feed.Items {
		if len(out) >= redditLimit {
			break
		}
		d := model.Discussion{
			ID:     item.GUID,
			Title:  cleanText(item.Title),
			URL:    item.Link,
			Source: model.PlatformReddit,
		}
		if d.ID == "" {
			d.ID = item.Link
		}

		var author string
		if len(item.Authors) > 0 {
			author = strings.TrimPrefix(item.Authors[0].Name, "/u/")
		}
		d.Author = orUnknown(author)

		switch {
		case item.UpdatedParsed != nil:
			d.Timestamp = *item.UpdatedParsed
		case item.PublishedParsed != nil:
			d.Timestamp = *item.PublishedParsed
		default:
			d.Timestamp = model.ResolveTime(item.Updated, now)
		}
		if len(item.Categories) > 0 {
			d.Community = strings.TrimPrefix(item.Categories[0], "r/")
		}
		d.Stamp(now)
		out = append(out, d)
	}
	return out, nil
}
