package collect

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed/rss"

	"github.com/TobiSchelling/pulseboard/internal/fetch"
	"github.com/TobiSchelling/pulseboard/internal/model"
)

const (
	microblogLimit    = 25
	microblogTitleMax = 280
	canonicalHost     = "x.com"
)

var statusAuthorRe = regexp.MustCompile(`/([^/]+)/status/`)

// Microblog searches X posts through Nitter-style RSS mirrors. Mirrors are
// tried in order and the first one returning items wins.
type Microblog struct {
	client  *fetch.Client
	Mirrors []string
	Now     func() time.Time
}

// NewMicroblog creates a new microblog adapter over the given mirrors.
func NewMicroblog(client *fetch.Client, mirrors []string) *Microblog {
	return &Microblog{client: client, Mirrors: mirrors, Now: time.Now}
}

func (m *Microblog) Platform() model.Platform { return model.PlatformX }

// Fetch returns posts from the first mirror that yields any.
func (m *Microblog) Fetch(ctx context.Context, topic string) []model.Discussion {
	chain := Chain[model.Discussion]{Source: "x"}
	for _, mirror := range m.Mirrors {
		mirror := strings.TrimRight(mirror, "/")
		chain.Strategies = append(chain.Strategies, Strategy[model.Discussion]{
			Name: mirror,
			Fetch: func(ctx context.Context, topic string) ([]model.Discussion, error) {
				return m.search(ctx, mirror, topic)
			},
		})
	}
	return chain.Run(ctx, topic)
}

func (m *Microblog) search(ctx context.Context, mirror, topic string) ([]model.Discussion, error) {
	params := url.Values{"f": {"tweets"}, "q": {topic}}
	body, err := m.client.Get(ctx, mirror+"/search/rss?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	feed, err := (&rss.Parser{}).Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing mirror feed: %w", err)
	}

	now := m.Now()
	var out []model.Discussion
	for _, item := range feed.Items {
		if len(out) >= microblogLimit {
			break
		}
		link := canonicalLink(item.Link)
		d := model.Discussion{
			ID:        link,
			Title:     truncateRunes(cleanText(item.Title), microblogTitleMax),
			URL:       link,
			Author:    orUnknown(postAuthor(item)),
			Source:    model.PlatformX,
			Timestamp: model.ResolveTime(item.PubDate, now),
		}
		if item.PubDateParsed != nil {
			d.Timestamp = *item.PubDateParsed
		}
		d.Stamp(now)
		out = append(out, d)
	}
	return out, nil
}

// canonicalLink points a mirror permalink at x.com and drops the fragment.
func canonicalLink(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return link
	}
	u.Scheme = "https"
	u.Host = canonicalHost
	u.Fragment = ""
	return u.String()
}

func postAuthor(item *rss.Item) string {
	var author string
	if item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0 {
		author = item.DublinCoreExt.Creator[0]
	} else if m := statusAuthorRe.FindStringSubmatch(item.Link); m != nil {
		author = m[1]
	}
	return strings.TrimPrefix(strings.TrimSpace(author), "@")
}
