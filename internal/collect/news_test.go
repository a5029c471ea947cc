package collect

import (
	"context"
	"net/http"
	"testing"

	"github.com/TobiSchelling/pulseboard/internal/model"
)

const newsFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
 <title>Google News</title>
 <item>
  <title>Go team announces release - The Register</title>
  <link>https://news.example/go-release</link>
  <pubDate>Mon, 10 Mar 2025 11:00:00 GMT</pubDate>
  <source url="https://theregister.com">The Register</source>
 </item>
 <item>
  <title>Unsourced &amp; undated</title>
  <link>https://news.example/other</link>
 </item>
</channel>
</rss>`

func TestNewsSearch(t *testing.T) {
	var query map[string][]string
	srv := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"/rss/search": func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.Query()
			_, _ = w.Write([]byte(newsFeed))
		},
	})
	n := NewNews(testClient(), "en-US", "US")
	n.BaseURL = srv.URL
	n.Now = fixedNow

	got := n.Fetch(context.Background(), "golang")
	if len(got) != 2 {
		t.Fatalf("got %d items, want 2", len(got))
	}
	if got[0].Source != "The Register" || got[0].Freshness != model.Live {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Source != "News" || !got[1].Timestamp.Equal(testNow) {
		t.Errorf("second = %+v", got[1])
	}
	if got[1].Title != "Unsourced & undated" {
		t.Errorf("title = %q", got[1].Title)
	}
	if query["q"][0] != "golang" || query["ceid"][0] != "US:en" || query["hl"][0] != "en-US" {
		t.Errorf("query = %v", query)
	}
}

func TestNewsTopStories(t *testing.T) {
	srv := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"/rss": func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(newsFeed)) },
	})
	n := NewNews(testClient(), "", "")
	n.BaseURL = srv.URL
	n.Now = fixedNow

	got, err := n.TopStories(context.Background(), 1)
	if err != nil {
		t.Fatalf("TopStories: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d items, want 1", len(got))
	}
}
