package collect

import (
	"context"
	"net/http"
	"strings"
	"testing"
)

const mirrorFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
 <title>search</title>
 <item>
  <title><![CDATA[Shipping a new Go release today]]></title>
  <dc:creator>@gopherco</dc:creator>
  <link>http://MIRROR/gopherco/status/111#m</link>
  <pubDate>Mon, 10 Mar 2025 11:00:00 GMT</pubDate>
 </item>
 <item>
  <title>no creator here</title>
  <link>http://MIRROR/someone/status/222#m</link>
  <pubDate>Mon, 10 Mar 2025 09:00:00 GMT</pubDate>
 </item>
</channel>
</rss>`

func TestMicroblogFirstMirrorWithItemsWins(t *testing.T) {
	dead := newTestServer(t, nil)
	empty := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"/search/rss": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<?xml version="1.0"?><rss version="2.0"><channel><title>x</title></channel></rss>`))
		},
	})
	var hits int
	good := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"/search/rss": func(w http.ResponseWriter, r *http.Request) {
			hits++
			if r.URL.Query().Get("f") != "tweets" {
				t.Errorf("f = %q", r.URL.Query().Get("f"))
			}
			_, _ = w.Write([]byte(mirrorFeed))
		},
	})
	unused := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"/search/rss": func(w http.ResponseWriter, r *http.Request) {
			t.Error("later mirror queried after a mirror returned items")
		},
	})

	m := NewMicroblog(testClient(), []string{dead.URL, empty.URL + "/", good.URL, unused.URL})
	m.Now = fixedNow

	got := m.Fetch(context.Background(), "golang")
	if len(got) != 2 || hits != 1 {
		t.Fatalf("got %d posts from %d hits", len(got), hits)
	}
	if got[0].Title != "Shipping a new Go release today" {
		t.Errorf("title = %q", got[0].Title)
	}
	if got[0].Author != "gopherco" {
		t.Errorf("author = %q", got[0].Author)
	}
	if got[0].URL != "https://x.com/gopherco/status/111" {
		t.Errorf("url = %q", got[0].URL)
	}
	if got[1].Author != "someone" {
		t.Errorf("author from link = %q", got[1].Author)
	}
	if got[0].TimeAgo != "1 hour ago" {
		t.Errorf("timeAgo = %q", got[0].TimeAgo)
	}
}

func TestMicroblogTruncatesTitles(t *testing.T) {
	long := strings.Repeat("é", 400)
	feed := strings.Replace(mirrorFeed, "Shipping a new Go release today", long, 1)
	srv := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"/search/rss": func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(feed)) },
	})
	m := NewMicroblog(testClient(), []string{srv.URL})
	m.Now = fixedNow

	got := m.Fetch(context.Background(), "golang")
	if len(got) == 0 {
		t.Fatal("no posts")
	}
	if n := len([]rune(got[0].Title)); n != microblogTitleMax {
		t.Errorf("title has %d runes, want %d", n, microblogTitleMax)
	}
}

func TestMicroblogNoMirrors(t *testing.T) {
	m := NewMicroblog(testClient(), nil)
	if got := m.Fetch(context.Background(), "golang"); len(got) != 0 {
		t.Errorf("got %d posts", len(got))
	}
}
