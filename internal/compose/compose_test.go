package compose

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/TobiSchelling/pulseboard/internal/model"
)

func sampleResult() *model.AnalysisResult {
	r := &model.AnalysisResult{
		Topic:      "Solana",
		Timestamp:  time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		PulseScore: 72,
		Pulse:      model.PulseBreakdown{Freshness: 26, Volume: 19.5, Engagement: 11.2, Diversity: 15},
		Summary:    "Activity around Solana is surging.",
		Sentiment:  model.Bullish,
		KeyVoices: []model.KeyVoice{
			{Name: "alice_dev", Platform: model.PlatformReddit, Quote: "Solana validators upgrade", Stance: model.Bullish},
		},
		Controversies: []model.Controversy{{Topic: "Reddit vs Hacker News", Bull: "Reddit leads", Bear: "HN shows skepticism"}},
		Predictions:   []model.Prediction{{Prediction: "Continued surge.", Confidence: "high", Reasoning: "Six posts in two hours."}},
		News:          []model.NewsItem{{Title: "Solana climbs", URL: "https://news.example/a", Source: "Reuters"}},
		Keywords:      []model.Keyword{{Word: "validators", Count: 3, Relevance: 1}},
		Sources:       map[string]int{"reddit": 12, "hn": 3, "news": 1},
	}
	for i := range 12 {
		r.Discussions = append(r.Discussions, model.Discussion{
			Title: fmt.Sprintf("Thread %d [pinned]", i), URL: fmt.Sprintf("https://reddit.com/%d", i),
			Score: 100 - i, Comments: i, Source: model.PlatformReddit, TimeAgo: "1 hour ago",
		})
	}
	return r
}

func TestMarkdown(t *testing.T) {
	out := Markdown(sampleResult())

	for _, want := range []string{
		"# PulseBoard Report: Solana",
		"Sentiment **BULLISH** · Pulse **72/100** · 16 items (hn 3, news 1, reddit 12)",
		"## Summary\n\nActivity around Solana is surging.",
		`- \[REDDIT\] [Thread 0 \[pinned\]](https://reddit.com/0) (↑100, 0 comments) · 1 hour ago`,
		"- [Solana climbs](https://news.example/a) · Reuters",
		`- **alice\_dev** (Reddit, bullish): "Solana validators upgrade"`,
		"  - Bear: HN shows skepticism",
		`- \[HIGH\] Continued surge. Six posts in two hours.`,
		"validators (3)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n%s", want, out)
		}
	}

	if strings.Contains(out, "Thread 10") {
		t.Error("report should list at most 10 discussions")
	}
}

func TestMarkdownOmitsEmptySections(t *testing.T) {
	out := Markdown(&model.AnalysisResult{Topic: "quiet", Summary: "Nothing found.", Sentiment: model.Neutral})
	for _, section := range []string{"## Top Discussions", "## News", "## Key Voices", "## Controversies", "## Keywords"} {
		if strings.Contains(out, section) {
			t.Errorf("unexpected section %s", section)
		}
	}
}

func TestHTML(t *testing.T) {
	html := string(HTML(Markdown(sampleResult())))
	for _, want := range []string{
		"<h1>PulseBoard Report: Solana</h1>",
		"<h2>Summary</h2>",
		`<a href="https://news.example/a">Solana climbs</a>`,
		"<strong>BULLISH</strong>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q", want)
		}
	}
}

func TestHTMLEscapesRawMarkup(t *testing.T) {
	r := sampleResult()
	r.Summary = "<script>alert(1)</script>"
	html := string(HTML(Markdown(r)))
	if strings.Contains(html, "<script>") {
		t.Error("raw script tag rendered")
	}
}

func TestMarkdownEscapesLinkDestinations(t *testing.T) {
	r := sampleResult()
	r.News = []model.NewsItem{{Title: "Go turns 15", URL: "https://en.wikipedia.org/wiki/Go_(programming language)", Source: "Wiki"}}

	out := Markdown(r)
	if !strings.Contains(out, "- [Go turns 15](https://en.wikipedia.org/wiki/Go_%28programming%20language%29) · Wiki") {
		t.Errorf("link destination not escaped:\n%s", out)
	}

	html := string(HTML(out))
	want := `<a href="https://en.wikipedia.org/wiki/Go_%28programming%20language%29">Go turns 15</a>`
	if !strings.Contains(html, want) {
		t.Errorf("html missing %q", want)
	}
}
