package narrative

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/TobiSchelling/pulseboard/internal/model"
	"github.com/TobiSchelling/pulseboard/internal/rank"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func post(title, author string, p model.Platform, score, comments int, age time.Duration) model.Discussion {
	return model.Discussion{
		Title: title, Author: author, Source: p,
		Score: score, Comments: comments, Timestamp: now.Add(-age),
		TimeAgo: "recently",
	}
}

func factsFor(ds []model.Discussion, news []model.NewsItem) *Facts {
	return NewFacts("Ethereum", rank.Rank(ds, now), news, now)
}

func newsItems(n int) []model.NewsItem {
	out := make([]model.NewsItem, n)
	for i := range out {
		out[i] = model.NewsItem{Title: fmt.Sprintf("Report %d on markets", i), Source: "Wire"}
	}
	return out
}

func TestRuleApplyLimitAndOrder(t *testing.T) {
	var evaluated []string
	mk := func(name string, ok bool) Rule[string] {
		return Rule[string]{
			Name: name,
			When: func(*Facts) bool { evaluated = append(evaluated, name); return ok },
			Make: func(*Facts) string { return name },
		}
	}
	got := Apply(&Facts{}, []Rule[string]{mk("a", true), mk("b", false), mk("c", true), mk("d", true)}, 2)
	if strings.Join(got, ",") != "a,c" {
		t.Errorf("got %v", got)
	}
	if strings.Join(evaluated, ",") != "a,b,c" {
		t.Errorf("evaluated %v", evaluated)
	}
}

func TestLexiconBullish(t *testing.T) {
	m := Lexicon([]string{"X sees breakthrough surge", "X adoption booming"})
	if m.Label != model.Bullish {
		t.Errorf("label = %s, want bullish (%+v)", m.Label, m)
	}
	if m.Positive != 3 || m.Negative != 0 || m.Confidence != 1 {
		t.Errorf("mood = %+v", m)
	}
}

func TestLexiconBearishAndNeutral(t *testing.T) {
	if m := Lexicon([]string{"Exchange hacked, token crash", "Fraud lawsuit filed"}); m.Label != model.Bearish {
		t.Errorf("label = %s, want bearish", m.Label)
	}
	if m := Lexicon([]string{"Big win, big loss"}); m.Label != model.Neutral || m.Score != 0 {
		t.Errorf("mixed = %+v", m)
	}
	if m := Lexicon(nil); m.Label != model.Neutral || m.Confidence != 0 {
		t.Errorf("empty = %+v", m)
	}
}

func TestLexiconStripsPunctuation(t *testing.T) {
	m := Lexicon([]string{"\"Breakthrough!\" says CEO"})
	if m.Positive != 1 {
		t.Errorf("positive = %d, want 1", m.Positive)
	}
}

func TestSentimentVelocityFallback(t *testing.T) {
	var burst []model.Discussion
	for i := range 6 {
		burst = append(burst, post(fmt.Sprintf("thread %d", i), "a", model.PlatformReddit, 1, 0, time.Duration(i)*time.Minute))
	}
	if got := Sentiment(factsFor(burst, nil)); got != model.Bullish {
		t.Errorf("burst = %s, want bullish", got)
	}

	few := []model.Discussion{post("thread", "a", model.PlatformHN, 1, 0, 30*time.Hour)}
	if got := Sentiment(factsFor(few, nil)); got != model.Bearish {
		t.Errorf("few = %s, want bearish", got)
	}

	var middling []model.Discussion
	for i := range 4 {
		middling = append(middling, post(fmt.Sprintf("thread %d", i), "a", model.PlatformHN, 1, 0, 5*time.Hour))
	}
	if got := Sentiment(factsFor(middling, nil)); got != model.Neutral {
		t.Errorf("middling = %s, want neutral", got)
	}

	if got := Sentiment(factsFor(nil, newsItems(3))); got != model.Neutral {
		t.Errorf("news only = %s, want neutral", got)
	}
}

func TestSummarySurgeScenario(t *testing.T) {
	ds := []model.Discussion{
		post("Ethereum upgrade ships", "alice", model.PlatformReddit, 300, 120, 10*time.Minute),
		post("Ethereum gas fees drop", "bob", model.PlatformReddit, 80, 30, 20*time.Minute),
		post("Ethereum devs call", "carol", model.PlatformReddit, 20, 5, 30*time.Minute),
		post("Ethereum staking", "dave", model.PlatformReddit, 10, 2, 40*time.Minute),
		post("Ethereum on HN", "erin", model.PlatformHN, 50, 10, 24*time.Hour),
		post("Ethereum retro", "frank", model.PlatformHN, 40, 8, 25*time.Hour),
	}
	news := newsItems(8)
	news[0] = model.NewsItem{Title: "Ethereum hits new high", Source: "CoinDesk"}

	s := Summary(factsFor(ds, news))
	if !strings.HasPrefix(s, "Activity around Ethereum is surging: 4 of 6 discussions appeared in the last 2 hours.") {
		t.Errorf("summary = %q", s)
	}
	for _, want := range []string{
		`The hottest thread is "Ethereum upgrade ships" on Reddit with 420 points and comments combined.`,
		`Latest headline: "Ethereum hits new high" (CoinDesk).`,
		"Community engagement is moderate at 675 combined points and comments.",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q:\n%s", want, s)
		}
	}
}

func TestSummaryClauses(t *testing.T) {
	tests := []struct {
		name   string
		ds     []model.Discussion
		news   []model.NewsItem
		prefix string
	}{
		{"empty", nil, nil, "No recent discussion or news coverage found for Ethereum."},
		{"news only", nil, newsItems(1), "No community discussion of Ethereum found yet"},
		{"cooling", []model.Discussion{post("old", "a", model.PlatformHN, 1, 0, 30*time.Hour)}, nil, "Conversation about Ethereum is cooling: 1 posts"},
		{"quiet", []model.Discussion{post("older", "a", model.PlatformHN, 1, 0, 100*time.Hour)}, nil, "Discussion of Ethereum is quiet"},
		{"steady", []model.Discussion{
			post("a", "a", model.PlatformHN, 1, 0, 3*time.Hour),
			post("b", "b", model.PlatformHN, 1, 0, 4*time.Hour),
			post("c", "c", model.PlatformHN, 1, 0, 5*time.Hour),
		}, nil, "Discussion of Ethereum is steady, with 3 of 3 posts in the last 12 hours."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if s := Summary(factsFor(tt.ds, tt.news)); !strings.HasPrefix(s, tt.prefix) {
				t.Errorf("summary = %q, want prefix %q", s, tt.prefix)
			}
		})
	}
}

func TestSummaryStrongEngagement(t *testing.T) {
	ds := []model.Discussion{post("big", "a", model.PlatformHN, 1500, 500, 50*time.Hour)}
	if s := Summary(factsFor(ds, nil)); !strings.Contains(s, "engagement is strong at 2,000") {
		t.Errorf("summary = %q", s)
	}
}

func TestKeyVoices(t *testing.T) {
	ds := []model.Discussion{
		post("alice big", "alice", model.PlatformReddit, 500, 0, time.Hour),
		post("alice small", "alice", model.PlatformReddit, 5, 0, time.Hour),
		post("deleted", "[deleted]", model.PlatformReddit, 900, 0, time.Hour),
		post("anon", "unknown", model.PlatformX, 900, 0, time.Hour),
		post("bob", "bob", model.PlatformHN, 100, 0, time.Hour),
		post("carol", "carol", model.PlatformHN, 1, 0, time.Hour),
		post("dave", "dave", model.PlatformHN, 90, 0, time.Hour),
		post("erin", "erin", model.PlatformHN, 80, 0, time.Hour),
		post("frank", "frank", model.PlatformHN, 70, 0, time.Hour),
		post("gina", "gina", model.PlatformHN, 70, 0, time.Hour),
	}
	voices := KeyVoices(factsFor(ds, nil))

	if len(voices) != 5 {
		t.Fatalf("got %d voices, want 5", len(voices))
	}
	seen := make(map[string]bool)
	for _, v := range voices {
		if seen[v.Name] {
			t.Errorf("duplicate voice %s", v.Name)
		}
		seen[v.Name] = true
		if v.Name == "unknown" || v.Name == "[deleted]" {
			t.Errorf("anonymous author surfaced: %s", v.Name)
		}
	}
	want := []string{"alice", "bob", "dave", "erin", "frank"}
	for i, w := range want {
		if voices[i].Name != w {
			t.Errorf("voice[%d] = %s, want %s", i, voices[i].Name, w)
		}
	}
	// Mean score is 271.6 at equal age: alice at 500 stays neutral, frank at 70 falls below 0.3x.
	if voices[0].Quote != "alice big" || voices[0].Stance != model.Neutral {
		t.Errorf("alice = %+v", voices[0])
	}
	if voices[4].Stance != model.Bearish {
		t.Errorf("frank stance = %s, want bearish", voices[4].Stance)
	}
}

func TestKeyVoicesStance(t *testing.T) {
	ds := []model.Discussion{
		post("star", "star", model.PlatformHN, 1000, 0, 0),
		post("x1", "x1", model.PlatformHN, 10, 0, 0),
		post("x2", "x2", model.PlatformHN, 10, 0, 0),
		post("x3", "x3", model.PlatformHN, 10, 0, 0),
	}
	voices := KeyVoices(factsFor(ds, nil))
	if voices[0].Name != "star" || voices[0].Stance != model.Bullish {
		t.Errorf("star = %+v", voices[0])
	}
	if voices[1].Stance != model.Bearish {
		t.Errorf("x1 = %+v", voices[1])
	}
}

func TestControversies(t *testing.T) {
	ds := []model.Discussion{
		post("r1", "a", model.PlatformReddit, 10, 0, 30*time.Minute),
		post("r2", "b", model.PlatformReddit, 10, 0, 20*time.Hour),
		post("r3", "c", model.PlatformReddit, 10, 0, 20*time.Hour),
		post("h1", "d", model.PlatformHN, 300, 100, 20*time.Hour),
		post("l1", "e", model.PlatformLobsters, 2, 0, 20*time.Hour),
	}
	ds[0].Community, ds[1].Community, ds[2].Community = "ethereum", "ethfinance", "CryptoCurrency"

	cs := Controversies(factsFor(ds, nil))
	if len(cs) != 3 {
		t.Fatalf("got %d controversies: %+v", len(cs), cs)
	}
	if !strings.HasPrefix(cs[0].Bull, "Hacker News leads") || !strings.HasPrefix(cs[0].Bear, "Lobsters shows skepticism") {
		t.Errorf("divergence = %+v", cs[0])
	}
	if !strings.Contains(cs[1].Bear, "5 discussions") {
		t.Errorf("spike = %+v", cs[1])
	}
	if !strings.Contains(cs[2].Bull, "r/ethereum, r/ethfinance, r/CryptoCurrency") {
		t.Errorf("communities = %+v", cs[2])
	}
}

func TestControversiesNone(t *testing.T) {
	ds := []model.Discussion{post("only", "a", model.PlatformHN, 1, 0, time.Hour)}
	if cs := Controversies(factsFor(ds, nil)); len(cs) != 0 {
		t.Errorf("got %+v", cs)
	}
}

func TestPredictions(t *testing.T) {
	var ds []model.Discussion
	for i := range 6 {
		ds = append(ds, post(fmt.Sprintf("p%d", i), "a", model.PlatformHN, 1, 0, time.Duration(i)*time.Minute))
	}
	ps := Predictions(factsFor(ds, newsItems(6)))
	if len(ps) != 2 {
		t.Fatalf("got %+v", ps)
	}
	if ps[0].Confidence != ConfidenceHigh || ps[1].Confidence != ConfidenceMedium {
		t.Errorf("confidences = %s, %s", ps[0].Confidence, ps[1].Confidence)
	}

	var peaked []model.Discussion
	for i := range 5 {
		peaked = append(peaked, post(fmt.Sprintf("p%d", i), "a", model.PlatformHN, 1, 0, 5*time.Hour))
	}
	ps = Predictions(factsFor(peaked, nil))
	if len(ps) != 1 || !strings.Contains(ps[0].Prediction, "peaked") {
		t.Errorf("peaked = %+v", ps)
	}
}

func TestPredictionsFallback(t *testing.T) {
	ps := Predictions(factsFor(nil, nil))
	if len(ps) != 1 || ps[0].Confidence != ConfidenceLow {
		t.Errorf("got %+v", ps)
	}
}

func TestBuildBounds(t *testing.T) {
	var ds []model.Discussion
	platforms := []model.Platform{model.PlatformReddit, model.PlatformHN, model.PlatformLobsters, model.PlatformX}
	for i := range 40 {
		d := post(fmt.Sprintf("t%d", i), fmt.Sprintf("u%d", i%9), platforms[i%4], i, i, time.Duration(i)*10*time.Minute)
		d.Community = fmt.Sprintf("sub%d", i%5)
		ds = append(ds, d)
	}
	n := Build(factsFor(ds, newsItems(10)))
	if len(n.KeyVoices) > 5 || len(n.Controversies) > 3 || len(n.Predictions) > 3 || len(n.Predictions) == 0 {
		t.Errorf("bounds violated: %d voices, %d controversies, %d predictions",
			len(n.KeyVoices), len(n.Controversies), len(n.Predictions))
	}
	if n.Summary == "" {
		t.Error("empty summary")
	}
}
