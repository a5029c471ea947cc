package model

import "time"

// Platform identifies where a discussion was posted.
type Platform string

const (
	PlatformReddit   Platform = "reddit"
	PlatformHN       Platform = "hn"
	PlatformLobsters Platform = "lobsters"
	PlatformX        Platform = "x"
)

// Name returns the display name of p.
func (p Platform) Name() string {
	switch p {
	case PlatformReddit:
		return "Reddit"
	case PlatformHN:
		return "Hacker News"
	case PlatformLobsters:
		return "Lobsters"
	case PlatformX:
		return "X"
	}
	return string(p)
}

// SourceNews is the source-count key used for news items.
const SourceNews = "news"

// Discussion is a forum or social post with engagement metrics.
type Discussion struct {
	ID        string    `json:"-"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Score     int       `json:"score"`
	Comments  int       `json:"comments"`
	Author    string    `json:"author"`
	Source    Platform  `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	TimeAgo   string    `json:"timeAgo"`
	Freshness Freshness `json:"freshness"`
	Community string    `json:"subreddit,omitempty"`
}

// Engagement is the raw score plus comment count.
func (d Discussion) Engagement() int {
	return d.Score + d.Comments
}

// NewsItem is a news headline.
type NewsItem struct {
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Source    string    `json:"source"`
	PubDate   string    `json:"pubDate"`
	Timestamp time.Time `json:"timestamp"`
	Freshness Freshness `json:"freshness"`
}

// Sentiment is the overall mood label of a result.
type Sentiment string

const (
	Bullish Sentiment = "bullish"
	Bearish Sentiment = "bearish"
	Neutral Sentiment = "neutral"
)

// KeyVoice is the highest scoring post of a notable author.
type KeyVoice struct {
	Name     string    `json:"name"`
	Platform Platform  `json:"platform"`
	Quote    string    `json:"quote"`
	Stance   Sentiment `json:"stance"`
	TimeAgo  string    `json:"timeAgo"`
}

// Controversy is a bull/bear framing of a detected data pattern.
type Controversy struct {
	Topic string `json:"topic" validate:"required"`
	Bull  string `json:"bull" validate:"required"`
	Bear  string `json:"bear" validate:"required"`
}

// Prediction is a near-term expectation derived from activity patterns.
type Prediction struct {
	Prediction string `json:"prediction" validate:"required"`
	Confidence string `json:"confidence" validate:"oneof=high medium low"`
	Reasoning  string `json:"reasoning" validate:"required"`
}

// Keyword is a salient term with its frequency across titles.
type Keyword struct {
	Word      string  `json:"word"`
	Count     int     `json:"count"`
	Relevance float64 `json:"relevance"`
}

// PulseBreakdown shows how each component contributed to the pulse score.
type PulseBreakdown struct {
	Freshness  float64 `json:"freshness"`
	Volume     float64 `json:"volume"`
	Engagement float64 `json:"engagement"`
	Diversity  float64 `json:"diversity"`
}

// TimeSlot is one bucket of the activity timeline.
type TimeSlot struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// AnalysisResult is the engine output for one topic.
type AnalysisResult struct {
	Topic         string         `json:"topic"`
	Timestamp     time.Time      `json:"timestamp"`
	PulseScore    int            `json:"pulseScore"`
	Pulse         PulseBreakdown `json:"pulseBreakdown"`
	Summary       string         `json:"summary"`
	Sentiment     Sentiment      `json:"sentiment"`
	KeyVoices     []KeyVoice     `json:"keyVoices"`
	Controversies []Controversy  `json:"controversies"`
	Predictions   []Prediction   `json:"predictions"`
	Discussions   []Discussion   `json:"discussions"`
	News          []NewsItem     `json:"news"`
	Keywords      []Keyword      `json:"keywords"`
	Timeline      []TimeSlot     `json:"timeline"`
	Sources       map[string]int `json:"sources"`
	Refined       bool           `json:"aiRefined"`
}

// TotalSources returns the sum of all per-source counts.
func (r *AnalysisResult) TotalSources() int {
	total := 0
	for _, n := range r.Sources {
		total += n
	}
	return total
}
