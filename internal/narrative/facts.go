// Package narrative derives sentiment, a summary, key voices, controversies
// and predictions from ranked discussions and news. Every derivation is an
// ordered list of rules over a Facts snapshot.
package narrative

import (
	"time"

	"github.com/TobiSchelling/pulseboard/internal/model"
	"github.com/TobiSchelling/pulseboard/internal/rank"
)

// Velocity counts discussions by age window.
type Velocity struct {
	LastH2  int
	LastH12 int
	LastH48 int
	Total   int
}

// Facts is the computed input every rule reads from.
type Facts struct {
	Topic       string
	Discussions []model.Discussion // ranked, highest first
	News        []model.NewsItem
	Now         time.Time

	Velocity   Velocity
	Engagement int       // sum of score+comments over discussions
	Scores     []float64 // decay score per discussion, same order
}

// NewFacts computes the shared facts for one request.
func NewFacts(topic string, ranked []model.Discussion, news []model.NewsItem, now time.Time) *Facts {
	f := &Facts{
		Topic:       topic,
		Discussions: ranked,
		News:        news,
		Now:         now,
		Scores:      make([]float64, len(ranked)),
	}
	f.Velocity.Total = len(ranked)
	for i, d := range ranked {
		age := now.Sub(d.Timestamp)
		if age < 2*time.Hour {
			f.Velocity.LastH2++
		}
		if age < 12*time.Hour {
			f.Velocity.LastH12++
		}
		if age < 48*time.Hour {
			f.Velocity.LastH48++
		}
		f.Engagement += d.Engagement()
		f.Scores[i] = rank.Score(d, now)
	}
	return f
}

// Titles returns every discussion title followed by every news title.
func (f *Facts) Titles() []string {
	out := make([]string, 0, len(f.Discussions)+len(f.News))
	for _, d := range f.Discussions {
		out = append(out, d.Title)
	}
	for _, n := range f.News {
		out = append(out, n.Title)
	}
	return out
}
