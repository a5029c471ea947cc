// Package rank merges per-platform discussions, orders them by time-decayed
// engagement and computes the composite pulse score.
package rank

import (
	"math"
	"slices"
	"time"

	"github.com/TobiSchelling/pulseboard/internal/model"
)

// HalfLife is the age at which a discussion's engagement counts half.
const HalfLife = 12 * time.Hour

const commentWeight = 1.5

// DecayScore weights score plus 1.5x comments by an exponential half-life on
// the age of the post. Posts from the future count as brand new.
func DecayScore(score, comments int, posted, now time.Time) float64 {
	engagement := float64(score) + float64(comments)*commentWeight
	hours := max(now.Sub(posted).Hours(), 0)
	return engagement * math.Pow(0.5, hours/HalfLife.Hours())
}

// Score is DecayScore for d.
func Score(d model.Discussion, now time.Time) float64 {
	return DecayScore(d.Score, d.Comments, d.Timestamp, now)
}

// Merge concatenates discussion batches. Items from different platforms are
// never matched against each other.
func Merge(batches ...[]model.Discussion) []model.Discussion {
	var n int
	for _, b := range batches {
		n += len(b)
	}
	out := make([]model.Discussion, 0, n)
	for _, b := range batches {
		out = append(out, b...)
	}
	return out
}

// Rank returns a copy of ds sorted by decay score, highest first. Equal
// scores keep their input order.
func Rank(ds []model.Discussion, now time.Time) []model.Discussion {
	type scored struct {
		d     model.Discussion
		score float64
	}
	tmp := make([]scored, len(ds))
	for i, d := range ds {
		tmp[i] = scored{d, Score(d, now)}
	}
	slices.SortStableFunc(tmp, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		}
		return 0
	})

	out := make([]model.Discussion, len(tmp))
	for i, s := range tmp {
		out[i] = s.d
	}
	return out
}

// SortNews returns a copy of news ordered newest first, stable on ties.
func SortNews(news []model.NewsItem) []model.NewsItem {
	out := slices.Clone(news)
	slices.SortStableFunc(out, func(a, b model.NewsItem) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out
}
