package rank

import (
	"math"
	"time"

	"github.com/TobiSchelling/pulseboard/internal/model"
)

const (
	maxFreshness  = 30
	maxVolume     = 25
	maxEngagement = 25
	maxDiversity  = 20
)

// ActiveSources counts distinct discussion platforms, plus one when any news
// is present.
func ActiveSources(ds []model.Discussion, news []model.NewsItem) int {
	platforms := make(map[model.Platform]struct{})
	for _, d := range ds {
		platforms[d.Source] = struct{}{}
	}
	n := len(platforms)
	if len(news) > 0 {
		n++
	}
	return n
}

// Pulse computes the 0-100 composite score and its components.
// It is 0 when there are no discussions and no news.
func Pulse(ds []model.Discussion, news []model.NewsItem, now time.Time) (int, model.PulseBreakdown) {
	if len(ds) == 0 && len(news) == 0 {
		return 0, model.PulseBreakdown{}
	}

	var fresh, recent, engagement int
	for _, d := range ds {
		age := now.Sub(d.Timestamp)
		if age < 2*time.Hour {
			fresh++
		}
		if age < 12*time.Hour {
			recent++
		}
		engagement += d.Engagement()
	}

	b := model.PulseBreakdown{
		Freshness:  math.Min(maxFreshness, float64(fresh)*5+float64(recent)*1.5),
		Volume:     math.Min(maxVolume, math.Log2(float64(len(ds)+len(news)+1))*5),
		Engagement: math.Min(maxEngagement, math.Log2(float64(max(engagement, 0)+1))*3),
		Diversity:  math.Min(maxDiversity, float64(ActiveSources(ds, news))*5),
	}
	return int(math.Round(b.Freshness + b.Volume + b.Engagement + b.Diversity)), b
}
