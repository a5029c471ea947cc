package narrative

import (
	"fmt"
	"slices"
	"strings"

	"github.com/TobiSchelling/pulseboard/internal/model"
)

const maxControversies = 3

var controversyRules = []Rule[model.Controversy]{
	{Name: "platform-divergence", When: multiPlatform, Make: platformDivergence},
	{
		Name: "spike",
		When: func(f *Facts) bool { return f.Velocity.LastH2 > 0 && f.Velocity.Total > 3*f.Velocity.LastH2 },
		Make: func(f *Facts) model.Controversy {
			return model.Controversy{
				Topic: "Spike or baseline?",
				Bull:  fmt.Sprintf("%d new posts in the last 2 hours point to fresh momentum.", f.Velocity.LastH2),
				Bear:  fmt.Sprintf("They are a small share of %d discussions overall; the spike may be transient.", f.Velocity.Total),
			}
		},
	},
	{
		Name: "cross-community",
		When: func(f *Facts) bool { return len(communities(f)) >= 3 },
		Make: func(f *Facts) model.Controversy {
			top := communities(f)[:3]
			for i, c := range top {
				top[i] = "r/" + c
			}
			return model.Controversy{
				Topic: "Broad interest or fragmentation?",
				Bull:  fmt.Sprintf("Posts span %s and more, a sign of broad interest.", strings.Join(top, ", ")),
				Bear:  "Attention is split across communities with no single place driving the discussion.",
			}
		},
	},
}

// Controversies returns up to three bull/bear framings of patterns in the data.
func Controversies(f *Facts) []model.Controversy {
	return Apply(f, controversyRules, maxControversies)
}

type platformMean struct {
	platform model.Platform
	mean     float64
}

// platformMeans returns the mean engagement per platform, highest first.
// Platforms with equal means keep the order they first appear in.
func platformMeans(f *Facts) []platformMean {
	var order []model.Platform
	sum := make(map[model.Platform]int)
	count := make(map[model.Platform]int)
	for _, d := range f.Discussions {
		if count[d.Source] == 0 {
			order = append(order, d.Source)
		}
		sum[d.Source] += d.Engagement()
		count[d.Source]++
	}

	out := make([]platformMean, len(order))
	for i, p := range order {
		out[i] = platformMean{p, float64(sum[p]) / float64(count[p])}
	}
	slices.SortStableFunc(out, func(a, b platformMean) int {
		switch {
		case a.mean > b.mean:
			return -1
		case a.mean < b.mean:
			return 1
		}
		return 0
	})
	return out
}

func multiPlatform(f *Facts) bool {
	return len(platformMeans(f)) >= 2
}

func platformDivergence(f *Facts) model.Controversy {
	means := platformMeans(f)
	lead, lag := means[0], means[len(means)-1]
	return model.Controversy{
		Topic: fmt.Sprintf("%s vs %s", lead.platform.Name(), lag.platform.Name()),
		Bull: fmt.Sprintf("%s leads the conversation, averaging %.0f points and comments per post.",
			lead.platform.Name(), lead.mean),
		Bear: fmt.Sprintf("%s shows skepticism, averaging only %.0f per post.",
			lag.platform.Name(), lag.mean),
	}
}

// communities lists the distinct Reddit communities by post count, most
// active first.
func communities(f *Facts) []string {
	var order []string
	count := make(map[string]int)
	for _, d := range f.Discussions {
		if d.Source != model.PlatformReddit || d.Community == "" {
			continue
		}
		if count[d.Community] == 0 {
			order = append(order, d.Community)
		}
		count[d.Community]++
	}
	slices.SortStableFunc(order, func(a, b string) int { return count[b] - count[a] })
	return order
}
