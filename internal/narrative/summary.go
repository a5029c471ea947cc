package narrative

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	strongEngagement   = 1000
	moderateEngagement = 100
)

// velocityClauses are exclusive: the first match describes the pace.
var velocityClauses = []Rule[string]{
	{
		Name: "surge",
		When: func(f *Facts) bool { return f.Velocity.LastH2 >= 3 && f.Velocity.LastH2*3 >= f.Velocity.Total },
		Make: func(f *Facts) string {
			return fmt.Sprintf("Activity around %s is surging: %d of %d discussions appeared in the last 2 hours.",
				f.Topic, f.Velocity.LastH2, f.Velocity.Total)
		},
	},
	{
		Name: "steady",
		When: func(f *Facts) bool { return f.Velocity.LastH12 >= 3 },
		Make: func(f *Facts) string {
			return fmt.Sprintf("Discussion of %s is steady, with %d of %d posts in the last 12 hours.",
				f.Topic, f.Velocity.LastH12, f.Velocity.Total)
		},
	},
	{
		Name: "cooling",
		When: func(f *Facts) bool { return f.Velocity.LastH48 > 0 },
		Make: func(f *Facts) string {
			return fmt.Sprintf("Conversation about %s is cooling: %d posts in the last 2 days and little since.",
				f.Topic, f.Velocity.LastH48)
		},
	},
	{
		Name: "quiet",
		When: func(f *Facts) bool { return f.Velocity.Total > 0 },
		Make: func(f *Facts) string {
			return fmt.Sprintf("Discussion of %s is quiet, with %d older posts and nothing in the last 2 days.",
				f.Topic, f.Velocity.Total)
		},
	},
	{
		Name: "news-only",
		When: func(f *Facts) bool { return len(f.News) > 0 },
		Make: func(f *Facts) string {
			return fmt.Sprintf("No community discussion of %s found yet; coverage is news-only.", f.Topic)
		},
	},
}

var detailClauses = []Rule[string]{
	{
		Name: "hottest",
		When: func(f *Facts) bool { return len(f.Discussions) > 0 },
		Make: func(f *Facts) string {
			d := f.Discussions[0]
			return fmt.Sprintf("The hottest thread is %q on %s with %s points and comments combined.",
				d.Title, d.Source.Name(), humanize.Comma(int64(d.Engagement())))
		},
	},
	{
		Name: "latest-news",
		When: func(f *Facts) bool { return len(f.News) > 0 },
		Make: func(f *Facts) string {
			n := f.News[0]
			return fmt.Sprintf("Latest headline: %q (%s).", n.Title, n.Source)
		},
	},
	{
		Name: "engagement",
		When: func(f *Facts) bool { return f.Engagement > moderateEngagement },
		Make: func(f *Facts) string {
			level := "moderate"
			if f.Engagement > strongEngagement {
				level = "strong"
			}
			return fmt.Sprintf("Community engagement is %s at %s combined points and comments.",
				level, humanize.Comma(int64(f.Engagement)))
		},
	},
}

// Summary assembles the brief from the velocity clause followed by the
// hottest thread, latest headline and engagement clauses that apply.
func Summary(f *Facts) string {
	var parts []string
	if s, ok := First(f, velocityClauses); ok {
		parts = append(parts, s)
	}
	parts = append(parts, Apply(f, detailClauses, len(detailClauses))...)
	if len(parts) == 0 {
		return fmt.Sprintf("No recent discussion or news coverage found for %s.", f.Topic)
	}
	return strings.Join(parts, " ")
}
