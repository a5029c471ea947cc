package model

import (
	"time"

	"github.com/araddon/dateparse"
	"github.com/dustin/go-humanize"
)

// Freshness is a coarse age classification.
type Freshness string

const (
	Live   Freshness = "live"
	Recent Freshness = "recent"
	Aging  Freshness = "aging"
	Stale  Freshness = "stale"
)

// FreshnessAt buckets ts relative to now: live <2h, recent <12h, aging <48h, else stale.
func FreshnessAt(ts, now time.Time) Freshness {
	age := now.Sub(ts)
	switch {
	case age < 2*time.Hour:
		return Live
	case age < 12*time.Hour:
		return Recent
	case age < 48*time.Hour:
		return Aging
	default:
		return Stale
	}
}

// RelativeAge renders ts as a human-readable age such as "3 hours ago".
func RelativeAge(ts, now time.Time) string {
	if now.Sub(ts) < time.Minute {
		return "just now"
	}
	return humanize.RelTime(ts, now, "ago", "from now")
}

// ResolveTime parses an upstream date string. Unparsable or empty input resolves to now.
func ResolveTime(raw string, now time.Time) time.Time {
	if raw == "" {
		return now
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return now
	}
	return t
}

// ResolveUnix converts epoch seconds to an instant. Non-positive input resolves to now.
func ResolveUnix(sec float64, now time.Time) time.Time {
	if sec <= 0 {
		return now
	}
	return time.Unix(int64(sec), 0)
}

// Stamp fills the derived age fields of d.
func (d *Discussion) Stamp(now time.Time) {
	if d.Timestamp.IsZero() {
		d.Timestamp = now
	}
	d.TimeAgo = RelativeAge(d.Timestamp, now)
	d.Freshness = FreshnessAt(d.Timestamp, now)
}

// Stamp fills the derived age fields of n.
func (n *NewsItem) Stamp(now time.Time) {
	if n.Timestamp.IsZero() {
		n.Timestamp = now
	}
	n.Freshness = FreshnessAt(n.Timestamp, now)
}
