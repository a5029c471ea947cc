package rank

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/TobiSchelling/pulseboard/internal/model"
)

func TestPulseEmpty(t *testing.T) {
	score, b := Pulse(nil, nil, now)
	if score != 0 || b != (model.PulseBreakdown{}) {
		t.Errorf("got %d %+v, want zero", score, b)
	}
}

func TestPulseScenario(t *testing.T) {
	// Four fresh posts on one platform, two day-old posts on another, eight news items.
	var ds []model.Discussion
	for i := range 4 {
		ds = append(ds, model.Discussion{
			Title: fmt.Sprintf("eth %d", i), Score: 20, Comments: 5,
			Source: model.PlatformReddit, Timestamp: now.Add(-time.Duration(i*10) * time.Minute),
		})
	}
	for i := range 2 {
		ds = append(ds, model.Discussion{
			Title: fmt.Sprintf("old %d", i), Score: 10, Comments: 2,
			Source: model.PlatformHN, Timestamp: hoursAgo(24),
		})
	}
	news := make([]model.NewsItem, 8)

	score, b := Pulse(ds, news, now)

	if b.Freshness != 26 { // 4*5 + 4*1.5
		t.Errorf("freshness = %v, want 26", b.Freshness)
	}
	if want := math.Log2(15) * 5; math.Abs(b.Volume-want) > 1e-9 {
		t.Errorf("volume = %v, want %v", b.Volume, want)
	}
	if want := math.Log2(125) * 3; math.Abs(b.Engagement-want) > 1e-9 {
		t.Errorf("engagement = %v, want %v", b.Engagement, want)
	}
	if b.Diversity != 15 {
		t.Errorf("diversity = %v, want 15", b.Diversity)
	}
	want := int(math.Round(26 + math.Log2(15)*5 + math.Log2(125)*3 + 15))
	if score != want {
		t.Errorf("score = %d, want %d", score, want)
	}
}

func TestPulseBounded(t *testing.T) {
	var ds []model.Discussion
	platforms := []model.Platform{model.PlatformReddit, model.PlatformHN, model.PlatformLobsters, model.PlatformX}
	for i := range 500 {
		ds = append(ds, model.Discussion{Score: 100000, Comments: 5000, Source: platforms[i%4], Timestamp: now})
	}
	score, b := Pulse(ds, make([]model.NewsItem, 50), now)
	if score != 100 {
		t.Errorf("score = %d, want 100", score)
	}
	if b.Diversity != 20 {
		t.Errorf("diversity = %v, want capped 20", b.Diversity)
	}
}

func TestPulseNewsOnly(t *testing.T) {
	score, _ := Pulse(nil, make([]model.NewsItem, 1), now)
	if score != 10 { // volume log2(2)*5 + diversity 5
		t.Errorf("score = %d, want 10", score)
	}
}

func TestTimeline(t *testing.T) {
	ds := []model.Discussion{
		{Timestamp: hoursAgo(0.5)},
		{Timestamp: hoursAgo(2)},
		{Timestamp: hoursAgo(2.5)},
		{Timestamp: hoursAgo(30)},
		{Timestamp: hoursAgo(24 * 10)},
		{Timestamp: now.Add(time.Hour)},
	}
	slots := Timeline(ds, now)
	want := map[string]int{"<1h": 2, "1-3h": 2, "1-3d": 1, "7d+": 1}
	if len(slots) != 8 {
		t.Fatalf("got %d slots", len(slots))
	}
	for _, s := range slots {
		if s.Count != want[s.Label] {
			t.Errorf("slot %s = %d, want %d", s.Label, s.Count, want[s.Label])
		}
	}
}
