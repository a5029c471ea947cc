package rank

import (
	"time"

	"github.com/TobiSchelling/pulseboard/internal/model"
)

var timelineSlots = []struct {
	label string
	upTo  time.Duration
}{
	{"<1h", time.Hour},
	{"1-3h", 3 * time.Hour},
	{"3-6h", 6 * time.Hour},
	{"6-12h", 12 * time.Hour},
	{"12-24h", 24 * time.Hour},
	{"1-3d", 72 * time.Hour},
	{"3-7d", 7 * 24 * time.Hour},
	{"7d+", 0},
}

// Timeline buckets discussions by age. All buckets are returned, oldest last.
func Timeline(ds []model.Discussion, now time.Time) []model.TimeSlot {
	slots := make([]model.TimeSlot, len(timelineSlots))
	for i, s := range timelineSlots {
		slots[i].Label = s.label
	}
	for _, d := range ds {
		age := now.Sub(d.Timestamp)
		i := len(timelineSlots) - 1
		for j, s := range timelineSlots[:i] {
			if age < s.upTo {
				i = j
				break
			}
		}
		slots[i].Count++
	}
	return slots
}
