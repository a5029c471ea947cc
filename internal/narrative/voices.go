package narrative

import (
	"cmp"
	"slices"

	"github.com/TobiSchelling/pulseboard/internal/model"
)

const maxVoices = 5

var anonymous = map[string]bool{"": true, "unknown": true, "[deleted]": true}

// KeyVoices returns up to five authors ranked by their best post's decay
// score. Stance compares that score with the mean over all discussions.
func KeyVoices(f *Facts) []model.KeyVoice {
	type voice struct {
		d     model.Discussion
		score float64
	}

	var mean float64
	best := make(map[string]voice)
	for i, d := range f.Discussions {
		mean += f.Scores[i]
		if anonymous[d.Author] {
			continue
		}
		if v, ok := best[d.Author]; !ok || f.Scores[i] > v.score {
			best[d.Author] = voice{d, f.Scores[i]}
		}
	}
	if len(f.Discussions) > 0 {
		mean /= float64(len(f.Discussions))
	}

	voices := make([]voice, 0, len(best))
	for _, v := range best {
		voices = append(voices, v)
	}
	slices.SortFunc(voices, func(a, b voice) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.d.Author, b.d.Author)
	})
	if len(voices) > maxVoices {
		voices = voices[:maxVoices]
	}

	out := make([]model.KeyVoice, 0, len(voices))
	for _, v := range voices {
		stance := model.Neutral
		switch {
		case v.score > 2*mean:
			stance = model.Bullish
		case v.score < 0.3*mean:
			stance = model.Bearish
		}
		out = append(out, model.KeyVoice{
			Name:     v.d.Author,
			Platform: v.d.Source,
			Quote:    v.d.Title,
			Stance:   stance,
			TimeAgo:  v.d.TimeAgo,
		})
	}
	return out
}
