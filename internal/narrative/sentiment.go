package narrative

import (
	"regexp"
	"strings"

	"github.com/TobiSchelling/pulseboard/internal/model"
)

var positiveTerms = wordSet(`great amazing incredible love best excellent awesome
fantastic wonderful breakthrough success win winning bullish surge soar soaring rally
boom record revolutionary innovative impressive outperform growth upgrade improvement
powerful exciting launch launched partnership backed funding raised milestone adoption
approved profit profitable strong positive`)

var negativeTerms = wordSet(`bad terrible awful hate worst crash crashed fail failed
failure bearish plunge plunging dump scam hack hacked exploit vulnerability decline
declining loss losing lost concern warning risk risky dangerous dead dying bankrupt
bankruptcy fraud lawsuit sued ban banned reject rejected problem broken bug slow
expensive overvalued bubble collapse controversy scandal layoff layoffs fired`)

var nonLetterRe = regexp.MustCompile(`[^a-z]`)

func wordSet(words string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(words) {
		set[w] = struct{}{}
	}
	return set
}

// Mood is the lexicon sentiment of a set of titles.
type Mood struct {
	Label      model.Sentiment
	Score      float64 // -1 (all negative) to 1 (all positive)
	Confidence float64 // 0 to 1
	Positive   int
	Negative   int
}

// Lexicon scores titles against the positive and negative term lists.
func Lexicon(titles []string) Mood {
	var m Mood
	for _, title := range titles {
		for _, tok := range strings.Fields(strings.ToLower(title)) {
			w := nonLetterRe.ReplaceAllString(tok, "")
			if _, ok := positiveTerms[w]; ok {
				m.Positive++
			} else if _, ok := negativeTerms[w]; ok {
				m.Negative++
			}
		}
	}

	hits := m.Positive + m.Negative
	if hits > 0 {
		m.Score = float64(m.Positive-m.Negative) / float64(hits)
	}
	if len(titles) > 0 {
		m.Confidence = min(float64(hits)/(float64(len(titles))*0.5), 1)
	}

	switch {
	case m.Score > 0.2 && m.Confidence > 0.3:
		m.Label = model.Bullish
	case m.Score < -0.2 && m.Confidence > 0.3:
		m.Label = model.Bearish
	default:
		m.Label = model.Neutral
	}
	return m
}

// Sentiment labels the overall mood. When the lexicon barely matches, post
// velocity stands in: a burst of recent posts reads bullish, a near-empty
// topic bearish.
func Sentiment(f *Facts) model.Sentiment {
	m := Lexicon(f.Titles())
	if m.Confidence > 0.15 || f.Velocity.Total == 0 {
		return m.Label
	}
	switch {
	case f.Velocity.LastH2 > 5:
		return model.Bullish
	case f.Velocity.Total < 3:
		return model.Bearish
	default:
		return model.Neutral
	}
}
