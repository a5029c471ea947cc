// Package keywords extracts salient words from a set of titles.
package keywords

import (
	"regexp"
	"slices"
	"strings"

	"github.com/TobiSchelling/pulseboard/internal/model"
)

const (
	maxKeywords = 20
	minCount    = 2
)

var nonWordRe = regexp.MustCompile(`[^a-z0-9\s'-]`)

var stopWords = toSet(`
the a an is are was were be been being have has had do does did will would shall
should may might must can could to of in for on with at by from as into through
during before after above below between out off over under again further then once
here there when where why how all both each few more most other some such no nor not
only own same so than too very just don now and but or if while about up down this
that these those it its he she they them their what which who whom show hn ask tell
new get got like know think make go see come take want use find give way also many
even back any first last long great little still right look need home us try kind
help line turn much because thing your year day good one two three four five people
really well work time going using made https http www com org via per re amp`)

func toSet(words string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(words) {
		set[w] = struct{}{}
	}
	return set
}

// Words tokenizes a title: lowercase, punctuation other than apostrophes and
// hyphens removed, outer apostrophes and hyphens trimmed.
func Words(title string) []string {
	cleaned := nonWordRe.ReplaceAllString(strings.ToLower(title), " ")
	var out []string
	for _, f := range strings.Fields(cleaned) {
		if w := strings.Trim(f, "'-"); w != "" {
			out = append(out, w)
		}
	}
	return out
}

// Extract counts each word at most once per title and returns the top 20
// words seen in at least two titles, most frequent first. Stop words, words
// of two characters or fewer and words of the topic itself are skipped.
// Relevance is the count relative to the most frequent word.
func Extract(titles []string, topic string) []model.Keyword {
	topicWords := toSet(strings.ToLower(topic))

	counts := make(map[string]int)
	var order []string
	for _, title := range titles {
		seen := make(map[string]struct{})
		for _, w := range Words(title) {
			if len(w) <= 2 {
				continue
			}
			if _, stop := stopWords[w]; stop {
				continue
			}
			if _, ok := topicWords[w]; ok {
				continue
			}
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			if counts[w] == 0 {
				order = append(order, w)
			}
			counts[w]++
		}
	}

	var out []model.Keyword
	for _, w := range order {
		if c := counts[w]; c >= minCount {
			out = append(out, model.Keyword{Word: w, Count: c})
		}
	}
	slices.SortStableFunc(out, func(a, b model.Keyword) int { return b.Count - a.Count })
	if len(out) > maxKeywords {
		out = out[:maxKeywords]
	}
	if len(out) == 0 {
		return nil
	}

	top := float64(out[0].Count)
	for i := range out {
		out[i].Relevance = float64(out[i].Count) / top
	}
	return out
}
