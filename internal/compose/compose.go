// Package compose renders an analysis as a shareable report.
package compose

import (
	"bytes"
	"fmt"
	"html/template"
	"slices"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/TobiSchelling/pulseboard/internal/model"
)

const (
	maxReportDiscussions = 10
	maxReportNews        = 10
)

var md = goldmark.New()

var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "[", `\[`, "]", `\]`, "*", `\*`, "_", `\_`, "`", "\\`", "<", "&lt;", ">", "&gt;",
)

func esc(s string) string { return mdEscaper.Replace(s) }

// Link destinations end at ")" or whitespace.
var urlEscaper = strings.NewReplacer(" ", "%20", "\t", "%09", "\n", "%0A", "(", "%28", ")", "%29", "<", "%3C", ">", "%3E")

func escURL(u string) string { return urlEscaper.Replace(u) }

// Markdown renders r as a markdown report.
func Markdown(r *model.AnalysisResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# PulseBoard Report: %s\n\n", esc(r.Topic))
	fmt.Fprintf(&b, "Generated %s · Sentiment **%s** · Pulse **%d/100** · %d items (%s)\n\n",
		r.Timestamp.UTC().Format("2006-01-02 15:04 MST"),
		strings.ToUpper(string(r.Sentiment)),
		r.PulseScore,
		r.TotalSources(),
		sourceCounts(r.Sources),
	)

	b.WriteString("## Summary\n\n")
	b.WriteString(esc(r.Summary))
	if r.Refined {
		b.WriteString(" *(AI refined)*")
	}
	b.WriteString("\n\n")

	b.WriteString("## Pulse\n\n")
	fmt.Fprintf(&b, "- Freshness: %.1f / 30\n", r.Pulse.Freshness)
	fmt.Fprintf(&b, "- Volume: %.1f / 25\n", r.Pulse.Volume)
	fmt.Fprintf(&b, "- Engagement: %.1f / 25\n", r.Pulse.Engagement)
	fmt.Fprintf(&b, "- Diversity: %.1f / 20\n\n", r.Pulse.Diversity)

	if len(r.Discussions) > 0 {
		b.WriteString("## Top Discussions\n\n")
		for i, d := range r.Discussions {
			if i == maxReportDiscussions {
				break
			}
			fmt.Fprintf(&b, "- \\[%s\\] [%s](%s) (↑%d, %d comments) · %s\n",
				strings.ToUpper(string(d.Source)), esc(d.Title), escURL(d.URL), d.Score, d.Comments, d.TimeAgo)
		}
		b.WriteString("\n")
	}

	if len(r.News) > 0 {
		b.WriteString("## News\n\n")
		for i, n := range r.News {
			if i == maxReportNews {
				break
			}
			fmt.Fprintf(&b, "- [%s](%s) · %s\n", esc(n.Title), escURL(n.URL), esc(n.Source))
		}
		b.WriteString("\n")
	}

	if len(r.KeyVoices) > 0 {
		b.WriteString("## Key Voices\n\n")
		for _, v := range r.KeyVoices {
			fmt.Fprintf(&b, "- **%s** (%s, %s): \"%s\"\n", esc(v.Name), v.Platform.Name(), v.Stance, esc(v.Quote))
		}
		b.WriteString("\n")
	}

	if len(r.Controversies) > 0 {
		b.WriteString("## Controversies\n\n")
		for _, c := range r.Controversies {
			fmt.Fprintf(&b, "- **%s**\n  - Bull: %s\n  - Bear: %s\n", esc(c.Topic), esc(c.Bull), esc(c.Bear))
		}
		b.WriteString("\n")
	}

	if len(r.Predictions) > 0 {
		b.WriteString("## Predictions\n\n")
		for _, p := range r.Predictions {
			fmt.Fprintf(&b, "- \\[%s\\] %s %s\n", strings.ToUpper(p.Confidence), esc(p.Prediction), esc(p.Reasoning))
		}
		b.WriteString("\n")
	}

	if len(r.Keywords) > 0 {
		words := make([]string, len(r.Keywords))
		for i, k := range r.Keywords {
			words[i] = fmt.Sprintf("%s (%d)", esc(k.Word), k.Count)
		}
		b.WriteString("## Keywords\n\n")
		b.WriteString(strings.Join(words, ", "))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// HTML converts markdown to HTML. Input that fails to convert is returned
// escaped.
func HTML(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

func sourceCounts(sources map[string]int) string {
	keys := make([]string, 0, len(sources))
	for k := range sources {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s %d", k, sources[k])
	}
	return strings.Join(parts, ", ")
}
