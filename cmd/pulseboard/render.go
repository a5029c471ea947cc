package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/TobiSchelling/pulseboard/internal/model"
	"github.com/TobiSchelling/pulseboard/internal/trending"
)

const maxTextDiscussions = 8

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorDim     = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorGreen   = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}
	colorRed     = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF5F6D"}

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	headingStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)
	dimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	sourceStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	summaryStyle = lipgloss.NewStyle().Width(80).PaddingLeft(2)
	pulseStyle   = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary)
)

func sentimentStyle(s model.Sentiment) lipgloss.Style {
	switch s {
	case model.Bullish:
		return lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	case model.Bearish:
		return lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	}
	return lipgloss.NewStyle().Bold(true).Foreground(colorDim)
}

// renderResult formats an analysis for the terminal.
func renderResult(r *model.AnalysisResult) string {
	var b strings.Builder

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render(r.Topic), "  ",
		pulseStyle.Render(fmt.Sprintf("Pulse %d/100", r.PulseScore)), "  ",
		sentimentStyle(r.Sentiment).Render(strings.ToUpper(string(r.Sentiment))),
	)
	b.WriteString(header + "\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d items · %s", r.TotalSources(), r.Timestamp.Local().Format("15:04 Jan 2"))) + "\n")

	b.WriteString(headingStyle.Render("Summary") + "\n")
	summary := r.Summary
	if r.Refined {
		summary += " (AI refined)"
	}
	b.WriteString(summaryStyle.Render(summary) + "\n")

	if len(r.Discussions) > 0 {
		b.WriteString(headingStyle.Render("Top discussions") + "\n")
		for i, d := range r.Discussions {
			if i == maxTextDiscussions {
				break
			}
			fmt.Fprintf(&b, "  %s %s %s\n",
				sourceStyle.Render(fmt.Sprintf("%-8s", d.Source.Name())),
				d.Title,
				dimStyle.Render(fmt.Sprintf("↑%d · %d comments · %s", d.Score, d.Comments, d.TimeAgo)),
			)
		}
	}

	if len(r.News) > 0 {
		b.WriteString(headingStyle.Render("News") + "\n")
		for i, n := range r.News {
			if i == maxTextDiscussions {
				break
			}
			fmt.Fprintf(&b, "  %s %s\n", sourceStyle.Render(n.Source), n.Title)
		}
	}

	if len(r.KeyVoices) > 0 {
		b.WriteString(headingStyle.Render("Key voices") + "\n")
		for _, v := range r.KeyVoices {
			fmt.Fprintf(&b, "  %s %s %s\n", titleStyle.Render(v.Name), dimStyle.Render("("+v.Platform.Name()+")"), v.Quote)
		}
	}

	if len(r.Controversies) > 0 {
		b.WriteString(headingStyle.Render("Controversies") + "\n")
		for _, c := range r.Controversies {
			fmt.Fprintf(&b, "  %s\n", c.Topic)
			fmt.Fprintf(&b, "    %s %s\n", sentimentStyle(model.Bullish).Render("bull"), c.Bull)
			fmt.Fprintf(&b, "    %s %s\n", sentimentStyle(model.Bearish).Render("bear"), c.Bear)
		}
	}

	if len(r.Predictions) > 0 {
		b.WriteString(headingStyle.Render("Predictions") + "\n")
		for _, p := range r.Predictions {
			fmt.Fprintf(&b, "  %s %s\n", dimStyle.Render("["+p.Confidence+"]"), p.Prediction)
		}
	}

	if len(r.Keywords) > 0 {
		words := make([]string, len(r.Keywords))
		for i, k := range r.Keywords {
			words[i] = k.Word
		}
		b.WriteString(headingStyle.Render("Keywords") + "\n")
		b.WriteString(summaryStyle.Render(strings.Join(words, ", ")) + "\n")
	}

	return b.String()
}

func renderTrending(topics []trending.Topic) string {
	if len(topics) == 0 {
		return dimStyle.Render("Nothing trending right now.") + "\n"
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Trending now") + "\n")
	for _, t := range topics {
		line := fmt.Sprintf("  %s %s", sourceStyle.Render(fmt.Sprintf("%-8s", t.Source)), t.Title)
		if t.Score > 0 {
			line += " " + dimStyle.Render(fmt.Sprintf("(%d)", t.Score))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
