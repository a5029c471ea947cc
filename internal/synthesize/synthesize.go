package synthesize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/TobiSchelling/pulseboard/internal/llm"
	"github.com/TobiSchelling/pulseboard/internal/model"
	"github.com/TobiSchelling/pulseboard/internal/narrative"
	"github.com/TobiSchelling/pulseboard/internal/validator"
)

const refinePrompt = `You are writing a real-time intelligence brief about "%s" for a dashboard.

Rephrase the computed findings below into clear prose. Do not invent numbers, people or events that are not in the data. Keep the overall sentiment as computed.

Activity: %d discussions total, %d in the last 2 hours, %d in the last 12 hours. Combined engagement: %d.
Computed sentiment: %s

TOP DISCUSSIONS:
%s

NEWS HEADLINES:
%s

COMPUTED SUMMARY:
%s

COMPUTED CONTROVERSIES:
%s

COMPUTED PREDICTIONS:
%s

Respond with ONLY this JSON:
{
    "summary": "3-4 sentence briefing of what is happening right now",
    "controversies": [{"topic": "specific disagreement", "bull": "bull argument", "bear": "bear argument"}],
    "predictions": [{"prediction": "what might happen next", "confidence": "high|medium|low", "reasoning": "why"}]
}

Return at most 3 controversies and at most 3 predictions.`

const promptItems = 10

// ErrNoProvider is returned when no LLM provider is configured.
var ErrNoProvider = errors.New("no LLM provider configured")

// Refinement is the structured output expected from the LLM.
type Refinement struct {
	Summary       string              `json:"summary" validate:"required,min=20,max=2000"`
	Controversies []model.Controversy `json:"controversies" validate:"max=3,dive"`
	Predictions   []model.Prediction  `json:"predictions" validate:"max=3,dive"`
}

// Synthesizer rephrases a computed narrative with an LLM.
type Synthesizer struct {
	provider  llm.Provider
	maxTokens int
	timeout   time.Duration
}

// NewSynthesizer creates a new narrative synthesizer.
func NewSynthesizer(provider llm.Provider, maxTokens int, timeout time.Duration) *Synthesizer {
	return &Synthesizer{provider: provider, maxTokens: maxTokens, timeout: timeout}
}

// Refine returns n with its summary, controversies and predictions rewritten
// by the LLM. Sentiment and key voices are never changed. Any failure,
// including output that does not validate, returns an error and n should be
// used as is.
func (s *Synthesizer) Refine(ctx context.Context, f *narrative.Facts, n narrative.Narrative) (narrative.Narrative, error) {
	if s.provider == nil {
		return n, ErrNoProvider
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.provider.Generate(ctx, buildPrompt(f, n), s.maxTokens)
	if err != nil {
		return n, fmt.Errorf("generating refinement: %w", err)
	}

	var r Refinement
	if err := llm.DecodeJSON(text, &r); err != nil {
		return n, err
	}
	if err := validator.Struct(&r); err != nil {
		return n, err
	}

	out := n
	out.Summary = strings.TrimSpace(r.Summary)
	if len(r.Controversies) > 0 {
		out.Controversies = r.Controversies
	}
	if len(r.Predictions) > 0 {
		out.Predictions = r.Predictions
	}
	return out, nil
}

func buildPrompt(f *narrative.Facts, n narrative.Narrative) string {
	var ds strings.Builder
	for i, d := range f.Discussions {
		if i == promptItems {
			break
		}
		fmt.Fprintf(&ds, "- [%s] %q by %s (%d points, %d comments, %s)\n",
			d.Source.Name(), d.Title, d.Author, d.Score, d.Comments, d.TimeAgo)
	}
	if ds.Len() == 0 {
		ds.WriteString("(none)\n")
	}

	var ns strings.Builder
	for i, item := range f.News {
		if i == promptItems {
			break
		}
		fmt.Fprintf(&ns, "- %q from %s\n", item.Title, item.Source)
	}
	if ns.Len() == 0 {
		ns.WriteString("(none)\n")
	}

	var cs strings.Builder
	for _, c := range n.Controversies {
		fmt.Fprintf(&cs, "- %s: bull %q / bear %q\n", c.Topic, c.Bull, c.Bear)
	}
	if cs.Len() == 0 {
		cs.WriteString("(none)\n")
	}

	var ps strings.Builder
	for _, p := range n.Predictions {
		fmt.Fprintf(&ps, "- %s (%s): %s\n", p.Prediction, p.Confidence, p.Reasoning)
	}

	return fmt.Sprintf(refinePrompt,
		f.Topic,
		f.Velocity.Total, f.Velocity.LastH2, f.Velocity.LastH12, f.Engagement,
		n.Sentiment,
		strings.TrimSpace(ds.String()),
		strings.TrimSpace(ns.String()),
		n.Summary,
		strings.TrimSpace(cs.String()),
		strings.TrimSpace(ps.String()),
	)
}
