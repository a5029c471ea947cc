package narrative

import (
	"fmt"

	"github.com/TobiSchelling/pulseboard/internal/model"
)

const (
	maxPredictions = 3

	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

var predictionRules = []Rule[model.Prediction]{
	{
		Name: "surge",
		When: func(f *Facts) bool { return f.Velocity.LastH2 >= 5 },
		Make: func(f *Facts) model.Prediction {
			return model.Prediction{
				Prediction: fmt.Sprintf("Discussion of %s keeps surging over the next few hours.", f.Topic),
				Confidence: ConfidenceHigh,
				Reasoning:  fmt.Sprintf("%d posts in the last 2 hours show strong momentum.", f.Velocity.LastH2),
			}
		},
	},
	{
		Name: "peaked",
		When: func(f *Facts) bool { return f.Velocity.LastH12 >= 5 && f.Velocity.LastH2 < 3 },
		Make: func(f *Facts) model.Prediction {
			return model.Prediction{
				Prediction: "Activity has likely peaked and will taper off.",
				Confidence: ConfidenceMedium,
				Reasoning: fmt.Sprintf("%d posts in the last 12 hours but only %d in the last 2.",
					f.Velocity.LastH12, f.Velocity.LastH2),
			}
		},
	},
	{
		Name: "media-cycle",
		When: func(f *Facts) bool { return len(f.News) > 5 },
		Make: func(f *Facts) model.Prediction {
			return model.Prediction{
				Prediction: "The media cycle continues with more coverage to come.",
				Confidence: ConfidenceMedium,
				Reasoning:  fmt.Sprintf("%d news articles are already covering %s.", len(f.News), f.Topic),
			}
		},
	},
}

var fallbackPrediction = Rule[model.Prediction]{
	Name: "flat",
	When: always,
	Make: func(*Facts) model.Prediction {
		return model.Prediction{
			Prediction: "Activity stays flat absent a new catalyst.",
			Confidence: ConfidenceLow,
			Reasoning:  "No strong momentum signal in current discussion or coverage.",
		}
	},
}

// Predictions returns one to three near-term predictions.
func Predictions(f *Facts) []model.Prediction {
	out := Apply(f, predictionRules, maxPredictions)
	if len(out) == 0 {
		out = Apply(f, []Rule[model.Prediction]{fallbackPrediction}, 1)
	}
	return out
}
