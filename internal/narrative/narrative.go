package narrative

import "github.com/TobiSchelling/pulseboard/internal/model"

// Narrative is the deterministic interpretation of one topic's data.
type Narrative struct {
	Summary       string
	Sentiment     model.Sentiment
	KeyVoices     []model.KeyVoice
	Controversies []model.Controversy
	Predictions   []model.Prediction
}

// Build runs every derivation over f.
func Build(f *Facts) Narrative {
	return Narrative{
		Summary:       Summary(f),
		Sentiment:     Sentiment(f),
		KeyVoices:     KeyVoices(f),
		Controversies: Controversies(f),
		Predictions:   Predictions(f),
	}
}
