package detection

import (
	"log"

	"github.com/phishguard/phishguard/internal/ports"
)

// NeutralProbability is substituted when no model is loaded or a prediction
// fails. It signals "unknown" rather than a confident verdict in either
// direction, so a missing artifact never breaks scans.
const NeutralProbability = 0.5

// MLEngine converts a URL into a phishing probability via the loaded
// classifier. The model is optional: a nil model degrades every prediction to
// the neutral probability.
type MLEngine struct {
	model     ports.Model
	extractor *FeatureExtractor
}

// NewMLEngine creates an ML engine. model may be nil when no artifact is
// available at startup.
func NewMLEngine(model ports.Model, extractor *FeatureExtractor) *MLEngine {
	return &MLEngine{model: model, extractor: extractor}
}

// Predict returns the phishing probability for a URL. degraded reports that
// the neutral probability was substituted because the model was missing or
// the prediction failed; the caller can surface that distinction instead of
// mistaking "unknown" for "half confident".
func (e *MLEngine) Predict(rawURL string) (score float64, degraded bool) {
	if e.model == nil {
		return NeutralProbability, true
	}

	features := e.extractor.Extract(rawURL)

	prob, err := e.model.PredictProba(features.Values())
	if err != nil {
		log.Printf("Prediction error for %q: %v", rawURL, err)
		return NeutralProbability, true
	}

	// An artifact saved without its output transformation emits raw margins
	// outside [0,1]; clamp so fusion and thresholds stay well-defined.
	if prob < 0 {
		prob = 0
	} else if prob > 1 {
		prob = 1
	}
	return prob, false
}
