package model

import (
	"fmt"

	"github.com/dmitryikh/leaves"

	"github.com/phishguard/phishguard/internal/domain/detection"
)

// XGBoostModel implements ports.Model over an XGBoost ensemble loaded with
// the leaves inference library. The ensemble is read-only after Load and safe
// for concurrent prediction.
type XGBoostModel struct {
	ensemble *leaves.Ensemble
}

// Load reads an XGBoost model artifact from disk.
//
// The artifact must be a binary-classification ensemble trained on the
// canonical feature schema; a feature-count mismatch is rejected here, at
// startup, rather than surfacing as silently wrong probabilities per scan.
func Load(path string) (*XGBoostModel, error) {
	ensemble, err := leaves.XGEnsembleFromFile(path, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load model artifact: %w", err)
	}

	if n := ensemble.NRawOutputGroups(); n != 1 {
		return nil, fmt.Errorf("expected binary classifier, artifact has %d output groups", n)
	}
	if want, got := len(detection.FeatureNames()), ensemble.NFeatures(); got != want {
		return nil, fmt.Errorf("feature schema mismatch: artifact expects %d features, extractor produces %d", got, want)
	}

	return &XGBoostModel{ensemble: ensemble}, nil
}

// PredictProba returns the phishing probability for a feature vector in
// canonical order. The loaded transformation maps the raw margin through the
// logistic function, so the output is already a probability.
func (m *XGBoostModel) PredictProba(features []float64) (float64, error) {
	if len(features) != m.ensemble.NFeatures() {
		return 0, fmt.Errorf("expected %d features, got %d", m.ensemble.NFeatures(), len(features))
	}
	return m.ensemble.PredictSingle(features, 0), nil
}
