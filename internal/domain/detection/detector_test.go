package detection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishguard/phishguard/internal/domain"
	"github.com/phishguard/phishguard/internal/domain/refdata"
)

// stubModel is a fixed-probability classifier for tests. calls counts
// predictions so tests can assert the ML step was skipped.
type stubModel struct {
	prob  float64
	err   error
	calls int
}

func (m *stubModel) PredictProba(features []float64) (float64, error) {
	m.calls++
	return m.prob, m.err
}

func newTestDetector(t *testing.T, model *stubModel) *Detector {
	t.Helper()
	classifier, err := NewVerdictClassifier(0.8, 0.5)
	require.NoError(t, err)

	if model == nil {
		return NewDetector(refdata.Default(), nil, nil, classifier)
	}
	return NewDetector(refdata.Default(), model, nil, classifier)
}

func TestDetector_BlockedURLSkipsModel(t *testing.T) {
	model := &stubModel{prob: 0.0}
	detector := newTestDetector(t, model)

	result := detector.ScanURL("http://paypal-security-alert.com")

	assert.Equal(t, 1.0, result.Score)
	assert.Equal(t, domain.VerdictPhishing, result.Verdict)
	assert.Equal(t, "Blocked by rule", result.Reason)
	assert.True(t, result.Details.RuleResult.Blocked)
	assert.Nil(t, result.Details.MLScore)
	assert.Zero(t, model.calls, "brand blocks must never consult the model")
}

func TestDetector_FusedScoreIsMax(t *testing.T) {
	tests := []struct {
		name          string
		url           string
		mlProb        float64
		expectedScore float64
	}{
		{
			name:          "Model dominates clean URL",
			url:           "http://example.com",
			mlProb:        0.91,
			expectedScore: 0.91,
		},
		{
			name: "Rules dominate confident model",
			// Two keywords + suspicious TLD give rule score 0.8.
			url:           "http://verify-login.xyz",
			mlProb:        0.12,
			expectedScore: 0.8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detector := newTestDetector(t, &stubModel{prob: tt.mlProb})

			result := detector.ScanURL(tt.url)

			assert.InDelta(t, tt.expectedScore, result.Score, 0.0001)
			require.NotNil(t, result.Details.MLScore)
			assert.InDelta(t, tt.mlProb, *result.Details.MLScore, 0.0001)
			assert.False(t, result.Details.MLDegraded)
		})
	}
}

func TestDetector_VerdictFollowsScore(t *testing.T) {
	tests := []struct {
		mlProb   float64
		expected domain.Verdict
	}{
		{0.1, domain.VerdictLegitimate},
		{0.6, domain.VerdictSuspicious},
		{0.95, domain.VerdictPhishing},
	}

	for _, tt := range tests {
		detector := newTestDetector(t, &stubModel{prob: tt.mlProb})
		result := detector.ScanURL("http://example.com")
		assert.Equal(t, tt.expected, result.Verdict, "ml prob %v", tt.mlProb)
	}
}

func TestDetector_MissingModelDegradesToNeutral(t *testing.T) {
	detector := newTestDetector(t, nil)

	result := detector.ScanURL("http://example.com")

	require.NotNil(t, result.Details.MLScore)
	assert.Equal(t, NeutralProbability, *result.Details.MLScore)
	assert.True(t, result.Details.MLDegraded)
	assert.Equal(t, domain.VerdictSuspicious, result.Verdict,
		"neutral probability lands in the suspicious band")
}

func TestDetector_PredictionErrorDegradesToNeutral(t *testing.T) {
	model := &stubModel{err: errors.New("malformed tree")}
	detector := newTestDetector(t, model)

	result := detector.ScanURL("http://example.com")

	require.NotNil(t, result.Details.MLScore)
	assert.Equal(t, NeutralProbability, *result.Details.MLScore)
	assert.True(t, result.Details.MLDegraded)
}

func TestDetector_AllowlistedDomainHasZeroRuleScore(t *testing.T) {
	detector := newTestDetector(t, &stubModel{prob: 0.05})

	result := detector.ScanURL("https://paypal.com/account/settings")

	assert.False(t, result.Details.RuleResult.Blocked)
	assert.Equal(t, 0.0, result.Details.RuleResult.Score)
	assert.Equal(t, domain.VerdictLegitimate, result.Verdict)
}

func TestDetector_ScoreRounding(t *testing.T) {
	detector := newTestDetector(t, &stubModel{prob: 0.123456})

	result := detector.ScanURL("http://example.com")

	assert.Equal(t, 0.1235, result.Score)
}
