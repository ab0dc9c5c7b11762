package detection

import (
	"fmt"

	"github.com/phishguard/phishguard/internal/domain"
)

// VerdictClassifier maps a fused score to the three-level verdict. It is a
// pure, stateless threshold function; the thresholds come from configuration
// so operators can tune sensitivity without touching rule logic.
type VerdictClassifier struct {
	phishingThreshold   float64
	suspiciousThreshold float64
}

// NewVerdictClassifier creates a classifier with the given thresholds. The
// phishing threshold must not be below the suspicious one, otherwise the
// bands would overlap.
func NewVerdictClassifier(phishingThreshold, suspiciousThreshold float64) (*VerdictClassifier, error) {
	if phishingThreshold < suspiciousThreshold {
		return nil, fmt.Errorf("phishing threshold %.2f below suspicious threshold %.2f",
			phishingThreshold, suspiciousThreshold)
	}
	return &VerdictClassifier{
		phishingThreshold:   phishingThreshold,
		suspiciousThreshold: suspiciousThreshold,
	}, nil
}

// Classify returns the verdict for a fused score.
func (c *VerdictClassifier) Classify(score float64) domain.Verdict {
	switch {
	case score >= c.phishingThreshold:
		return domain.VerdictPhishing
	case score >= c.suspiciousThreshold:
		return domain.VerdictSuspicious
	default:
		return domain.VerdictLegitimate
	}
}
