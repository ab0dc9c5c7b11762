package detection

import (
	"math"

	"github.com/phishguard/phishguard/internal/domain"
	"github.com/phishguard/phishguard/internal/domain/refdata"
	"github.com/phishguard/phishguard/internal/ports"
)

// Detector is the atomic scan primitive: URL in, verdict + score + details
// out. It composes the rules engine, the feature extractor, the probability
// model and the verdict classifier.
//
// All state is read-only after construction, so a single Detector serves any
// number of concurrent scans without coordination.
type Detector struct {
	rules      *RulesEngine
	ml         *MLEngine
	fusion     FusionPolicy
	classifier *VerdictClassifier
}

// NewDetector wires up a detector. model may be nil (predictions degrade to
// the neutral probability) and fusion may be nil (defaults to max fusion).
func NewDetector(lists *refdata.Lists, model ports.Model, fusion FusionPolicy, classifier *VerdictClassifier) *Detector {
	if fusion == nil {
		fusion = MaxFusion{}
	}
	return &Detector{
		rules:      NewRulesEngine(lists),
		ml:         NewMLEngine(model, NewFeatureExtractor(lists)),
		fusion:     fusion,
		classifier: classifier,
	}
}

// ScanURL classifies a single URL.
//
// The rules engine runs first. A rule block returns immediately with score
// 1.0 and verdict PHISHING; the ML step is skipped entirely, so brand
// impersonation is never second-guessed by the model. Otherwise the rule and
// model scores are fused and thresholded into a verdict.
func (d *Detector) ScanURL(rawURL string) domain.ScanResult {
	ruleResult := d.rules.Evaluate(rawURL)

	if ruleResult.Blocked {
		return domain.ScanResult{
			URL:     rawURL,
			Score:   1.0,
			Verdict: domain.VerdictPhishing,
			Reason:  "Blocked by rule",
			Details: domain.ScanDetails{RuleResult: ruleResult},
		}
	}

	mlScore, degraded := d.ml.Predict(rawURL)
	fused := d.fusion.Fuse(ruleResult.Score, mlScore)

	mlRounded := round4(mlScore)
	return domain.ScanResult{
		URL:     rawURL,
		Score:   round4(fused),
		Verdict: d.classifier.Classify(fused),
		Details: domain.ScanDetails{
			MLScore:    &mlRounded,
			MLDegraded: degraded,
			RuleResult: ruleResult,
		},
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
