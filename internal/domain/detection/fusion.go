package detection

import (
	"fmt"
	"math"
)

// FusionPolicy combines the rule score and the model score into a single
// confidence value. Exactly one policy is applied uniformly across a
// detector; policies are never mixed per-URL.
type FusionPolicy interface {
	Fuse(ruleScore, mlScore float64) float64
	Name() string
}

// MaxFusion takes the maximum of both signals. This is the default policy: a
// security classifier should minimize false negatives, so if either signal
// independently flags risk the fused score must reflect it. Averaging would
// let a confident rule hit be diluted by an uncertain model score.
type MaxFusion struct{}

// Fuse returns max(ruleScore, mlScore).
func (MaxFusion) Fuse(ruleScore, mlScore float64) float64 {
	return math.Max(ruleScore, mlScore)
}

// Name returns the policy identifier used in configuration.
func (MaxFusion) Name() string { return "max" }

// RulePriorityFusion trusts a near-certain rule score outright and otherwise
// defers entirely to the model. Available as an alternate, explicitly
// configured policy; not the default.
type RulePriorityFusion struct{}

// Fuse returns ruleScore when it exceeds 0.9, else mlScore.
func (RulePriorityFusion) Fuse(ruleScore, mlScore float64) float64 {
	if ruleScore > 0.9 {
		return ruleScore
	}
	return mlScore
}

// Name returns the policy identifier used in configuration.
func (RulePriorityFusion) Name() string { return "priority" }

// FusionPolicyByName resolves a configured policy name. An empty name selects
// the default max policy.
func FusionPolicyByName(name string) (FusionPolicy, error) {
	switch name {
	case "", "max":
		return MaxFusion{}, nil
	case "priority":
		return RulePriorityFusion{}, nil
	default:
		return nil, fmt.Errorf("unknown fusion policy: %q", name)
	}
}
