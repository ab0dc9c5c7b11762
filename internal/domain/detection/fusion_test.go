package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxFusion(t *testing.T) {
	tests := []struct {
		name     string
		rule     float64
		ml       float64
		expected float64
	}{
		{"Rule dominates", 0.9, 0.2, 0.9},
		{"Model dominates", 0.1, 0.85, 0.85},
		{"Equal scores", 0.5, 0.5, 0.5},
		{"Both zero", 0.0, 0.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MaxFusion{}.Fuse(tt.rule, tt.ml))
		})
	}
}

func TestRulePriorityFusion(t *testing.T) {
	fusion := RulePriorityFusion{}

	// Near-certain rule score wins outright.
	assert.Equal(t, 0.95, fusion.Fuse(0.95, 0.1))
	// Anything else defers to the model, even when the rule score is higher.
	assert.Equal(t, 0.1, fusion.Fuse(0.9, 0.1))
	assert.Equal(t, 0.7, fusion.Fuse(0.0, 0.7))
}

func TestFusionPolicyByName(t *testing.T) {
	policy, err := FusionPolicyByName("")
	require.NoError(t, err)
	assert.Equal(t, "max", policy.Name())

	policy, err = FusionPolicyByName("priority")
	require.NoError(t, err)
	assert.Equal(t, "priority", policy.Name())

	_, err = FusionPolicyByName("average")
	assert.Error(t, err)
}
