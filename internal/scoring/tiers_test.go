package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTier(t *testing.T) {
	tests := []struct {
		score    float64
		expected string
	}{
		{0.0, TierRisky},
		{0.149999, TierRisky},
		{0.15, TierSleeper},
		{0.249999, TierSleeper},
		{0.25, TierLock},
		{0.8, TierLock},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifyTier(tt.score), "score %v", tt.score)
	}
}

// The classifier must be monotonic: a higher score never maps to a
// lower tier.
func TestClassifyTierMonotonic(t *testing.T) {
	prev := -1
	for score := 0.0; score <= 0.8; score += 0.001 {
		rank := TierRank(ClassifyTier(score))
		assert.GreaterOrEqual(t, rank, prev, "tier rank decreased at score %v", score)
		prev = rank
	}
}

func TestTierRank(t *testing.T) {
	assert.Equal(t, 2, TierRank(TierLock))
	assert.Equal(t, 1, TierRank(TierSleeper))
	assert.Equal(t, 0, TierRank(TierRisky))
	assert.Equal(t, -1, TierRank("Unknown"))
}
