package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPitchMatchupScore(t *testing.T) {
	tests := []struct {
		name       string
		pitchMix   map[string]float64
		isoByPitch map[string]float64
		expected   float64
	}{
		{
			name:     "weighted average over full mix",
			pitchMix: map[string]float64{"4-Seam Fastball": 0.6, "Slider": 0.4},
			isoByPitch: map[string]float64{
				"4-Seam Fastball": 0.300,
				"Slider":          0.100,
			},
			expected: 0.6*0.300 + 0.4*0.100,
		},
		{
			name:       "unknown pitch uses fallback",
			pitchMix:   map[string]float64{"Knuckleball": 1.0},
			isoByPitch: map[string]float64{"Slider": 0.2},
			expected:   fallbackISO,
		},
		{
			name:     "partial fallback",
			pitchMix: map[string]float64{"4-Seam Fastball": 0.5, "Splitter": 0.5},
			isoByPitch: map[string]float64{
				"4-Seam Fastball": 0.250,
			},
			expected: 0.5*0.250 + 0.5*fallbackISO,
		},
		{
			name:       "empty mix returns fallback",
			pitchMix:   map[string]float64{},
			isoByPitch: map[string]float64{"Slider": 0.2},
			expected:   fallbackISO,
		},
		{
			name:     "unnormalized usage fractions",
			pitchMix: map[string]float64{"Sinker": 2.0, "Changeup": 2.0},
			isoByPitch: map[string]float64{
				"Sinker":   0.1,
				"Changeup": 0.3,
			},
			expected: 0.2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, PitchMatchupScore(tt.pitchMix, tt.isoByPitch), 1e-9)
		})
	}
}
