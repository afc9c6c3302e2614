package scoring

// fallbackISO stands in for pitch types the batter has no sample
// against, and for empty pitch mixes.
const fallbackISO = 0.150

// PitchMatchupScore weights the batter's ISO against each pitch type
// by how often the pitcher throws it. Usage fractions that do not sum
// to one are normalized away by the division.
func PitchMatchupScore(pitchMix map[string]float64, isoByPitch map[string]float64) float64 {
	var score, totalWeight float64

	for pitchType, pct := range pitchMix {
		iso, ok := isoByPitch[pitchType]
		if !ok {
			iso = fallbackISO
		}
		score += iso * pct
		totalWeight += pct
	}

	if totalWeight == 0 {
		return fallbackISO
	}

	return score / totalWeight
}
