package scoring

// PlatoonAdvantage scores the handedness matchup on a 0-1 scale.
// Switch hitters always bat from the favorable side; opposite-handed
// matchups favor the batter, same-handed favor the pitcher.
func PlatoonAdvantage(batterHand, pitcherHand string) float64 {
	if batterHand == "S" {
		return 0.8
	}
	if batterHand == "L" && pitcherHand == "R" {
		return 0.6
	}
	if batterHand == "R" && pitcherHand == "L" {
		return 0.7
	}
	return 0.4
}
