package scoring

// Confidence tiers ordered Risky < Sleeper < Lock.
const (
	TierLock    = "Lock"
	TierSleeper = "Sleeper"
	TierRisky   = "Risky"
)

// Tier thresholds on the final matchup score. These match the values
// the alerting path has always shipped with.
const (
	lockThreshold    = 0.25
	sleeperThreshold = 0.15
)

// ClassifyTier maps a score to a confidence tier. Total and
// deterministic; monotonic in the score.
func ClassifyTier(score float64) string {
	switch {
	case score >= lockThreshold:
		return TierLock
	case score >= sleeperThreshold:
		return TierSleeper
	default:
		return TierRisky
	}
}

// TierRank orders tiers for sorting and monotonicity checks:
// Risky=0, Sleeper=1, Lock=2. Unknown tiers rank below Risky.
func TierRank(tier string) int {
	switch tier {
	case TierLock:
		return 2
	case TierSleeper:
		return 1
	case TierRisky:
		return 0
	default:
		return -1
	}
}
