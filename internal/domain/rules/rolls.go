// Package rules - rolls.go
// Crit roll and offline time clamp helpers.
package rules

// IsCrit resolves a crit roll. The roll is a uniform draw in [0, 1) supplied
// by the engine's injectable RNG; keeping the comparison here makes the one
// nondeterministic decision in the whole engine a one-line pure function.
func IsCrit(roll, chance float64) bool {
	return roll < chance
}

// ClampOfflineSeconds decides how much away-time is actually simulated.
// Absences below minThreshold are ignored (reconnects, page reloads); the
// rest is capped at the configured ceiling.
func ClampOfflineSeconds(timeAway, minThreshold, limit float64) float64 {
	if timeAway < minThreshold {
		return 0
	}
	if timeAway > limit {
		return limit
	}
	return timeAway
}
