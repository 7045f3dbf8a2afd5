package layout

// Linear congruential constants for the jitter hash.
const (
	jitterMul    = 9301
	jitterInc    = 49297
	jitterMod    = 233280
	JitterSpread = 30.0
)

// JitterSeed folds a date into one integer. Missing month or day count as 0.
func JitterSeed(year int, month, day *int) int {
	seed := year * 10000
	if month != nil {
		seed += *month * 100
	}
	if day != nil {
		seed += *day
	}
	return seed
}

// Jitter returns a deterministic vertical offset in [-15, 15) for a date.
// It only nudges nodes apart visually; equal dates share a value and
// different dates may collide.
func Jitter(year int, month, day *int) float64 {
	seed := JitterSeed(year, month, day)
	r := (seed*jitterMul + jitterInc) % jitterMod
	if r < 0 {
		r += jitterMod
	}
	return float64(r)/jitterMod*JitterSpread - JitterSpread/2
}
