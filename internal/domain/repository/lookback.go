package repository

// Lookback bounds for bar queries, in trading days.
const (
	MinLookback     = 30
	MaxLookback     = 2520
	DefaultLookback = 252
)

// NormalizeLookback clamps n into the supported range (or default when unset).
func NormalizeLookback(n int) int {
	if n == 0 {
		return DefaultLookback
	}
	if n < MinLookback {
		return MinLookback
	}
	if n > MaxLookback {
		return MaxLookback
	}
	return n
}
