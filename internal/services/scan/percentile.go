package scan

// PercentileRank returns the percentage of values less than or equal to x.
func PercentileRank(values []float64, x float64) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if v <= x {
			count++
		}
	}
	return 100 * float64(count) / float64(len(values))
}

// IVRank places current inside the [low, high] range as a 0-100 score.
// A flat range scores 50.
func IVRank(current, low, high float64) float64 {
	if high <= low {
		return 50
	}
	return (current - low) / (high - low) * 100
}
