package scan

import (
	"VolPulse/internal/services/vol"
)

// Default windows for the premium calculation, in trading days.
const (
	DefaultHVWindow   = 20
	DefaultFastWindow = 10
	DefaultSlowWindow = 30
)

// minProxyHistory is the smallest proxy distribution worth ranking against.
// Below it the percentile reads neutral instead of pretending confidence.
const minProxyHistory = 20

// PremiumStats captures how rich current implied vol is against realized.
type PremiumStats struct {
	RV            float64
	Premium       float64
	PremiumPctile float64
}

// Premium compares currentIV against the trailing realized vol and ranks the
// spread inside a fast-minus-slow historical-vol proxy distribution. True
// historical IV is rarely available from free data, so the fast-slow HV
// spread stands in for the premium history.
func Premium(closes []float64, currentIV float64, fastW, slowW, hvW int) (PremiumStats, error) {
	hv := HVSeries(closes, hvW)
	if len(hv) == 0 {
		return PremiumStats{}, &vol.InsufficientDataError{Required: hvW + 1, Actual: len(closes)}
	}
	rv := hv[len(hv)-1]
	premium := currentIV - rv

	fast := HVSeries(closes, fastW)
	slow := HVSeries(closes, slowW)
	n := len(fast)
	if len(slow) < n {
		n = len(slow)
	}
	if n < minProxyHistory {
		return PremiumStats{RV: rv, Premium: premium, PremiumPctile: 50}, nil
	}
	// align the two series on their common tail
	proxy := make([]float64, n)
	for i := 0; i < n; i++ {
		proxy[i] = fast[len(fast)-n+i] - slow[len(slow)-n+i]
	}
	return PremiumStats{
		RV:            rv,
		Premium:       premium,
		PremiumPctile: PercentileRank(proxy, premium),
	}, nil
}
