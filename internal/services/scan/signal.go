package scan

// Premium-selling signals.
const (
	SignalSell    = "SELL"
	SignalWait    = "WAIT"
	SignalNeutral = "NEUTRAL"
)

// TrackerSignal classifies an IV percentile reading on its own.
func TrackerSignal(ivPercentile float64) string {
	switch {
	case ivPercentile >= 75:
		return SignalSell
	case ivPercentile <= 25:
		return SignalWait
	default:
		return SignalNeutral
	}
}

// ScanSignal additionally requires a positive vol premium before flagging
// SELL: rich percentile with IV below realized is not a selling setup.
func ScanSignal(ivPercentile, premium float64) string {
	switch {
	case ivPercentile >= 75 && premium > 0:
		return SignalSell
	case ivPercentile <= 25:
		return SignalWait
	default:
		return SignalNeutral
	}
}
