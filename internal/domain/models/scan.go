package models

import "time"

// PremiumRow is one symbol's entry in a vol-premium scan.
type PremiumRow struct {
	Symbol        string
	Spot          float64
	IV            float64
	IVSource      string // "chain" | "hv_proxy"
	RV            float64
	Premium       float64
	PremiumPctile float64
	IVPercentile  float64
	Signal        string
}

// ScanReport is the consolidated result of scanning a symbol universe.
// Per-symbol failures are recorded in Errors and do not abort the scan.
type ScanReport struct {
	Timestamp time.Time
	Lookback  int
	Rows      []PremiumRow
	Errors    map[string]string
}

// Scan job lifecycle states.
const (
	ScanJobQueued = "queued"
	ScanJobDone   = "done"
	ScanJobFailed = "failed"
)

// ScanJobResult is the cached status/outcome of a background scan job.
type ScanJobResult struct {
	ID     string
	Status string
	Error  string      `json:",omitempty"`
	Report *ScanReport `json:",omitempty"`
}

// IVSnapshot places a symbol's current implied vol inside its own history.
type IVSnapshot struct {
	Symbol       string
	Timestamp    time.Time
	Spot         float64
	ATMIV        float64
	IVSource     string // "chain" | "hv_proxy"
	HVCurrent    float64
	IVPercentile float64
	IVRank       float64
	Lookback     int
	Signal       string
	Term         []TermPoint
}

// CorrPair is one symbol pair's correlation regime.
type CorrPair struct {
	A       string
	B       string
	Current float64
	Average float64
	Regime  string // "HIGH" | "NORMAL"
}

// CorrReport is a pairwise correlation matrix plus the regime read on it.
type CorrReport struct {
	Symbols []string
	Window  int
	Matrix  [][]float64
	Pairs   []CorrPair
	Current float64 // average off-diagonal correlation, trailing window
	Average float64 // average off-diagonal correlation, full sample
	Regime  string  // "HIGH" when any pair crosses the threshold
}
