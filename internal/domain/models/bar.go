package models

import "time"

// Bar is a daily OHLCV record for a symbol.
type Bar struct {
	Date   time.Time
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Tick is a live last-trade observation from the market stream.
type Tick struct {
	Symbol    string
	Timestamp int64
	Price     float64
	Volume    float64
}

// TermPoint is one expiry on the implied-volatility term structure.
type TermPoint struct {
	Expiry time.Time
	Days   int
	IV     float64
}
