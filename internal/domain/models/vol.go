package models

// GarchFit is the outcome of a GARCH(1,1) estimation: the fitted parameters,
// the in-sample one-step conditional-variance path (last element is the
// current variance), and the objective value at the optimum.
type GarchFit struct {
	Omega        float64
	Alpha        float64
	Beta         float64
	VariancePath []float64
	NegLogLik    float64
}

// ForecastResult summarizes a GARCH(1,1) volatility forecast. All vol fields
// are annualized decimal fractions (0.20 = 20%).
type ForecastResult struct {
	Symbol      string
	Horizon     int     // trading days ahead
	CurrentVol  float64
	ForecastVol float64
	LongRunVol  float64
	Persistence float64
	HalfLife    float64 // trading days; +Inf when persistence >= 1
}

// RealizedResult is a point realized-volatility estimate.
type RealizedResult struct {
	Symbol     string
	Estimator  string // "close" | "parkinson"
	Window     int
	Vol        float64
	Annualized bool
}
