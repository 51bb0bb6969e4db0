package models

// Requests for the API endpoints. Defined in domain for consistency and reuse.

type ForecastRequest struct {
	Symbol  string `query:"symbol" json:"symbol" validate:"required"`
	Horizon int    `query:"horizon" json:"horizon" default:"5" validate:"gte=1,lte=63"`
	N       int    `query:"n" json:"n" default:"500" validate:"gte=100,lte=5000"`
}

type RealizedRequest struct {
	Symbol    string `query:"symbol" json:"symbol" validate:"required"`
	Window    int    `query:"window" json:"window" default:"20" validate:"gte=2,lte=252"`
	Estimator string `query:"estimator" json:"estimator" default:"close" validate:"oneof=close parkinson"`
	Raw       bool   `query:"raw" json:"raw"` // skip annualization (close estimator only)
}

type IVRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required"`
	Lookback int    `query:"lookback" json:"lookback" default:"252" validate:"gte=30,lte=2520"`
}

type ScanRequest struct {
	Symbols  string `query:"symbols" json:"symbols" validate:"required"`
	Lookback int    `query:"lookback" json:"lookback" default:"252" validate:"gte=30,lte=2520"`
}

type ScanJobResultRequest struct {
	ID string `query:"id" json:"id" validate:"required"`
}

type CorrRequest struct {
	Symbols   string  `query:"symbols" json:"symbols" validate:"required"`
	Window    int     `query:"window" json:"window" default:"30" validate:"gte=5,lte=252"`
	Threshold float64 `query:"threshold" json:"threshold" default:"0.85" validate:"gt=0,lte=1"`
}

type CandlesRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"300" validate:"gte=1,lte=5000"`
	From   string `query:"from" json:"from"` // RFC3339, YYYY-MM-DD, or unix seconds
	To     string `query:"to" json:"to"`
}
