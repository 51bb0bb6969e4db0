package marketdata

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"VolPulse/internal/domain/models"
	domsvc "VolPulse/internal/domain/service"
	xhttp "VolPulse/pkg/http"
)

// ivSanityCap rejects chain IVs that are obviously junk quotes.
const ivSanityCap = 10.0

// maxTermPoints limits the term structure to the near expirations.
const maxTermPoints = 8

// Client is a REST market-data client for daily candles and option chains.
// Spot prices come from the live price book when available, falling back to
// the chain's own last trade price.
type Client struct {
	baseURL string
	apiKey  string
	http    *xhttp.Client
	spots   *PriceBook
}

// NewClient creates a market-data REST client.
func NewClient(baseURL, apiKey string, timeout time.Duration, spots *PriceBook) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
		spots:   spots,
	}
}

var _ domsvc.MarketData = (*Client)(nil)

type candleResponse struct {
	Status string    `json:"s"`
	T      []int64   `json:"t"`
	O      []float64 `json:"o"`
	H      []float64 `json:"h"`
	L      []float64 `json:"l"`
	C      []float64 `json:"c"`
	V      []float64 `json:"v"`
}

// DailyBars fetches daily OHLCV candles for [from, to].
func (c *Client) DailyBars(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	var resp candleResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/stock/candle",
		QueryParams: map[string][]string{
			"symbol":     {symbol},
			"resolution": {"D"},
			"from":       {strconv.FormatInt(from.Unix(), 10)},
			"to":         {strconv.FormatInt(to.Unix(), 10)},
			"token":      {c.apiKey},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("daily candles %s: %w", symbol, err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("daily candles %s: status %q", symbol, resp.Status)
	}
	n := len(resp.T)
	if len(resp.O) != n || len(resp.H) != n || len(resp.L) != n || len(resp.C) != n {
		return nil, fmt.Errorf("daily candles %s: ragged response", symbol)
	}
	bars := make([]models.Bar, 0, n)
	for i := 0; i < n; i++ {
		b := models.Bar{
			Date:   time.Unix(resp.T[i], 0).UTC(),
			Symbol: symbol,
			Open:   resp.O[i],
			High:   resp.H[i],
			Low:    resp.L[i],
			Close:  resp.C[i],
		}
		if i < len(resp.V) {
			b.Volume = resp.V[i]
		}
		bars = append(bars, b)
	}
	return bars, nil
}

type chainOption struct {
	Strike            float64 `json:"strike"`
	ImpliedVolatility float64 `json:"impliedVolatility"`
}

type chainExpiry struct {
	ExpirationDate string `json:"expirationDate"`
	Options        struct {
		Call []chainOption `json:"CALL"`
		Put  []chainOption `json:"PUT"`
	} `json:"options"`
}

type chainResponse struct {
	Data           []chainExpiry `json:"data"`
	LastTradePrice float64       `json:"lastTradePrice"`
}

func (c *Client) fetchChain(ctx context.Context, symbol string) (*chainResponse, error) {
	var resp chainResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/stock/option-chain",
		QueryParams: map[string][]string{
			"symbol": {symbol},
			"token":  {c.apiKey},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("option chain %s: %w", symbol, err)
	}
	return &resp, nil
}

// ATMImpliedVol returns the at-the-money implied vol at the nearest expiry.
// A missing or unusable chain is reported as ok=false, not an error.
func (c *Client) ATMImpliedVol(ctx context.Context, symbol string) (float64, bool, error) {
	chain, err := c.fetchChain(ctx, symbol)
	if err != nil {
		return 0, false, err
	}
	if len(chain.Data) == 0 {
		return 0, false, nil
	}
	spot := c.spot(symbol, chain)
	if spot <= 0 {
		return 0, false, nil
	}
	sortExpiries(chain.Data)
	iv, ok := atmIV(chain.Data[0], spot)
	return iv, ok, nil
}

// TermStructure returns ATM implied vols across the near expirations.
func (c *Client) TermStructure(ctx context.Context, symbol string) ([]models.TermPoint, error) {
	chain, err := c.fetchChain(ctx, symbol)
	if err != nil {
		return nil, err
	}
	spot := c.spot(symbol, chain)
	if spot <= 0 || len(chain.Data) == 0 {
		return nil, nil
	}
	sortExpiries(chain.Data)
	now := time.Now().UTC()
	out := make([]models.TermPoint, 0, maxTermPoints)
	for _, exp := range chain.Data {
		if len(out) == maxTermPoints {
			break
		}
		expiry, err := time.Parse("2006-01-02", exp.ExpirationDate)
		if err != nil || expiry.Before(now) {
			continue
		}
		iv, ok := atmIV(exp, spot)
		if !ok {
			continue
		}
		out = append(out, models.TermPoint{
			Expiry: expiry,
			Days:   int(expiry.Sub(now).Hours() / 24),
			IV:     iv,
		})
	}
	return out, nil
}

func (c *Client) spot(symbol string, chain *chainResponse) float64 {
	if c.spots != nil {
		if p, ok := c.spots.Get(symbol); ok {
			return p
		}
	}
	return chain.LastTradePrice
}

func sortExpiries(data []chainExpiry) {
	sort.Slice(data, func(i, j int) bool {
		return data[i].ExpirationDate < data[j].ExpirationDate
	})
}

// atmIV picks the call nearest the spot strike; falls back to puts when the
// call side is empty.
func atmIV(exp chainExpiry, spot float64) (float64, bool) {
	side := exp.Options.Call
	if len(side) == 0 {
		side = exp.Options.Put
	}
	best := math.Inf(1)
	var iv float64
	for _, o := range side {
		if o.ImpliedVolatility <= 0 || o.ImpliedVolatility >= ivSanityCap {
			continue
		}
		if d := math.Abs(o.Strike - spot); d < best {
			best = d
			iv = o.ImpliedVolatility
		}
	}
	return iv, !math.IsInf(best, 1)
}
