package scan

import (
	"math"
	"testing"

	"VolPulse/internal/services/vol"
)

// syntheticPrices builds a deterministic wavy price path around 100.
func syntheticPrices(n int) []float64 {
	out := make([]float64, n)
	p := 100.0
	for i := range out {
		p *= 1 + 0.01*math.Sin(float64(i)*0.7)
		out[i] = p
	}
	return out
}

func TestHVSeriesLength(t *testing.T) {
	prices := syntheticPrices(60)
	hv := HVSeries(prices, 20)
	want := len(prices) - 1 - 20 + 1
	if len(hv) != want {
		t.Fatalf("series length = %d, want %d", len(hv), want)
	}
	for i, v := range hv {
		if v < 0 || math.IsNaN(v) {
			t.Fatalf("hv[%d] = %v, want non-negative", i, v)
		}
	}
}

func TestHVSeriesTooShort(t *testing.T) {
	if hv := HVSeries(syntheticPrices(10), 20); hv != nil {
		t.Errorf("expected nil for short series, got %v", hv)
	}
}

func TestPercentileRank(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	cases := []struct {
		x    float64
		want float64
	}{
		{0, 0},
		{1, 20},
		{3, 60},
		{5, 100},
		{10, 100},
	}
	for _, c := range cases {
		if got := PercentileRank(values, c.x); got != c.want {
			t.Errorf("PercentileRank(%v) = %v, want %v", c.x, got, c.want)
		}
	}
	if got := PercentileRank(nil, 1); got != 0 {
		t.Errorf("PercentileRank(empty) = %v, want 0", got)
	}
}

func TestIVRank(t *testing.T) {
	if got := IVRank(0.3, 0.2, 0.4); got != 50 {
		t.Errorf("midpoint rank = %v, want 50", got)
	}
	if got := IVRank(0.4, 0.2, 0.4); got != 100 {
		t.Errorf("top rank = %v, want 100", got)
	}
	if got := IVRank(0.3, 0.3, 0.3); got != 50 {
		t.Errorf("flat range rank = %v, want 50", got)
	}
}

func TestSignals(t *testing.T) {
	cases := []struct {
		pctile  float64
		premium float64
		want    string
	}{
		{90, 0.05, SignalSell},
		{90, -0.05, SignalNeutral},
		{10, 0.05, SignalWait},
		{50, 0.05, SignalNeutral},
	}
	for _, c := range cases {
		if got := ScanSignal(c.pctile, c.premium); got != c.want {
			t.Errorf("ScanSignal(%v, %v) = %q, want %q", c.pctile, c.premium, got, c.want)
		}
	}
	if got := TrackerSignal(90); got != SignalSell {
		t.Errorf("TrackerSignal(90) = %q, want %q", got, SignalSell)
	}
	if got := TrackerSignal(10); got != SignalWait {
		t.Errorf("TrackerSignal(10) = %q, want %q", got, SignalWait)
	}
}

func TestPremiumRichIV(t *testing.T) {
	prices := syntheticPrices(300)
	stats, err := Premium(prices, 2.0, DefaultFastWindow, DefaultSlowWindow, DefaultHVWindow)
	if err != nil {
		t.Fatalf("Premium: %v", err)
	}
	if stats.Premium <= 0 {
		t.Errorf("premium = %v, want > 0 for an absurdly rich IV", stats.Premium)
	}
	if stats.PremiumPctile != 100 {
		t.Errorf("premium percentile = %v, want 100", stats.PremiumPctile)
	}
	if stats.RV <= 0 {
		t.Errorf("rv = %v, want > 0", stats.RV)
	}
}

func TestPremiumThinProxyReadsNeutral(t *testing.T) {
	// 35 closes leave only a handful of fast-slow spread points, too few
	// to rank against with any confidence
	stats, err := Premium(syntheticPrices(35), 0.5, DefaultFastWindow, DefaultSlowWindow, DefaultHVWindow)
	if err != nil {
		t.Fatalf("Premium: %v", err)
	}
	if stats.PremiumPctile != 50 {
		t.Errorf("premium percentile = %v, want neutral 50 on thin proxy history", stats.PremiumPctile)
	}
	if stats.RV <= 0 {
		t.Errorf("rv = %v, want > 0", stats.RV)
	}
}

func TestPremiumTooShort(t *testing.T) {
	_, err := Premium(syntheticPrices(15), 0.3, DefaultFastWindow, DefaultSlowWindow, DefaultHVWindow)
	if !vol.IsInsufficientData(err) {
		t.Fatalf("expected insufficient data, got %v", err)
	}
}

func TestCorrMatrixExtremes(t *testing.T) {
	base := make([]float64, 80)
	inverted := make([]float64, 80)
	for i := range base {
		base[i] = math.Sin(float64(i) * 0.5)
		inverted[i] = -base[i]
	}
	returns := map[string][]float64{"A": base, "B": base, "C": inverted}

	m, err := CorrMatrix([]string{"A", "B", "C"}, returns, 30)
	if err != nil {
		t.Fatalf("CorrMatrix: %v", err)
	}
	if math.Abs(m[0][1]-1) > 1e-10 {
		t.Errorf("corr(A,B) = %v, want 1", m[0][1])
	}
	if math.Abs(m[0][2]+1) > 1e-10 {
		t.Errorf("corr(A,C) = %v, want -1", m[0][2])
	}
	if m[1][2] != m[2][1] {
		t.Errorf("matrix not symmetric: %v vs %v", m[1][2], m[2][1])
	}
}

func TestDetectCorrRegime(t *testing.T) {
	base := make([]float64, 80)
	for i := range base {
		base[i] = math.Sin(float64(i) * 0.5)
	}
	returns := map[string][]float64{"A": base, "B": base}
	regime, err := DetectCorrRegime([]string{"A", "B"}, returns, 30, 0.85)
	if err != nil {
		t.Fatalf("DetectCorrRegime: %v", err)
	}
	if regime.Regime != RegimeHigh {
		t.Errorf("regime = %q, want %q for identical series", regime.Regime, RegimeHigh)
	}
	if math.Abs(regime.Current-1) > 1e-10 {
		t.Errorf("current corr = %v, want 1", regime.Current)
	}
	if len(regime.Pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(regime.Pairs))
	}
	p := regime.Pairs[0]
	if p.A != "A" || p.B != "B" || p.Regime != RegimeHigh {
		t.Errorf("unexpected pair %+v", p)
	}
}

func TestDetectCorrRegimeNamesTheHotPair(t *testing.T) {
	base := make([]float64, 80)
	inverted := make([]float64, 80)
	for i := range base {
		base[i] = math.Sin(float64(i) * 0.5)
		inverted[i] = -base[i]
	}
	returns := map[string][]float64{"A": base, "B": base, "C": inverted}

	regime, err := DetectCorrRegime([]string{"A", "B", "C"}, returns, 30, 0.85)
	if err != nil {
		t.Fatalf("DetectCorrRegime: %v", err)
	}
	if len(regime.Pairs) != 3 {
		t.Fatalf("expected 3 pairs, got %d", len(regime.Pairs))
	}
	byPair := make(map[string]CorrPair, len(regime.Pairs))
	for _, p := range regime.Pairs {
		byPair[p.A+"-"+p.B] = p
	}
	if byPair["A-B"].Regime != RegimeHigh {
		t.Errorf("A-B regime = %q, want %q", byPair["A-B"].Regime, RegimeHigh)
	}
	if byPair["A-C"].Regime != RegimeNormal {
		t.Errorf("A-C regime = %q, want %q", byPair["A-C"].Regime, RegimeNormal)
	}
	if regime.Regime != RegimeHigh {
		t.Errorf("basket regime = %q, want %q when one pair is hot", regime.Regime, RegimeHigh)
	}
}

func TestCorrMatrixInsufficientData(t *testing.T) {
	returns := map[string][]float64{"A": make([]float64, 10), "B": make([]float64, 10)}
	_, err := CorrMatrix([]string{"A", "B"}, returns, 30)
	if !vol.IsInsufficientData(err) {
		t.Fatalf("expected insufficient data, got %v", err)
	}
}
