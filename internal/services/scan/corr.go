package scan

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"VolPulse/internal/services/vol"
)

// Correlation regimes.
const (
	RegimeHigh   = "HIGH"
	RegimeNormal = "NORMAL"
)

// CorrMatrix computes the pairwise Pearson correlation of the trailing
// window of each return series. Row/column order follows symbols.
func CorrMatrix(symbols []string, returns map[string][]float64, window int) ([][]float64, error) {
	if len(symbols) < 2 {
		return nil, &vol.InvalidInputError{Reason: "at least 2 symbols required"}
	}
	tails := make([][]float64, len(symbols))
	for i, sym := range symbols {
		rs, ok := returns[sym]
		if !ok {
			return nil, &vol.InvalidInputError{Reason: fmt.Sprintf("no return series for %s", sym)}
		}
		if len(rs) < window {
			return nil, &vol.InsufficientDataError{Required: window, Actual: len(rs)}
		}
		tails[i] = rs[len(rs)-window:]
	}
	m := make([][]float64, len(symbols))
	for i := range m {
		m[i] = make([]float64, len(symbols))
		m[i][i] = 1
	}
	for i := 0; i < len(symbols); i++ {
		for j := i + 1; j < len(symbols); j++ {
			c := stat.Correlation(tails[i], tails[j], nil)
			m[i][j] = c
			m[j][i] = c
		}
	}
	return m, nil
}

// CorrPair is the regime read on one symbol pair.
type CorrPair struct {
	A       string
	B       string
	Current float64
	Average float64
	Regime  string
}

// CorrRegime holds the per-pair reads plus basket-level averages. Regime is
// HIGH when any pair's recent correlation crosses the threshold.
type CorrRegime struct {
	Pairs   []CorrPair
	Current float64
	Average float64
	Regime  string
}

// DetectCorrRegime compares each pair's correlation over the recent window
// against its full-sample level and flags the pairs whose recent correlation
// crosses the threshold.
func DetectCorrRegime(symbols []string, returns map[string][]float64, window int, threshold float64) (CorrRegime, error) {
	recent, err := CorrMatrix(symbols, returns, window)
	if err != nil {
		return CorrRegime{}, err
	}
	full := len(returns[symbols[0]])
	for _, sym := range symbols[1:] {
		if len(returns[sym]) < full {
			full = len(returns[sym])
		}
	}
	whole, err := CorrMatrix(symbols, returns, full)
	if err != nil {
		return CorrRegime{}, err
	}
	out := CorrRegime{
		Current: avgOffDiagonal(recent),
		Average: avgOffDiagonal(whole),
		Regime:  RegimeNormal,
	}
	for i := 0; i < len(symbols); i++ {
		for j := i + 1; j < len(symbols); j++ {
			pair := CorrPair{
				A:       symbols[i],
				B:       symbols[j],
				Current: recent[i][j],
				Average: whole[i][j],
				Regime:  RegimeNormal,
			}
			if pair.Current >= threshold {
				pair.Regime = RegimeHigh
				out.Regime = RegimeHigh
			}
			out.Pairs = append(out.Pairs, pair)
		}
	}
	return out, nil
}

func avgOffDiagonal(m [][]float64) float64 {
	var sum float64
	var count int
	for i := range m {
		for j := range m[i] {
			if i == j {
				continue
			}
			sum += m[i][j]
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
