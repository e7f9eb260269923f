// Package features turns a daily price series into the fixed feature vector
// shared by the training and inference pipelines.
package features

import (
	"swingbot/internal/ta"
	"swingbot/internal/types"
)

const (
	maFast = 5
	maMid  = 10
	maSlow = 20

	rsiPeriod = 14
	atrPeriod = 14

	// WarmupBars is the count of leading bars that never produce a defined
	// feature row. ma_20 is the binding constraint: the first fully-defined
	// row is at index WarmupBars.
	WarmupBars = maSlow - 1

	// MinBars is the shortest series that can yield a feature vector.
	MinBars = WarmupBars + 1
)

// Latest computes the feature vector for the final bar of the series, plus
// the last close and last ATR value the caller needs for stop-loss math.
// ok is false when the series is too short or any field is non-finite.
func Latest(bars []types.Candle) (vec types.FeatureVector, lastClose, lastATR float64, ok bool) {
	vecs := Frame(bars)
	if len(vecs) == 0 {
		return types.FeatureVector{}, 0, 0, false
	}
	last := vecs[len(vecs)-1]
	if !last.Finite() {
		return types.FeatureVector{}, 0, 0, false
	}
	return last, last.Close, last.ATR14, true
}

// Frame computes one feature vector per bar past the warm-up window, in bar
// order. Rows with any missing OHLCV field are dropped before computation.
// Vectors with non-finite fields are excluded, so a caller indexing into the
// result must not assume a fixed offset from the input.
func Frame(bars []types.Candle) []types.FeatureVector {
	bars = dropInvalid(bars)
	if len(bars) < MinBars {
		return nil
	}

	closes := make([]float64, len(bars))
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		highs[i] = b.High
		lows[i] = b.Low
	}

	ret1 := ta.Ret1dSeries(closes)
	ma5 := ta.SMASeries(closes, maFast)
	ma10 := ta.SMASeries(closes, maMid)
	ma20 := ta.SMASeries(closes, maSlow)
	rsi := ta.RSISeries(closes, rsiPeriod)
	atr := ta.ATRSeries(highs, lows, closes, atrPeriod)

	out := make([]types.FeatureVector, 0, len(bars)-WarmupBars)
	for t := WarmupBars; t < len(bars); t++ {
		v := types.FeatureVector{
			Close:      closes[t],
			Ret1d:      ret1[t],
			MA5:        ma5[t],
			MA10:       ma10[t],
			MA20:       ma20[t],
			MARatio520: ma5[t] / ma20[t],
			RSI14:      rsi[t],
			ATR14:      atr[t],
		}
		if !v.Finite() {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Training produces one labeled example per date where both the trailing
// warm-up window and the full forward window for every horizon are available
// inside the series. Rows near the end lacking the max-horizon lookahead are
// dropped.
func Training(bars []types.Candle) []types.Example {
	bars = dropInvalid(bars)
	maxH := types.Horizons[len(types.Horizons)-1]
	if len(bars) < MinBars+maxH {
		return nil
	}

	closes := make([]float64, len(bars))
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		highs[i] = b.High
		lows[i] = b.Low
	}

	ret1 := ta.Ret1dSeries(closes)
	ma5 := ta.SMASeries(closes, maFast)
	ma10 := ta.SMASeries(closes, maMid)
	ma20 := ta.SMASeries(closes, maSlow)
	rsi := ta.RSISeries(closes, rsiPeriod)
	atr := ta.ATRSeries(highs, lows, closes, atrPeriod)

	out := make([]types.Example, 0, len(bars)-WarmupBars-maxH)
	for t := WarmupBars; t+maxH < len(bars); t++ {
		v := types.FeatureVector{
			Close:      closes[t],
			Ret1d:      ret1[t],
			MA5:        ma5[t],
			MA10:       ma10[t],
			MA20:       ma20[t],
			MARatio520: ma5[t] / ma20[t],
			RSI14:      rsi[t],
			ATR14:      atr[t],
		}
		if !v.Finite() {
			continue
		}
		ex := types.Example{Features: v}
		usable := true
		for i, h := range types.Horizons {
			if closes[t] == 0 {
				usable = false
				break
			}
			ex.Targets[i] = closes[t+h]/closes[t] - 1
		}
		if !usable {
			continue
		}
		out = append(out, ex)
	}
	return out
}

func dropInvalid(bars []types.Candle) []types.Candle {
	clean := bars[:0:0]
	for _, b := range bars {
		if b.Valid() {
			clean = append(clean, b)
		}
	}
	return clean
}
