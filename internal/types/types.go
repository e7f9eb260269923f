package types

import "math"

// Candle is one trading day of OHLCV data.
type Candle struct {
	Ts                          int64
	Open, High, Low, Close, Vol float64
}

// Valid reports whether every OHLCV field is a finite, non-negative number.
// Rows failing this are dropped before feature construction.
func (c Candle) Valid() bool {
	for _, v := range []float64{c.Open, c.High, c.Low, c.Close, c.Vol} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	return true
}

// Horizons are the forward-return windows, in trading days. The model
// predicts one fractional return per horizon, in this order.
var Horizons = [4]int{15, 30, 60, 90}

// FeatureVector is the single feature contract shared by training and
// inference. Column order is fixed; the model artifact embeds it and the
// loader rejects drift.
type FeatureVector struct {
	Close      float64 `json:"close"`
	Ret1d      float64 `json:"ret_1d"`
	MA5        float64 `json:"ma_5"`
	MA10       float64 `json:"ma_10"`
	MA20       float64 `json:"ma_20"`
	MARatio520 float64 `json:"ma_ratio_5_20"`
	RSI14      float64 `json:"rsi_14"`
	ATR14      float64 `json:"atr_14"`
}

// FeatureColumns returns the canonical feature column names in model order.
func FeatureColumns() []string {
	return []string{
		"Close", "ret_1d", "ma_5", "ma_10", "ma_20",
		"ma_ratio_5_20", "rsi_14", "atr_14",
	}
}

// Values returns the vector as a slice in the same order as FeatureColumns.
func (f FeatureVector) Values() []float64 {
	return []float64{
		f.Close, f.Ret1d, f.MA5, f.MA10, f.MA20,
		f.MARatio520, f.RSI14, f.ATR14,
	}
}

// Finite reports whether every field is finite (no NaN/Inf).
func (f FeatureVector) Finite() bool {
	for _, v := range f.Values() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Example is one labeled training row: features at time t plus the realized
// forward return for each horizon.
type Example struct {
	Features FeatureVector
	Targets  [4]float64 // fractional returns, one per Horizons entry
}

// Prediction is the inference output for one symbol at one point in time.
// Immutable once built, except that the scan coordinator relabels the
// rationale of the two selected extremes.
type Prediction struct {
	Symbol    string  `json:"symbol"`
	LastPrice float64 `json:"last_price"`
	Upside15d float64 `json:"upside_15d"`
	Upside30d float64 `json:"upside_30d"`
	Upside60d float64 `json:"upside_60d"`
	Upside90d float64 `json:"upside_90d"`
	Target90d float64 `json:"target_90d"`
	StopLoss  float64 `json:"stop_loss"`
	Sentiment float64 `json:"sentiment"`
	Rationale string  `json:"rationale"`
}

// ScanResult is what a full scan produces: the two extremes by predicted
// 30-day upside plus every successful per-symbol prediction.
type ScanResult struct {
	TopPicks []Prediction `json:"top_picks"`
	All      []Prediction `json:"all_results"`
}
