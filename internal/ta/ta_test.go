package ta

import (
	"math"
	"testing"
)

func TestSMASeries(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5}
	out := SMASeries(vals, 3)

	if len(out) != len(vals) {
		t.Fatalf("Expected %d values, got %d", len(vals), len(out))
	}
	for i := 0; i < 2; i++ {
		if !math.IsNaN(out[i]) {
			t.Errorf("Expected NaN at warm-up index %d, got %f", i, out[i])
		}
	}
	if out[2] != 2 {
		t.Errorf("Expected SMA 2 at index 2, got %f", out[2])
	}
	if out[4] != 4 {
		t.Errorf("Expected SMA 4 at index 4, got %f", out[4])
	}
}

func TestSMASeriesShortInput(t *testing.T) {
	out := SMASeries([]float64{1, 2}, 5)
	for i, v := range out {
		if !math.IsNaN(v) {
			t.Errorf("Expected all NaN for short input, got %f at %d", v, i)
		}
	}
}

func TestRet1dSeries(t *testing.T) {
	out := Ret1dSeries([]float64{100, 110, 99})

	if !math.IsNaN(out[0]) {
		t.Errorf("Expected NaN at index 0, got %f", out[0])
	}
	if math.Abs(out[1]-0.10) > 1e-12 {
		t.Errorf("Expected return 0.10, got %f", out[1])
	}
	if math.Abs(out[2]-(-0.10)) > 1e-12 {
		t.Errorf("Expected return -0.10, got %f", out[2])
	}
}

func TestRSISeriesBounds(t *testing.T) {
	closes := make([]float64, 60)
	price := 100.0
	for i := range closes {
		if i%3 == 0 {
			price *= 1.02
		} else {
			price *= 0.99
		}
		closes[i] = price
	}

	out := RSISeries(closes, 14)
	for i := 14; i < len(out); i++ {
		if math.IsNaN(out[i]) {
			t.Fatalf("Expected defined RSI at index %d", i)
		}
		if out[i] < 0 || out[i] > 100 {
			t.Errorf("RSI %f at index %d out of [0,100]", out[i], i)
		}
	}
	for i := 0; i < 14; i++ {
		if !math.IsNaN(out[i]) {
			t.Errorf("Expected NaN inside warm-up at index %d, got %f", i, out[i])
		}
	}
}

func TestRSISeriesFlat(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 250.0
	}
	out := RSISeries(closes, 14)
	for i := 14; i < len(out); i++ {
		if out[i] != 50.0 {
			t.Errorf("Expected neutral 50 for flat series at index %d, got %f", i, out[i])
		}
	}
}

func TestRSISeriesAllGains(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	out := RSISeries(closes, 14)
	if out[14] != 100.0 {
		t.Errorf("Expected RSI 100 with zero losses, got %f", out[14])
	}
	if out[len(out)-1] != 100.0 {
		t.Errorf("Expected RSI to stay at 100, got %f", out[len(out)-1])
	}
}

func TestTrueRange(t *testing.T) {
	highs := []float64{10, 12, 11}
	lows := []float64{9, 10, 8}
	closes := []float64{9.5, 11, 9}

	out := TrueRange(highs, lows, closes)
	if !math.IsNaN(out[0]) {
		t.Errorf("Expected NaN at index 0, got %f", out[0])
	}
	// max(12-10, |12-9.5|, |10-9.5|) = 2.5
	if out[1] != 2.5 {
		t.Errorf("Expected TR 2.5, got %f", out[1])
	}
	// max(11-8, |11-11|, |8-11|) = 3
	if out[2] != 3.0 {
		t.Errorf("Expected TR 3.0, got %f", out[2])
	}
}

func TestATRSeries(t *testing.T) {
	n := 40
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		closes[i] = 100
		highs[i] = 101
		lows[i] = 99
	}

	out := ATRSeries(highs, lows, closes, 14)
	for i := 0; i < 14; i++ {
		if !math.IsNaN(out[i]) {
			t.Errorf("Expected NaN inside warm-up at index %d, got %f", i, out[i])
		}
	}
	// Constant 2-point range means ATR converges on exactly 2.
	for i := 14; i < n; i++ {
		if math.Abs(out[i]-2.0) > 1e-9 {
			t.Errorf("Expected ATR 2.0 at index %d, got %f", i, out[i])
		}
	}
}

func TestATRSeriesMismatchedLengths(t *testing.T) {
	out := ATRSeries([]float64{1, 2}, []float64{1, 2, 3}, []float64{1, 2, 3}, 1)
	for i, v := range out {
		if !math.IsNaN(v) {
			t.Errorf("Expected NaN for mismatched inputs, got %f at %d", v, i)
		}
	}
}
