package results

import (
	"testing"

	"swingbot/internal/types"
)

func TestStoreEmpty(t *testing.T) {
	s := NewStore()
	res, updated, ok := s.Latest()
	if ok {
		t.Error("Expected no result before the first scan")
	}
	if res != nil {
		t.Error("Expected nil result before the first scan")
	}
	if !updated.IsZero() {
		t.Error("Expected zero timestamp before the first scan")
	}
}

func TestStoreSetAndLatest(t *testing.T) {
	s := NewStore()
	first := &types.ScanResult{All: []types.Prediction{{Symbol: "TCS.NS"}}}
	s.Set(first)

	res, updated, ok := s.Latest()
	if !ok {
		t.Fatal("Expected a stored result")
	}
	if res != first {
		t.Error("Expected the stored result back")
	}
	if updated.IsZero() {
		t.Error("Expected a non-zero update timestamp")
	}

	second := &types.ScanResult{All: []types.Prediction{{Symbol: "INFY.NS"}}}
	s.Set(second)
	res, _, _ = s.Latest()
	if res != second {
		t.Error("Expected the replacement result back")
	}
}
