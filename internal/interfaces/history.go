package interfaces

import (
	"context"
	"time"

	"swingbot/internal/types"
)

type HistorySource interface {
	// History returns daily candles covering [end-window, end]. An empty
	// slice is a valid response; per-symbol fetch failures never panic.
	History(ctx context.Context, symbol string, window time.Duration) ([]types.Candle, error)
}
