package interfaces

import "context"

type SentimentSource interface {
	// Score returns a compound sentiment in [-1, 1] for the symbol.
	// It must not fail: any upstream error yields the neutral 0.0.
	Score(ctx context.Context, symbol string) float64
}
