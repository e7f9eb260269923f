package interfaces

import (
	"context"

	"swingbot/internal/types"
)

type Predictor interface {
	Predict(ctx context.Context, symbol string) (*types.Prediction, error)
}
