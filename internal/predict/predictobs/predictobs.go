package predictobs

import (
	"context"
	"time"

	"swingbot/internal/interfaces"
	"swingbot/internal/logger"
	"swingbot/internal/trace"
	"swingbot/internal/types"
)

type observablePredictor struct {
	predictor interfaces.Predictor
}

var _ interfaces.Predictor = (*observablePredictor)(nil)

func Wrap(p interfaces.Predictor) interfaces.Predictor {
	return &observablePredictor{
		predictor: p,
	}
}

func (op *observablePredictor) Predict(ctx context.Context, symbol string) (*types.Prediction, error) {
	ctx, span := trace.StartSpan(ctx, "predict.Predict")
	defer span.End()

	start := time.Now()

	result, err := op.predictor.Predict(ctx, symbol)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Symbol prediction failed", err,
			"symbol", symbol,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Symbol prediction completed",
		"symbol", symbol,
		"upside_30d", result.Upside30d,
		"target_90d", result.Target90d,
		"stop_loss", result.StopLoss,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}
