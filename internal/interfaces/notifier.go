package interfaces

import (
	"context"

	"swingbot/internal/types"
)

type Notifier interface {
	// AnalysisDone delivers the scan's top picks. Fire-and-forget: channel
	// failures are logged, never returned to the caller.
	AnalysisDone(ctx context.Context, top []types.Prediction)
}
