package strategy

import (
	"context"

	"github.com/roomly/roomly-backend/internal/domain"
)

// Generator produces zero or more recommendations for a single request.
// Implementations must be safe for concurrent use; the aggregator runs
// them in parallel. A failing generator returns an error and the caller
// treats its contribution as empty.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req domain.RecommendationRequest) ([]domain.Recommendation, error)
}

// maxPerStrategy caps how many suggestions a single generator contributes
// before aggregation.
const maxPerStrategy = 5
