package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roomly/roomly-backend/internal/domain"
	apperr "github.com/roomly/roomly-backend/internal/pkg/errors"
	"github.com/roomly/roomly-backend/internal/platform/logger"
	"github.com/roomly/roomly-backend/internal/recommend"
)

type RecommendationService interface {
	Recommend(ctx context.Context, req domain.RecommendationRequest) ([]domain.Recommendation, error)
}

type recommendationService struct {
	log        *logger.Logger
	aggregator *recommend.Aggregator
}

func NewRecommendationService(log *logger.Logger, aggregator *recommend.Aggregator) RecommendationService {
	return &recommendationService{
		log:        log.With("service", "RecommendationService"),
		aggregator: aggregator,
	}
}

// Recommend validates the request and delegates to the aggregator.
// Validation failures are the only errors a caller sees besides
// cancellation; everything downstream degrades to fallback output.
func (s *recommendationService) Recommend(ctx context.Context, req domain.RecommendationRequest) ([]domain.Recommendation, error) {
	if req.RoomID == uuid.Nil {
		return nil, fmt.Errorf("%w: room_id is required", apperr.ErrInvalidArgument)
	}
	if req.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: user_id is required", apperr.ErrInvalidArgument)
	}
	if req.StartTime.IsZero() {
		return nil, fmt.Errorf("%w: start_time is required", apperr.ErrInvalidArgument)
	}
	if req.DurationHours <= 0 || req.DurationHours > 24 {
		return nil, fmt.Errorf("%w: duration_hours must be in (0, 24]", apperr.ErrInvalidArgument)
	}
	if req.Attendees < 0 {
		return nil, fmt.Errorf("%w: attendees cannot be negative", apperr.ErrInvalidArgument)
	}

	started := time.Now()
	recs, err := s.aggregator.Recommend(ctx, req)
	if err != nil {
		return nil, err
	}
	s.log.Info("recommendations generated",
		"room_id", req.RoomID.String(),
		"user_id", req.UserID.String(),
		"count", len(recs),
		"elapsed_ms", time.Since(started).Milliseconds())
	return recs, nil
}
