package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/roomly/roomly-backend/internal/data/repos"
	"github.com/roomly/roomly-backend/internal/domain"
	"github.com/roomly/roomly-backend/internal/platform/dbctx"
	"github.com/roomly/roomly-backend/internal/platform/logger"
	"github.com/roomly/roomly-backend/internal/recommend/similarity"
)

// shiftOffsets are tried in order of distance from the requested start.
var shiftOffsets = []time.Duration{-time.Hour, time.Hour, -2 * time.Hour, 2 * time.Hour}

// AlternativeTime keeps the requested room and probes nearby start times,
// ranked by how similar the shifted slot is to the requested one.
type AlternativeTime struct {
	log      *logger.Logger
	rooms    repos.RoomRepo
	bookings repos.BookingRepo
	scorer   *similarity.Scorer
}

func NewAlternativeTime(log *logger.Logger, rooms repos.RoomRepo, bookings repos.BookingRepo, scorer *similarity.Scorer) *AlternativeTime {
	return &AlternativeTime{
		log:      log.With("strategy", "AlternativeTime"),
		rooms:    rooms,
		bookings: bookings,
		scorer:   scorer,
	}
}

func (g *AlternativeTime) Name() string { return "alternative_time" }

func (g *AlternativeTime) Generate(ctx context.Context, req domain.RecommendationRequest) ([]domain.Recommendation, error) {
	dbc := dbctx.Context{Ctx: ctx}

	room, err := g.rooms.GetByID(dbc, req.RoomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, nil
	}

	window := time.Duration(req.DurationHours * float64(time.Hour))
	var out []domain.Recommendation
	for _, offset := range shiftOffsets {
		start := req.StartTime.Add(offset)
		end := start.Add(window)

		busy, err := g.bookings.HasConflict(dbc, req.RoomID, start, end)
		if err != nil {
			return nil, err
		}
		if busy {
			continue
		}

		sim := g.scorer.TimeSimilarity(ctx, req.StartTime, start, req.DurationHours, req.DurationHours)
		out = append(out, domain.Recommendation{
			Type:   domain.RecommendationAlternativeTime,
			Score:  sim.Score,
			Reason: fmt.Sprintf("%s is free at %s", room.Name, start.Format("15:04")),
			Suggestion: domain.Suggestion{
				RoomID:     room.ID,
				RoomName:   room.Name,
				StartTime:  start,
				EndTime:    end,
				Capacity:   room.Capacity,
				Confidence: sim.Confidence,
			},
			DataSource: "time_shift",
		})
		if len(out) == maxPerStrategy {
			break
		}
	}
	return out, nil
}
