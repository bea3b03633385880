package strategy

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/roomly/roomly-backend/internal/data/repos"
	"github.com/roomly/roomly-backend/internal/domain"
	"github.com/roomly/roomly-backend/internal/platform/dbctx"
	"github.com/roomly/roomly-backend/internal/platform/logger"
	"github.com/roomly/roomly-backend/internal/recommend/similarity"
)

// AlternativeRoom suggests other rooms for the requested time window,
// ranked by room similarity to the originally requested room.
type AlternativeRoom struct {
	log      *logger.Logger
	rooms    repos.RoomRepo
	bookings repos.BookingRepo
	scorer   *similarity.Scorer
}

func NewAlternativeRoom(log *logger.Logger, rooms repos.RoomRepo, bookings repos.BookingRepo, scorer *similarity.Scorer) *AlternativeRoom {
	return &AlternativeRoom{
		log:      log.With("strategy", "AlternativeRoom"),
		rooms:    rooms,
		bookings: bookings,
		scorer:   scorer,
	}
}

func (g *AlternativeRoom) Name() string { return "alternative_room" }

func (g *AlternativeRoom) Generate(ctx context.Context, req domain.RecommendationRequest) ([]domain.Recommendation, error) {
	dbc := dbctx.Context{Ctx: ctx}

	base, err := g.rooms.GetByID(dbc, req.RoomID)
	if err != nil {
		return nil, err
	}
	if base == nil {
		return nil, nil
	}

	candidates, err := g.rooms.ListByFilter(dbc, req.Attendees, req.RoomID)
	if err != nil {
		return nil, err
	}

	start, end := req.StartTime, req.EndTime()
	var out []domain.Recommendation
	for _, cand := range candidates {
		busy, err := g.bookings.HasConflict(dbc, cand.ID, start, end)
		if err != nil {
			return nil, err
		}
		if busy {
			continue
		}

		sim := g.scorer.RoomSimilarity(ctx, req.RoomID, cand.ID)
		if sim.Score == 0 {
			continue
		}

		score := sim.Score
		if base.AreaID != uuid.Nil && base.AreaID == cand.AreaID {
			score *= 1.05
		}
		if delta := cand.Capacity - req.Attendees; delta >= 0 && delta <= 2 {
			score *= 1.05
		}
		if score > 1 {
			score = 1
		}

		out = append(out, domain.Recommendation{
			Type:   domain.RecommendationAlternativeRoom,
			Score:  score,
			Reason: fmt.Sprintf("%s is similar to %s and free at the requested time", cand.Name, base.Name),
			Suggestion: domain.Suggestion{
				RoomID:     cand.ID,
				RoomName:   cand.Name,
				StartTime:  start,
				EndTime:    end,
				Capacity:   cand.Capacity,
				Confidence: sim.Confidence,
			},
			DataSource: "room_similarity",
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > maxPerStrategy {
		out = out[:maxPerStrategy]
	}
	return out, nil
}
