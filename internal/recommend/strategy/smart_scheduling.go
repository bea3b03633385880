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
	"github.com/roomly/roomly-backend/internal/recommend/profile"
)

// SmartScheduling steers requests toward rooms that are normally in
// circulation but quiet in the requested three-hour bucket, spreading
// load across the fleet.
type SmartScheduling struct {
	log      *logger.Logger
	rooms    repos.RoomRepo
	bookings repos.BookingRepo
	profiles *profile.Builder
}

func NewSmartScheduling(log *logger.Logger, rooms repos.RoomRepo, bookings repos.BookingRepo, profiles *profile.Builder) *SmartScheduling {
	return &SmartScheduling{
		log:      log.With("strategy", "SmartScheduling"),
		rooms:    rooms,
		bookings: bookings,
		profiles: profiles,
	}
}

func (g *SmartScheduling) Name() string { return "smart_scheduling" }

func (g *SmartScheduling) Generate(ctx context.Context, req domain.RecommendationRequest) ([]domain.Recommendation, error) {
	dbc := dbctx.Context{Ctx: ctx}

	candidates, err := g.rooms.ListByFilter(dbc, req.Attendees, uuid.Nil)
	if err != nil {
		return nil, err
	}

	start, end := req.StartTime, req.EndTime()
	bucket := req.StartTime.Hour() / 3

	var out []domain.Recommendation
	for _, cand := range candidates {
		busy, err := g.bookings.HasConflict(dbc, cand.ID, start, end)
		if err != nil {
			return nil, err
		}
		if busy {
			continue
		}

		p, err := g.profiles.BuildRoomProfile(ctx, cand.ID)
		if err != nil || p == nil {
			continue
		}

		load := 0.0
		if bucket >= 0 && bucket < len(p.UsageVector) {
			load = p.UsageVector[bucket]
		}

		// A generally busy room with a quiet bucket is the ideal target;
		// a room nobody ever books scores low regardless of the bucket.
		score := (1 - load) * (0.3 + 0.7*p.UtilizationRate)
		if score <= 0 {
			continue
		}

		out = append(out, domain.Recommendation{
			Type:   domain.RecommendationSmartScheduling,
			Score:  score,
			Reason: fmt.Sprintf("%s is rarely booked at this time of day", cand.Name),
			Suggestion: domain.Suggestion{
				RoomID:     cand.ID,
				RoomName:   cand.Name,
				StartTime:  start,
				EndTime:    end,
				Capacity:   cand.Capacity,
				Confidence: utilizationConfidence(p.UsageFrequency),
			},
			DataSource: "utilization",
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > maxPerStrategy {
		out = out[:maxPerStrategy]
	}
	return out, nil
}

func utilizationConfidence(bookingCount int) float64 {
	switch {
	case bookingCount > 10:
		return 0.8
	case bookingCount > 5:
		return 0.6
	default:
		return 0.3
	}
}
