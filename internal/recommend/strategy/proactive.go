package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roomly/roomly-backend/internal/data/repos"
	"github.com/roomly/roomly-backend/internal/domain"
	"github.com/roomly/roomly-backend/internal/platform/dbctx"
	"github.com/roomly/roomly-backend/internal/platform/logger"
	"github.com/roomly/roomly-backend/internal/recommend/profile"
)

// Proactive suggests the user's habitual room and hour before they ask for
// it. Users with no booking history get nothing from this strategy.
type Proactive struct {
	log      *logger.Logger
	rooms    repos.RoomRepo
	bookings repos.BookingRepo
	profiles *profile.Builder
	now      func() time.Time
}

func NewProactive(log *logger.Logger, rooms repos.RoomRepo, bookings repos.BookingRepo, profiles *profile.Builder) *Proactive {
	return &Proactive{
		log:      log.With("strategy", "Proactive"),
		rooms:    rooms,
		bookings: bookings,
		profiles: profiles,
		now:      time.Now,
	}
}

func (g *Proactive) Name() string { return "proactive" }

func (g *Proactive) Generate(ctx context.Context, req domain.RecommendationRequest) ([]domain.Recommendation, error) {
	p, err := g.profiles.BuildUserProfile(ctx, req.UserID, 0)
	if err != nil {
		return nil, err
	}
	if !p.HasHistory() {
		return nil, nil
	}

	roomID, share := favoriteRoom(p)
	if roomID == uuid.Nil {
		return nil, nil
	}

	dbc := dbctx.Context{Ctx: ctx}
	room, err := g.rooms.GetByID(dbc, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, nil
	}

	hour := favoriteHour(p)
	dur := p.AvgDurationHours
	if dur <= 0 {
		dur = 1
	}
	start := nextOccurrence(g.now(), hour)
	end := start.Add(time.Duration(dur * float64(time.Hour)))

	busy, err := g.bookings.HasConflict(dbc, roomID, start, end)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, nil
	}

	// Habit strength scales with how dominant the room is in the history.
	score := 0.4 + 0.6*share
	return []domain.Recommendation{{
		Type:   domain.RecommendationProactive,
		Score:  score,
		Reason: fmt.Sprintf("you usually book %s around %02d:00", room.Name, hour),
		Suggestion: domain.Suggestion{
			RoomID:     room.ID,
			RoomName:   room.Name,
			StartTime:  start,
			EndTime:    end,
			Capacity:   room.Capacity,
			Confidence: historyConfidence(p.BookingCount),
		},
		DataSource: "user_history",
	}}, nil
}

func favoriteRoom(p *profile.UserBookingProfile) (uuid.UUID, float64) {
	var best uuid.UUID
	bestCount := 0
	for raw, count := range p.RoomUsage {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		if count > bestCount || (count == bestCount && best != uuid.Nil && raw < best.String()) {
			best, bestCount = id, count
		}
	}
	if p.BookingCount == 0 {
		return best, 0
	}
	return best, float64(bestCount) / float64(p.BookingCount)
}

func favoriteHour(p *profile.UserBookingProfile) int {
	best, bestVal := 9, 0.0
	for h, v := range p.HourHistogram {
		if v > bestVal {
			best, bestVal = h, v
		}
	}
	return best
}

// nextOccurrence returns the next future weekday occurrence of the hour.
func nextOccurrence(from time.Time, hour int) time.Time {
	t := time.Date(from.Year(), from.Month(), from.Day(), hour, 0, 0, 0, from.Location())
	for !t.After(from) || t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

func historyConfidence(count int) float64 {
	c := float64(count) / 20
	if c > 1 {
		return 1
	}
	return c
}
