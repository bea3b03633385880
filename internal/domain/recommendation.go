package domain

import (
	"time"

	"github.com/google/uuid"
)

type RecommendationType string

const (
	RecommendationAlternativeRoom RecommendationType = "alternative_room"
	RecommendationAlternativeTime RecommendationType = "alternative_time"
	RecommendationProactive       RecommendationType = "proactive"
	RecommendationSmartScheduling RecommendationType = "smart_scheduling"
)

// Suggestion carries the concrete room/time a recommendation proposes.
type Suggestion struct {
	RoomID     uuid.UUID `json:"room_id"`
	RoomName   string    `json:"room_name"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Capacity   int       `json:"capacity"`
	Confidence float64   `json:"confidence"`
}

// Recommendation is a per-request value object; it is never persisted.
type Recommendation struct {
	Type       RecommendationType `json:"type"`
	Score      float64            `json:"score"`
	Reason     string             `json:"reason"`
	Suggestion Suggestion         `json:"suggestion"`
	DataSource string             `json:"data_source"`
}

// RecommendationRequest describes the booking that could not be satisfied
// as-is and needs alternatives ranked for it.
type RecommendationRequest struct {
	RoomID        uuid.UUID `json:"room_id"`
	UserID        uuid.UUID `json:"user_id"`
	StartTime     time.Time `json:"start_time"`
	DurationHours float64   `json:"duration_hours"`
	Attendees     int       `json:"attendees"`
	Purpose       string    `json:"purpose"`
}

// EndTime derives the requested end from start + duration.
func (r RecommendationRequest) EndTime() time.Time {
	return r.StartTime.Add(time.Duration(r.DurationHours * float64(time.Hour)))
}
