package profile

import (
	"time"

	"github.com/google/uuid"
)

// RoomProfile is a derived, cacheable summary of one room's last 180 days of
// bookings. Immutable once built; rebuilt when its cache entry expires.
type RoomProfile struct {
	RoomID                uuid.UUID   `json:"room_id"`
	Name                  string      `json:"name"`
	Capacity              int         `json:"capacity"`
	AreaID                uuid.UUID   `json:"area_id"`
	Description           string      `json:"description"`
	UsageFrequency        int         `json:"usage_frequency"`
	AvgBookingDurationMin float64     `json:"average_booking_duration"`
	PeakUsageHours        []int       `json:"peak_usage_hours"`
	CommonUsers           []uuid.UUID `json:"common_users"`
	BookingPurposes       []string    `json:"booking_purposes"`
	UtilizationRate       float64     `json:"utilization_rate"`
	FeatureVector         []float64   `json:"feature_vector"`
	UsageVector           []float64   `json:"usage_vector"`
	BuiltAt               time.Time   `json:"built_at"`
}

// HasFeatureData reports whether any amenity or capacity signal was found.
func (p *RoomProfile) HasFeatureData() bool {
	if p == nil {
		return false
	}
	for _, v := range p.FeatureVector {
		if v > 0 {
			return true
		}
	}
	return false
}

// TimeSlotProfile summarizes how a weekly hour-of-day/day-of-week slot has
// been used recently. Built on demand; lives only as long as its cache entry.
type TimeSlotProfile struct {
	StartHour           int          `json:"start_hour"`
	EndHour             int          `json:"end_hour"`
	DayOfWeek           time.Weekday `json:"day_of_week"`
	DurationHours       float64      `json:"duration_hours"`
	Occurrences         int          `json:"occurrences"`
	PopularityScore     float64      `json:"popularity_score"`
	ConflictProbability float64      `json:"conflict_probability"`
	TypicalUsers        []uuid.UUID  `json:"typical_users"`
	CommonPurposes      []string     `json:"common_purposes"`
	SeasonalUsage       [4]float64   `json:"seasonal_usage"`
}

// UserBookingProfile aggregates one user's booking behavior over a trailing
// window. A user with zero history gets the zero-valued default profile.
type UserBookingProfile struct {
	UserID             uuid.UUID   `json:"user_id"`
	BookingCount       int         `json:"booking_count"`
	RoomUsage          map[string]int `json:"room_usage"`
	HourHistogram      [24]float64 `json:"hour_histogram"`
	DayHistogram       [7]float64  `json:"day_histogram"`
	DurationsHours     []float64   `json:"durations_hours"`
	AdvanceBookingDays []float64   `json:"advance_booking_days"`
	CancellationRate   float64     `json:"cancellation_rate"`
	NoShowRate         float64     `json:"no_show_rate"`
	AvgDurationHours   float64     `json:"avg_duration_hours"`
	BookingsPerWeek    float64     `json:"bookings_per_week"`
	WindowDays         int         `json:"window_days"`
	BuiltAt            time.Time   `json:"built_at"`
}

// HasHistory reports whether the profile was built from any bookings at all.
func (p *UserBookingProfile) HasHistory() bool {
	return p != nil && p.BookingCount > 0
}

// RoomIDs returns the distinct rooms the user has booked.
func (p *UserBookingProfile) RoomIDs() []string {
	if p == nil || len(p.RoomUsage) == 0 {
		return nil
	}
	out := make([]string, 0, len(p.RoomUsage))
	for id := range p.RoomUsage {
		out = append(out, id)
	}
	return out
}
