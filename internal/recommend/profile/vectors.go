package profile

import (
	"encoding/json"
	"strings"

	"github.com/roomly/roomly-backend/internal/domain"
)

// FeatureVectorDims is 10 amenity categories plus one normalized capacity dim.
const FeatureVectorDims = 11

// UsageVectorDims is eight 3-hour day periods plus normalized average
// duration and normalized booking frequency.
const UsageVectorDims = 10

type amenityCategory struct {
	name     string
	patterns []string
}

// Category order is fixed: vector dimensions must line up across rooms or
// cosine similarity is meaningless.
var amenityCategories = []amenityCategory{
	{"projector", []string{"projector", "beamer"}},
	{"whiteboard", []string{"whiteboard", "white board"}},
	{"tv", []string{"tv", "television", "display screen"}},
	{"ac", []string{"air conditioning", "air-conditioned", "a/c", "climate control"}},
	{"wifi", []string{"wifi", "wi-fi", "wireless"}},
	{"video_conference", []string{"video conference", "video_conference", "videoconference", "video call"}},
	{"phone", []string{"phone", "conference line"}},
	{"windows", []string{"window", "natural light"}},
	{"kitchen", []string{"kitchen", "kitchenette", "coffee machine"}},
	{"parking", []string{"parking"}},
}

// FeatureVectorForRoom scans the room description and amenity tags against
// the fixed keyword table. The 11th dimension is capacity normalized to a
// 50-seat ceiling.
func FeatureVectorForRoom(room *domain.Room) []float64 {
	vec := make([]float64, FeatureVectorDims)
	if room == nil {
		return vec
	}

	text := strings.ToLower(room.Description)
	if tags := amenityTagText(room.AmenityTags); tags != "" {
		text += " " + tags
	}

	for i, cat := range amenityCategories {
		for _, p := range cat.patterns {
			if strings.Contains(text, p) {
				vec[i] = 1
				break
			}
		}
	}

	cap := float64(room.Capacity) / 50.0
	if cap > 1 {
		cap = 1
	}
	if cap < 0 {
		cap = 0
	}
	vec[FeatureVectorDims-1] = cap
	return vec
}

func amenityTagText(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return ""
	}
	return strings.ToLower(strings.Join(tags, " "))
}

// UsageVectorForBookings buckets bookings into eight 3-hour periods of the
// day. Zero bookings yields the zero vector, never a shorter one.
func UsageVectorForBookings(bookings []*domain.Booking) []float64 {
	vec := make([]float64, UsageVectorDims)
	if len(bookings) == 0 {
		return vec
	}

	var totalHours float64
	for _, b := range bookings {
		if b == nil {
			continue
		}
		bucket := b.StartTime.Hour() / 3
		vec[bucket]++
		totalHours += b.DurationHours()
	}

	total := float64(len(bookings))
	for i := 0; i < 8; i++ {
		vec[i] /= total
	}

	avgDur := totalHours / total
	vec[8] = minf(avgDur/8.0, 1)
	vec[9] = minf(total/100.0, 1)
	return vec
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
