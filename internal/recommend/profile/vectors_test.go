package profile

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/roomly/roomly-backend/internal/domain"
)

func TestFeatureVectorForRoom(t *testing.T) {
	room := &domain.Room{
		ID:          uuid.New(),
		Name:        "Boardroom",
		Capacity:    25,
		Description: "Large room with projector and natural light",
		AmenityTags: datatypes.JSON([]byte(`["whiteboard","wi-fi"]`)),
	}

	vec := FeatureVectorForRoom(room)
	if len(vec) != FeatureVectorDims {
		t.Fatalf("got %d dims, want %d", len(vec), FeatureVectorDims)
	}

	// projector from the description, whiteboard and wifi from the tags,
	// windows via the natural light synonym.
	wantSet := map[int]float64{0: 1, 1: 1, 4: 1, 7: 1}
	for i := 0; i < FeatureVectorDims-1; i++ {
		want := wantSet[i]
		if vec[i] != want {
			t.Fatalf("dim %d = %v, want %v", i, vec[i], want)
		}
	}
	if vec[FeatureVectorDims-1] != 0.5 {
		t.Fatalf("capacity dim = %v, want 0.5", vec[FeatureVectorDims-1])
	}
}

func TestFeatureVectorCapacityCap(t *testing.T) {
	vec := FeatureVectorForRoom(&domain.Room{Capacity: 500})
	if vec[FeatureVectorDims-1] != 1 {
		t.Fatalf("capacity dim = %v, want 1", vec[FeatureVectorDims-1])
	}
	if vec := FeatureVectorForRoom(nil); len(vec) != FeatureVectorDims {
		t.Fatalf("nil room must still produce %d dims", FeatureVectorDims)
	}
}

func TestUsageVectorForBookings(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	mk := func(hour int, durHours float64) *domain.Booking {
		start := day.Add(time.Duration(hour) * time.Hour)
		return &domain.Booking{
			StartTime: start,
			EndTime:   start.Add(time.Duration(durHours * float64(time.Hour))),
		}
	}

	// Two bookings at 9-11am (bucket 3), one at 2pm (bucket 4), 2h each.
	vec := UsageVectorForBookings([]*domain.Booking{mk(9, 2), mk(10, 2), mk(14, 2)})
	if len(vec) != UsageVectorDims {
		t.Fatalf("got %d dims, want %d", len(vec), UsageVectorDims)
	}
	if vec[3] != 2.0/3 {
		t.Fatalf("bucket 3 = %v, want 2/3", vec[3])
	}
	if vec[4] != 1.0/3 {
		t.Fatalf("bucket 4 = %v, want 1/3", vec[4])
	}
	if vec[8] != 0.25 {
		t.Fatalf("avg duration dim = %v, want 0.25", vec[8])
	}
	if vec[9] != 0.03 {
		t.Fatalf("frequency dim = %v, want 0.03", vec[9])
	}
}

func TestUsageVectorEmpty(t *testing.T) {
	vec := UsageVectorForBookings(nil)
	for i, v := range vec {
		if v != 0 {
			t.Fatalf("dim %d = %v, want 0", i, v)
		}
	}
}
