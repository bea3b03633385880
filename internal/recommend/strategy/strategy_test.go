package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roomly/roomly-backend/internal/data/repos"
	"github.com/roomly/roomly-backend/internal/data/repos/testutil"
	"github.com/roomly/roomly-backend/internal/domain"
	"github.com/roomly/roomly-backend/internal/platform/cache"
	"github.com/roomly/roomly-backend/internal/recommend/profile"
	"github.com/roomly/roomly-backend/internal/recommend/similarity"
)

type fixture struct {
	gdb      *gorm.DB
	rooms    repos.RoomRepo
	bookings repos.BookingRepo
	profiles *profile.Builder
	scorer   *similarity.Scorer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	store := cache.NewMemory()
	rooms := repos.NewRoomRepo(gdb, log)
	bookings := repos.NewBookingRepo(gdb, log)
	profiles := profile.NewBuilder(log, rooms, bookings, store)
	return &fixture{
		gdb:      gdb,
		rooms:    rooms,
		bookings: bookings,
		profiles: profiles,
		scorer:   similarity.NewScorer(log, profiles, store, similarity.DefaultWeights()),
	}
}

func (f *fixture) room(t *testing.T, name string, capacity int, areaID uuid.UUID, desc string) *domain.Room {
	t.Helper()
	room := &domain.Room{ID: uuid.New(), Name: name, Capacity: capacity, AreaID: areaID, Description: desc}
	if err := f.gdb.Create(room).Error; err != nil {
		t.Fatalf("create room: %v", err)
	}
	return room
}

func (f *fixture) booking(t *testing.T, roomID, userID uuid.UUID, start time.Time, dur time.Duration) {
	t.Helper()
	bk := &domain.Booking{
		ID:        uuid.New(),
		RoomID:    roomID,
		UserID:    userID,
		StartTime: start,
		EndTime:   start.Add(dur),
		Status:    domain.BookingStatusConfirmed,
	}
	if err := f.gdb.Create(bk).Error; err != nil {
		t.Fatalf("create booking: %v", err)
	}
}

func TestAlternativeRoomSkipsConflicted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	log := testutil.Logger(t)

	area := uuid.New()
	base := f.room(t, "Wanted", 10, area, "projector wifi")
	free := f.room(t, "Free", 10, area, "projector wifi")
	taken := f.room(t, "Taken", 10, area, "projector wifi")

	at := time.Now().UTC().AddDate(0, 0, 2).Truncate(time.Hour)
	f.booking(t, taken.ID, uuid.New(), at, time.Hour)

	gen := NewAlternativeRoom(log, f.rooms, f.bookings, f.scorer)
	got, err := gen.Generate(ctx, domain.RecommendationRequest{
		RoomID: base.ID, UserID: uuid.New(), StartTime: at, DurationHours: 1, Attendees: 4,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(got))
	}
	if got[0].Suggestion.RoomID != free.ID {
		t.Fatalf("suggested %s, want the free room", got[0].Suggestion.RoomName)
	}
	if got[0].Type != domain.RecommendationAlternativeRoom || got[0].DataSource != "room_similarity" {
		t.Fatalf("unexpected metadata: %+v", got[0])
	}
	if got[0].Score <= 0 || got[0].Score > 1 {
		t.Fatalf("score out of range: %v", got[0].Score)
	}
}

func TestAlternativeRoomUnknownBaseRoom(t *testing.T) {
	f := newFixture(t)
	log := testutil.Logger(t)

	gen := NewAlternativeRoom(log, f.rooms, f.bookings, f.scorer)
	got, err := gen.Generate(context.Background(), domain.RecommendationRequest{
		RoomID: uuid.New(), UserID: uuid.New(), StartTime: time.Now().UTC(), DurationHours: 1,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("unknown room should produce nothing, got %d", len(got))
	}
}

func TestAlternativeTimeFullyBooked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	log := testutil.Logger(t)

	room := f.room(t, "Busy", 10, uuid.New(), "")
	at := time.Now().UTC().AddDate(0, 0, 2).Truncate(time.Hour)
	// Block the whole probe window around the request.
	f.booking(t, room.ID, uuid.New(), at.Add(-2*time.Hour), 5*time.Hour)

	gen := NewAlternativeTime(log, f.rooms, f.bookings, f.scorer)
	got, err := gen.Generate(ctx, domain.RecommendationRequest{
		RoomID: room.ID, UserID: uuid.New(), StartTime: at, DurationHours: 1,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("fully booked room should yield no shifts, got %d", len(got))
	}
}

func TestAlternativeTimeSuggestsShifts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	log := testutil.Logger(t)

	room := f.room(t, "Open", 10, uuid.New(), "")
	at := time.Now().UTC().AddDate(0, 0, 2).Truncate(time.Hour)

	gen := NewAlternativeTime(log, f.rooms, f.bookings, f.scorer)
	got, err := gen.Generate(ctx, domain.RecommendationRequest{
		RoomID: room.ID, UserID: uuid.New(), StartTime: at, DurationHours: 1,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("open room should yield all four shifts, got %d", len(got))
	}
	for _, r := range got {
		if r.Suggestion.RoomID != room.ID {
			t.Fatal("time shifts must keep the requested room")
		}
		if r.Suggestion.StartTime.Equal(at) {
			t.Fatal("shifted slot must differ from the requested start")
		}
	}
}

func TestProactiveNoHistory(t *testing.T) {
	f := newFixture(t)
	log := testutil.Logger(t)

	gen := NewProactive(log, f.rooms, f.bookings, f.profiles)
	got, err := gen.Generate(context.Background(), domain.RecommendationRequest{
		RoomID: uuid.New(), UserID: uuid.New(), StartTime: time.Now().UTC(), DurationHours: 1,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("no history should yield nothing, got %d", len(got))
	}
}

func TestProactiveSuggestsHabit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	log := testutil.Logger(t)

	room := f.room(t, "Usual", 10, uuid.New(), "")
	userID := uuid.New()
	day := time.Now().UTC().AddDate(0, 0, -30).Truncate(24 * time.Hour)
	for i := 0; i < 6; i++ {
		f.booking(t, room.ID, userID, day.AddDate(0, 0, i).Add(10*time.Hour), time.Hour)
	}

	gen := NewProactive(log, f.rooms, f.bookings, f.profiles)
	got, err := gen.Generate(ctx, domain.RecommendationRequest{
		RoomID: room.ID, UserID: userID, StartTime: time.Now().UTC(), DurationHours: 1,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(got))
	}
	r := got[0]
	if r.Suggestion.RoomID != room.ID {
		t.Fatalf("suggested %s, want the habitual room", r.Suggestion.RoomName)
	}
	if r.Suggestion.StartTime.Hour() != 10 {
		t.Fatalf("suggested hour %d, want 10", r.Suggestion.StartTime.Hour())
	}
	if !r.Suggestion.StartTime.After(time.Now()) {
		t.Fatal("proactive suggestion must be in the future")
	}
	if wd := r.Suggestion.StartTime.Weekday(); wd == time.Saturday || wd == time.Sunday {
		t.Fatalf("suggestion landed on %s", wd)
	}
}

func TestSmartSchedulingPrefersQuietBucket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	log := testutil.Logger(t)

	quiet := f.room(t, "Quiet", 10, uuid.New(), "")
	busy := f.room(t, "Busy", 10, uuid.New(), "")

	// Both rooms see use, but only the busy one is used in the morning
	// bucket the request targets.
	day := time.Now().UTC().AddDate(0, 0, -20).Truncate(24 * time.Hour)
	for i := 0; i < 8; i++ {
		f.booking(t, busy.ID, uuid.New(), day.AddDate(0, 0, i).Add(9*time.Hour), time.Hour)
		f.booking(t, quiet.ID, uuid.New(), day.AddDate(0, 0, i).Add(15*time.Hour), time.Hour)
	}

	at := time.Now().UTC().AddDate(0, 0, 2).Truncate(24 * time.Hour).Add(9 * time.Hour)
	gen := NewSmartScheduling(log, f.rooms, f.bookings, f.profiles)
	got, err := gen.Generate(ctx, domain.RecommendationRequest{
		RoomID: busy.ID, UserID: uuid.New(), StartTime: at, DurationHours: 1, Attendees: 4,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected suggestions")
	}
	if got[0].Suggestion.RoomID != quiet.ID {
		t.Fatalf("top suggestion %s, want the room quiet at 9am", got[0].Suggestion.RoomName)
	}
}
