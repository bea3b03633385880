package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roomly/roomly-backend/internal/data/repos"
	"github.com/roomly/roomly-backend/internal/data/repos/testutil"
	"github.com/roomly/roomly-backend/internal/domain"
	errs "github.com/roomly/roomly-backend/internal/pkg/errors"
	"github.com/roomly/roomly-backend/internal/platform/cache"
)

func newBuilder(t *testing.T) (*Builder, *gorm.DB, *cache.Memory) {
	t.Helper()
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	store := cache.NewMemory()
	b := NewBuilder(log, repos.NewRoomRepo(gdb, log), repos.NewBookingRepo(gdb, log), store)
	return b, gdb, store
}

func seedRoom(t *testing.T, gdb *gorm.DB, capacity int, desc string) *domain.Room {
	t.Helper()
	room := &domain.Room{ID: uuid.New(), Name: "Room " + uuid.NewString()[:8], Capacity: capacity, Description: desc}
	if err := gdb.Create(room).Error; err != nil {
		t.Fatalf("seed room: %v", err)
	}
	return room
}

func seedBooking(t *testing.T, gdb *gorm.DB, roomID, userID uuid.UUID, start time.Time, dur time.Duration, status string) *domain.Booking {
	t.Helper()
	bk := &domain.Booking{
		ID:        uuid.New(),
		RoomID:    roomID,
		UserID:    userID,
		StartTime: start,
		EndTime:   start.Add(dur),
		Status:    status,
		Purpose:   "sync",
	}
	if err := gdb.Create(bk).Error; err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return bk
}

func TestBuildRoomProfile(t *testing.T) {
	b, gdb, _ := newBuilder(t)
	ctx := context.Background()

	room := seedRoom(t, gdb, 12, "projector and whiteboard")
	alice, bob := uuid.New(), uuid.New()
	base := time.Now().UTC().AddDate(0, 0, -7)
	seedBooking(t, gdb, room.ID, alice, base.Truncate(24*time.Hour).Add(9*time.Hour), time.Hour, domain.BookingStatusConfirmed)
	seedBooking(t, gdb, room.ID, alice, base.Truncate(24*time.Hour).Add(33*time.Hour), time.Hour, domain.BookingStatusConfirmed)
	seedBooking(t, gdb, room.ID, bob, base.Truncate(24*time.Hour).Add(14*time.Hour), 2*time.Hour, domain.BookingStatusConfirmed)

	p, err := b.BuildRoomProfile(ctx, room.ID)
	if err != nil {
		t.Fatalf("BuildRoomProfile: %v", err)
	}
	if p.UsageFrequency != 3 {
		t.Fatalf("usage frequency = %d, want 3", p.UsageFrequency)
	}
	if len(p.CommonUsers) != 2 {
		t.Fatalf("common users = %d, want 2", len(p.CommonUsers))
	}
	if len(p.PeakUsageHours) == 0 || p.PeakUsageHours[0] != 9 {
		t.Fatalf("peak hours = %v, want 9 first", p.PeakUsageHours)
	}
	if !p.HasFeatureData() {
		t.Fatal("expected feature data from the description")
	}
	if p.UtilizationRate <= 0 || p.UtilizationRate > 1 {
		t.Fatalf("utilization rate out of range: %v", p.UtilizationRate)
	}
}

func TestBuildRoomProfileExcludesCancelled(t *testing.T) {
	b, gdb, _ := newBuilder(t)
	ctx := context.Background()

	room := seedRoom(t, gdb, 8, "")
	start := time.Now().UTC().AddDate(0, 0, -3)
	seedBooking(t, gdb, room.ID, uuid.New(), start, time.Hour, domain.BookingStatusCancelled)

	p, err := b.BuildRoomProfile(ctx, room.ID)
	if err != nil {
		t.Fatalf("BuildRoomProfile: %v", err)
	}
	if p.UsageFrequency != 0 {
		t.Fatalf("cancelled bookings should not count, got %d", p.UsageFrequency)
	}
}

func TestBuildRoomProfileMissingRoom(t *testing.T) {
	b, _, _ := newBuilder(t)
	if _, err := b.BuildRoomProfile(context.Background(), uuid.New()); !errors.Is(err, errs.ErrProfileUnavailable) {
		t.Fatalf("got %v, want ErrProfileUnavailable", err)
	}
}

func TestBuildRoomProfileUsesCache(t *testing.T) {
	b, gdb, store := newBuilder(t)
	ctx := context.Background()

	room := seedRoom(t, gdb, 8, "")
	if _, err := b.BuildRoomProfile(ctx, room.ID); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if _, ok, _ := store.Get(ctx, RoomProfileKey(room.ID)); !ok {
		t.Fatal("profile was not cached")
	}

	// A new booking is invisible until the cache entry is dropped.
	seedBooking(t, gdb, room.ID, uuid.New(), time.Now().UTC().AddDate(0, 0, -1), time.Hour, domain.BookingStatusConfirmed)
	p, err := b.BuildRoomProfile(ctx, room.ID)
	if err != nil {
		t.Fatalf("cached build: %v", err)
	}
	if p.UsageFrequency != 0 {
		t.Fatalf("expected stale cached profile, got frequency %d", p.UsageFrequency)
	}

	if err := store.Delete(ctx, RoomProfileKey(room.ID)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	p, err = b.BuildRoomProfile(ctx, room.ID)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if p.UsageFrequency != 1 {
		t.Fatalf("rebuilt profile frequency = %d, want 1", p.UsageFrequency)
	}
}

func TestBuildUserProfile(t *testing.T) {
	b, gdb, _ := newBuilder(t)
	ctx := context.Background()

	room := seedRoom(t, gdb, 8, "")
	userID := uuid.New()
	day := time.Now().UTC().AddDate(0, 0, -10)
	for i := 0; i < 4; i++ {
		start := day.AddDate(0, 0, i).Truncate(24 * time.Hour).Add(10 * time.Hour)
		seedBooking(t, gdb, room.ID, userID, start, time.Hour, domain.BookingStatusConfirmed)
	}

	p, err := b.BuildUserProfile(ctx, userID, 90)
	if err != nil {
		t.Fatalf("BuildUserProfile: %v", err)
	}
	if !p.HasHistory() || p.BookingCount != 4 {
		t.Fatalf("booking count = %d, want 4", p.BookingCount)
	}
	if p.HourHistogram[10] != 1 {
		t.Fatalf("hour histogram at 10 = %v, want 1", p.HourHistogram[10])
	}
	if p.RoomUsage[room.ID.String()] != 4 {
		t.Fatalf("room usage = %v", p.RoomUsage)
	}
	if p.AvgDurationHours != 1 {
		t.Fatalf("avg duration = %v, want 1", p.AvgDurationHours)
	}
}

func TestBuildUserProfileNoHistory(t *testing.T) {
	b, _, _ := newBuilder(t)

	p, err := b.BuildUserProfile(context.Background(), uuid.New(), 0)
	if err != nil {
		t.Fatalf("BuildUserProfile: %v", err)
	}
	if p.HasHistory() {
		t.Fatal("expected empty default profile")
	}
	if p.WindowDays != DefaultUserWindowDays {
		t.Fatalf("window days = %d, want %d", p.WindowDays, DefaultUserWindowDays)
	}
}

func TestBuildTimeSlotProfile(t *testing.T) {
	b, gdb, _ := newBuilder(t)
	ctx := context.Background()

	room := seedRoom(t, gdb, 8, "")
	// Three past bookings in the same weekly slot.
	slot := time.Now().UTC().AddDate(0, 0, -21).Truncate(24 * time.Hour).Add(9 * time.Hour)
	for i := 0; i < 3; i++ {
		seedBooking(t, gdb, room.ID, uuid.New(), slot.AddDate(0, 0, 7*i), time.Hour, domain.BookingStatusConfirmed)
	}

	p, err := b.BuildTimeSlotProfile(ctx, slot.AddDate(0, 0, 28), 1)
	if err != nil {
		t.Fatalf("BuildTimeSlotProfile: %v", err)
	}
	if p.Occurrences != 3 {
		t.Fatalf("occurrences = %d, want 3", p.Occurrences)
	}
	if p.PopularityScore != 0.03 {
		t.Fatalf("popularity = %v, want 0.03", p.PopularityScore)
	}
	if len(p.TypicalUsers) != 3 {
		t.Fatalf("typical users = %d, want 3", len(p.TypicalUsers))
	}
}

