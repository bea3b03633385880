package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roomly/roomly-backend/internal/data/repos/testutil"
	"github.com/roomly/roomly-backend/internal/domain"
	"github.com/roomly/roomly-backend/internal/platform/dbctx"
)

func setup(t *testing.T) (BookingRepo, *gorm.DB, dbctx.Context) {
	t.Helper()
	gdb := testutil.DB(t)
	repo := NewBookingRepo(gdb, testutil.Logger(t))
	return repo, gdb, dbctx.Context{Ctx: context.Background()}
}

func insert(t *testing.T, repo BookingRepo, dbc dbctx.Context, roomID, userID uuid.UUID, start time.Time, dur time.Duration, status string) *domain.Booking {
	t.Helper()
	row := &domain.Booking{
		ID:        uuid.New(),
		RoomID:    roomID,
		UserID:    userID,
		StartTime: start,
		EndTime:   start.Add(dur),
		Status:    status,
	}
	if err := repo.Create(dbc, row); err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return row
}

func TestHasConflict(t *testing.T) {
	repo, _, dbc := setup(t)
	roomID := uuid.New()
	at := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	insert(t, repo, dbc, roomID, uuid.New(), at, time.Hour, domain.BookingStatusConfirmed)

	cases := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"exact overlap", at, at.Add(time.Hour), true},
		{"partial overlap", at.Add(30 * time.Minute), at.Add(90 * time.Minute), true},
		{"containing window", at.Add(-time.Hour), at.Add(2 * time.Hour), true},
		{"back to back after", at.Add(time.Hour), at.Add(2 * time.Hour), false},
		{"back to back before", at.Add(-time.Hour), at, false},
		{"different day", at.AddDate(0, 0, 1), at.AddDate(0, 0, 1).Add(time.Hour), false},
	}
	for _, c := range cases {
		got, err := repo.HasConflict(dbc, roomID, c.start, c.end)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if got != c.want {
			t.Fatalf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestHasConflictIgnoresCancelled(t *testing.T) {
	repo, _, dbc := setup(t)
	roomID := uuid.New()
	at := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	insert(t, repo, dbc, roomID, uuid.New(), at, time.Hour, domain.BookingStatusCancelled)

	got, err := repo.HasConflict(dbc, roomID, at, at.Add(time.Hour))
	if err != nil {
		t.Fatalf("HasConflict: %v", err)
	}
	if got {
		t.Fatal("cancelled bookings must not block the slot")
	}
}

func TestListForRoomSince(t *testing.T) {
	repo, _, dbc := setup(t)
	roomID := uuid.New()
	at := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	insert(t, repo, dbc, roomID, uuid.New(), at.AddDate(0, 0, 2), time.Hour, domain.BookingStatusConfirmed)
	insert(t, repo, dbc, roomID, uuid.New(), at, time.Hour, domain.BookingStatusConfirmed)
	insert(t, repo, dbc, roomID, uuid.New(), at.AddDate(0, 0, 1), time.Hour, domain.BookingStatusCancelled)
	insert(t, repo, dbc, roomID, uuid.New(), at.AddDate(0, 0, -30), time.Hour, domain.BookingStatusConfirmed)
	insert(t, repo, dbc, uuid.New(), uuid.New(), at, time.Hour, domain.BookingStatusConfirmed)

	rows, err := repo.ListForRoomSince(dbc, roomID, at.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("ListForRoomSince: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if !rows[0].StartTime.Before(rows[1].StartTime) {
		t.Fatal("rows must be ordered oldest first")
	}
}

func TestListForUserSinceIncludesAllStatuses(t *testing.T) {
	repo, _, dbc := setup(t)
	userID := uuid.New()
	at := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	insert(t, repo, dbc, uuid.New(), userID, at, time.Hour, domain.BookingStatusConfirmed)
	insert(t, repo, dbc, uuid.New(), userID, at.AddDate(0, 0, 1), time.Hour, domain.BookingStatusCancelled)
	insert(t, repo, dbc, uuid.New(), userID, at.AddDate(0, 0, 2), time.Hour, domain.BookingStatusNoShow)

	rows, err := repo.ListForUserSince(dbc, userID, at.AddDate(0, 0, -1), 0)
	if err != nil {
		t.Fatalf("ListForUserSince: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3 including cancelled and no-shows", len(rows))
	}
}

func TestUpdateStatus(t *testing.T) {
	repo, _, dbc := setup(t)
	row := insert(t, repo, dbc, uuid.New(), uuid.New(), time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC), time.Hour, domain.BookingStatusConfirmed)

	if err := repo.UpdateStatus(dbc, row.ID, domain.BookingStatusCancelled); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	got, err := repo.GetByID(dbc, row.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != domain.BookingStatusCancelled {
		t.Fatalf("status = %q, want cancelled", got.Status)
	}
}

func TestGetByIDMissing(t *testing.T) {
	repo, _, dbc := setup(t)
	got, err := repo.GetByID(dbc, uuid.New())
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != nil {
		t.Fatalf("got %+v, want nil for missing row", got)
	}
}
