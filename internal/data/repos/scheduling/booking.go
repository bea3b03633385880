package scheduling

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roomly/roomly-backend/internal/domain"
	"github.com/roomly/roomly-backend/internal/platform/dbctx"
	"github.com/roomly/roomly-backend/internal/platform/logger"
)

type BookingRepo interface {
	Create(dbc dbctx.Context, row *domain.Booking) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Booking, error)
	// ListForRoomSince returns non-cancelled bookings of one room starting at
	// or after the cutoff, oldest first.
	ListForRoomSince(dbc dbctx.Context, roomID uuid.UUID, since time.Time) ([]*domain.Booking, error)
	// ListForUserSince returns a user's bookings of any status, newest first,
	// capped at limit.
	ListForUserSince(dbc dbctx.Context, userID uuid.UUID, since time.Time, limit int) ([]*domain.Booking, error)
	// ListSince returns recent non-cancelled bookings across all rooms,
	// newest first, capped at limit.
	ListSince(dbc dbctx.Context, since time.Time, limit int) ([]*domain.Booking, error)
	// HasConflict reports whether any confirmed booking of the room overlaps
	// the [start, end) window.
	HasConflict(dbc dbctx.Context, roomID uuid.UUID, start, end time.Time) (bool, error)
	UpdateStatus(dbc dbctx.Context, id uuid.UUID, status string) error
}

type bookingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBookingRepo(db *gorm.DB, baseLog *logger.Logger) BookingRepo {
	return &bookingRepo{db: db, log: baseLog.With("repo", "BookingRepo")}
}

func (r *bookingRepo) conn(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *bookingRepo) Create(dbc dbctx.Context, row *domain.Booking) error {
	if row == nil {
		return nil
	}
	return r.conn(dbc).Create(row).Error
}

func (r *bookingRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Booking, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row domain.Booking
	err := r.conn(dbc).Where("id = ?", id).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *bookingRepo) ListForRoomSince(dbc dbctx.Context, roomID uuid.UUID, since time.Time) ([]*domain.Booking, error) {
	if roomID == uuid.Nil {
		return nil, nil
	}
	var rows []*domain.Booking
	err := r.conn(dbc).
		Where("room_id = ? AND start_time >= ? AND status <> ?", roomID, since, domain.BookingStatusCancelled).
		Order("start_time asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *bookingRepo) ListForUserSince(dbc dbctx.Context, userID uuid.UUID, since time.Time, limit int) ([]*domain.Booking, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 200
	}
	var rows []*domain.Booking
	err := r.conn(dbc).
		Where("user_id = ? AND start_time >= ?", userID, since).
		Order("start_time desc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *bookingRepo) ListSince(dbc dbctx.Context, since time.Time, limit int) ([]*domain.Booking, error) {
	if limit <= 0 {
		limit = 500
	}
	var rows []*domain.Booking
	err := r.conn(dbc).
		Where("start_time >= ? AND status <> ?", since, domain.BookingStatusCancelled).
		Order("start_time desc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *bookingRepo) HasConflict(dbc dbctx.Context, roomID uuid.UUID, start, end time.Time) (bool, error) {
	if roomID == uuid.Nil || !end.After(start) {
		return false, nil
	}
	var count int64
	err := r.conn(dbc).
		Model(&domain.Booking{}).
		Where("room_id = ? AND status = ? AND start_time < ? AND end_time > ?",
			roomID, domain.BookingStatusConfirmed, end, start).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *bookingRepo) UpdateStatus(dbc dbctx.Context, id uuid.UUID, status string) error {
	if id == uuid.Nil {
		return nil
	}
	return r.conn(dbc).
		Model(&domain.Booking{}).
		Where("id = ?", id).
		Update("status", status).Error
}
