package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roomly/roomly-backend/internal/data/repos"
	"github.com/roomly/roomly-backend/internal/domain"
	apperr "github.com/roomly/roomly-backend/internal/pkg/errors"
	"github.com/roomly/roomly-backend/internal/platform/cache"
	"github.com/roomly/roomly-backend/internal/platform/dbctx"
	"github.com/roomly/roomly-backend/internal/platform/logger"
)

type BookingService interface {
	Create(ctx context.Context, row *domain.Booking) (*domain.Booking, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Booking, error)
	Cancel(ctx context.Context, id, userID uuid.UUID) error
}

type bookingService struct {
	log      *logger.Logger
	db       *gorm.DB
	bookings repos.BookingRepo
	rooms    repos.RoomRepo
	store    cache.Store
}

func NewBookingService(log *logger.Logger, db *gorm.DB, bookings repos.BookingRepo, rooms repos.RoomRepo, store cache.Store) BookingService {
	return &bookingService{
		log:      log.With("service", "BookingService"),
		db:       db,
		bookings: bookings,
		rooms:    rooms,
		store:    store,
	}
}

func (s *bookingService) Create(ctx context.Context, row *domain.Booking) (*domain.Booking, error) {
	if row == nil {
		return nil, fmt.Errorf("%w: booking payload is required", apperr.ErrInvalidArgument)
	}
	if row.RoomID == uuid.Nil || row.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: room and user are required", apperr.ErrInvalidArgument)
	}
	if !row.EndTime.After(row.StartTime) {
		return nil, fmt.Errorf("%w: end time must be after start time", apperr.ErrInvalidArgument)
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.Status == "" {
		row.Status = domain.BookingStatusConfirmed
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		room, err := s.rooms.GetByID(dbc, row.RoomID)
		if err != nil {
			return err
		}
		if room == nil {
			return fmt.Errorf("%w: room %s", apperr.ErrNotFound, row.RoomID)
		}
		busy, err := s.bookings.HasConflict(dbc, row.RoomID, row.StartTime, row.EndTime)
		if err != nil {
			return err
		}
		if busy {
			return fmt.Errorf("%w: room is already booked for that window", apperr.ErrInvalidArgument)
		}
		return s.bookings.Create(dbc, row)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateProfiles(ctx, row)
	s.log.Info("booking created", "booking_id", row.ID.String(), "room_id", row.RoomID.String(), "user_id", row.UserID.String())
	return row, nil
}

func (s *bookingService) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	row, err := s.bookings.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperr.ErrNotFound
	}
	return row, nil
}

func (s *bookingService) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Booking, error) {
	since := time.Now().UTC().AddDate(-1, 0, 0)
	return s.bookings.ListForUserSince(dbctx.Context{Ctx: ctx}, userID, since, limit)
}

func (s *bookingService) Cancel(ctx context.Context, id, userID uuid.UUID) error {
	row, err := s.bookings.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return err
	}
	if row == nil {
		return apperr.ErrNotFound
	}
	if row.UserID != userID {
		return apperr.ErrUnauthorized
	}
	if row.Status == domain.BookingStatusCancelled {
		return nil
	}
	if err := s.bookings.UpdateStatus(dbctx.Context{Ctx: ctx}, id, domain.BookingStatusCancelled); err != nil {
		return err
	}
	s.invalidateProfiles(ctx, row)
	return nil
}

// invalidateProfiles keeps cached profiles consistent with booking writes.
// Similarity scores keep their own TTL and age out on their own.
func (s *bookingService) invalidateProfiles(ctx context.Context, row *domain.Booking) {
	if s.store == nil {
		return
	}
	invalidateRoomProfile(ctx, s.store, row.RoomID)
	if err := s.store.ClearPattern(ctx, fmt.Sprintf("user_profile:%s", row.UserID)); err != nil {
		s.log.Warn("profile invalidation failed", "user_id", row.UserID.String(), "error", err)
	}
}
