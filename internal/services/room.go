package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roomly/roomly-backend/internal/data/repos"
	"github.com/roomly/roomly-backend/internal/domain"
	apperr "github.com/roomly/roomly-backend/internal/pkg/errors"
	"github.com/roomly/roomly-backend/internal/platform/cache"
	"github.com/roomly/roomly-backend/internal/platform/dbctx"
	"github.com/roomly/roomly-backend/internal/platform/logger"
	"github.com/roomly/roomly-backend/internal/recommend/profile"
)

type RoomService interface {
	Create(ctx context.Context, row *domain.Room) (*domain.Room, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Room, error)
	List(ctx context.Context) ([]*domain.Room, error)
}

type roomService struct {
	log   *logger.Logger
	db    *gorm.DB
	rooms repos.RoomRepo
	store cache.Store
}

func NewRoomService(log *logger.Logger, db *gorm.DB, rooms repos.RoomRepo, store cache.Store) RoomService {
	return &roomService{
		log:   log.With("service", "RoomService"),
		db:    db,
		rooms: rooms,
		store: store,
	}
}

func (s *roomService) Create(ctx context.Context, row *domain.Room) (*domain.Room, error) {
	if row == nil || strings.TrimSpace(row.Name) == "" {
		return nil, fmt.Errorf("%w: room name is required", apperr.ErrInvalidArgument)
	}
	if row.Capacity < 0 {
		return nil, fmt.Errorf("%w: capacity cannot be negative", apperr.ErrInvalidArgument)
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := s.rooms.Create(dbctx.Context{Ctx: ctx}, row); err != nil {
		return nil, err
	}
	s.log.Info("room created", "room_id", row.ID.String(), "name", row.Name)
	return row, nil
}

func (s *roomService) Get(ctx context.Context, id uuid.UUID) (*domain.Room, error) {
	row, err := s.rooms.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperr.ErrNotFound
	}
	return row, nil
}

func (s *roomService) List(ctx context.Context) ([]*domain.Room, error) {
	return s.rooms.List(dbctx.Context{Ctx: ctx})
}

// invalidateRoomProfile drops the cached profile so the next scoring pass
// rebuilds it from fresh bookings.
func invalidateRoomProfile(ctx context.Context, store cache.Store, roomID uuid.UUID) {
	if store == nil {
		return
	}
	_ = store.Delete(ctx, profile.RoomProfileKey(roomID))
}
