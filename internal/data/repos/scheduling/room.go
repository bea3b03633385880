package scheduling

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roomly/roomly-backend/internal/domain"
	"github.com/roomly/roomly-backend/internal/platform/dbctx"
	"github.com/roomly/roomly-backend/internal/platform/logger"
)

type RoomRepo interface {
	Create(dbc dbctx.Context, row *domain.Room) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Room, error)
	List(dbc dbctx.Context) ([]*domain.Room, error)
	// ListByFilter returns rooms with at least minCapacity seats, excluding
	// one room id. A zero excludeID excludes nothing.
	ListByFilter(dbc dbctx.Context, minCapacity int, excludeID uuid.UUID) ([]*domain.Room, error)
}

type roomRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoomRepo(db *gorm.DB, baseLog *logger.Logger) RoomRepo {
	return &roomRepo{db: db, log: baseLog.With("repo", "RoomRepo")}
}

func (r *roomRepo) conn(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *roomRepo) Create(dbc dbctx.Context, row *domain.Room) error {
	if row == nil {
		return nil
	}
	return r.conn(dbc).Create(row).Error
}

func (r *roomRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Room, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row domain.Room
	err := r.conn(dbc).Where("id = ?", id).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *roomRepo) List(dbc dbctx.Context) ([]*domain.Room, error) {
	var rows []*domain.Room
	if err := r.conn(dbc).Order("name asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *roomRepo) ListByFilter(dbc dbctx.Context, minCapacity int, excludeID uuid.UUID) ([]*domain.Room, error) {
	q := r.conn(dbc).Where("capacity >= ?", minCapacity)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	var rows []*domain.Room
	if err := q.Order("capacity asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
