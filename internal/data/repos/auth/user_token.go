package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roomly/roomly-backend/internal/domain"
	"github.com/roomly/roomly-backend/internal/platform/dbctx"
	"github.com/roomly/roomly-backend/internal/platform/logger"
)

type UserTokenRepo interface {
	Create(dbc dbctx.Context, row *domain.UserToken) error
	GetByHash(dbc dbctx.Context, tokenHash string) (*domain.UserToken, error)
	Revoke(dbc dbctx.Context, id uuid.UUID) error
	DeleteExpired(dbc dbctx.Context, cutoff time.Time) error
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return &userTokenRepo{db: db, log: baseLog.With("repo", "UserTokenRepo")}
}

func (r *userTokenRepo) conn(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *userTokenRepo) Create(dbc dbctx.Context, row *domain.UserToken) error {
	if row == nil {
		return nil
	}
	return r.conn(dbc).Create(row).Error
}

func (r *userTokenRepo) GetByHash(dbc dbctx.Context, tokenHash string) (*domain.UserToken, error) {
	if tokenHash == "" {
		return nil, nil
	}
	var row domain.UserToken
	err := r.conn(dbc).Where("token_hash = ?", tokenHash).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *userTokenRepo) Revoke(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	now := time.Now().UTC()
	return r.conn(dbc).
		Model(&domain.UserToken{}).
		Where("id = ?", id).
		Update("revoked_at", now).Error
}

func (r *userTokenRepo) DeleteExpired(dbc dbctx.Context, cutoff time.Time) error {
	return r.conn(dbc).
		Where("expires_at < ?", cutoff).
		Delete(&domain.UserToken{}).Error
}
