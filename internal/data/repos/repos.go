package repos

import (
	"gorm.io/gorm"

	"github.com/roomly/roomly-backend/internal/data/repos/auth"
	"github.com/roomly/roomly-backend/internal/data/repos/scheduling"
	"github.com/roomly/roomly-backend/internal/data/repos/user"
	"github.com/roomly/roomly-backend/internal/platform/logger"
)

type RoomRepo = scheduling.RoomRepo
type BookingRepo = scheduling.BookingRepo
type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo

func NewRoomRepo(db *gorm.DB, baseLog *logger.Logger) RoomRepo {
	return scheduling.NewRoomRepo(db, baseLog)
}

func NewBookingRepo(db *gorm.DB, baseLog *logger.Logger) BookingRepo {
	return scheduling.NewBookingRepo(db, baseLog)
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return user.NewUserRepo(db, baseLog)
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}
