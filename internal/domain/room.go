package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Area struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"not null;uniqueIndex" json:"name"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Area) TableName() string { return "area" }

func (a *Area) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type Room struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Capacity    int       `gorm:"not null;default:0" json:"capacity"`
	AreaID      uuid.UUID `gorm:"type:uuid;index" json:"area_id"`
	Area        *Area     `gorm:"constraint:OnDelete:SET NULL;foreignKey:AreaID;references:ID" json:"area,omitempty"`
	Description string    `gorm:"column:description" json:"description"`

	// Free-form amenity tags kept alongside the description; the feature
	// extractor scans both.
	AmenityTags datatypes.JSON `gorm:"type:jsonb;column:amenity_tags" json:"amenity_tags"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Room) TableName() string { return "room" }

func (r *Room) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
