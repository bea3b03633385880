package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/roomly/roomly-backend/internal/domain"
	"github.com/roomly/roomly-backend/internal/platform/logger"
	"github.com/roomly/roomly-backend/internal/services"
)

type RoomHandler struct {
	log   *logger.Logger
	rooms services.RoomService
}

func NewRoomHandler(log *logger.Logger, rooms services.RoomService) *RoomHandler {
	return &RoomHandler{log: log.With("handler", "RoomHandler"), rooms: rooms}
}

type createRoomRequest struct {
	Name        string   `json:"name" binding:"required"`
	Capacity    int      `json:"capacity"`
	AreaID      string   `json:"area_id"`
	Description string   `json:"description"`
	AmenityTags []string `json:"amenity_tags"`
}

func (h *RoomHandler) Create(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row := &domain.Room{
		Name:        req.Name,
		Capacity:    req.Capacity,
		Description: req.Description,
	}
	if req.AreaID != "" {
		areaID, err := uuid.Parse(req.AreaID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid area_id"})
			return
		}
		row.AreaID = areaID
	}
	if len(req.AmenityTags) > 0 {
		raw, err := tagsJSON(req.AmenityTags)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amenity_tags"})
			return
		}
		row.AmenityTags = raw
	}

	created, err := h.rooms.Create(c.Request.Context(), row)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *RoomHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}
	row, err := h.rooms.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *RoomHandler) List(c *gin.Context) {
	rows, err := h.rooms.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rows})
}

func tagsJSON(tags []string) (datatypes.JSON, error) {
	raw, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
