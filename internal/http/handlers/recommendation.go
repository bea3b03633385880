package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/roomly/roomly-backend/internal/domain"
	"github.com/roomly/roomly-backend/internal/platform/ctxutil"
	"github.com/roomly/roomly-backend/internal/platform/logger"
	"github.com/roomly/roomly-backend/internal/services"
)

type RecommendationHandler struct {
	log  *logger.Logger
	recs services.RecommendationService
}

func NewRecommendationHandler(log *logger.Logger, recs services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{log: log.With("handler", "RecommendationHandler"), recs: recs}
}

type recommendationRequest struct {
	RoomID        string    `json:"room_id" binding:"required"`
	StartTime     time.Time `json:"start_time" binding:"required"`
	DurationHours float64   `json:"duration_hours" binding:"required"`
	Attendees     int       `json:"attendees"`
	Purpose       string    `json:"purpose"`
}

func (h *RecommendationHandler) Recommend(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req recommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room_id"})
		return
	}

	recs, err := h.recs.Recommend(c.Request.Context(), domain.RecommendationRequest{
		RoomID:        roomID,
		UserID:        rd.UserID,
		StartTime:     req.StartTime,
		DurationHours: req.DurationHours,
		Attendees:     req.Attendees,
		Purpose:       req.Purpose,
	})
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}
