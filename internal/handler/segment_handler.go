package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openpace/activity-backend-go/internal/middleware"
	"github.com/openpace/activity-backend-go/internal/models"
	"github.com/openpace/activity-backend-go/internal/service"
	"github.com/openpace/activity-backend-go/pkg/response"
)

// SegmentHandler handles segment endpoints
type SegmentHandler struct {
	segments *service.SegmentService
}

// NewSegmentHandler creates a new segment handler
func NewSegmentHandler(segments *service.SegmentService) *SegmentHandler {
	return &SegmentHandler{segments: segments}
}

type createSegmentRequest struct {
	Name     string          `json:"name" binding:"required"`
	Type     string          `json:"type" binding:"required"`
	Polyline []models.LatLng `json:"polyline" binding:"required"`
}

// Create handles POST /api/v1/segments
func (h *SegmentHandler) Create(c *gin.Context) {
	userID := middleware.UserID(c)

	var req createSegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	segment, err := h.segments.CreateSegment(userID, req.Name, req.Type, req.Polyline)
	if err != nil {
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			response.UnprocessableEntity(c, ve.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Created(c, segment)
}

// List handles GET /api/v1/segments
func (h *SegmentHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)

	var filter models.SegmentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "invalid query: "+err.Error())
		return
	}

	segments, total, err := h.segments.ListSegments(userID, filter)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"segments": segments, "total": total})
}

// Get handles GET /api/v1/segments/:id
func (h *SegmentHandler) Get(c *gin.Context) {
	userID := middleware.UserID(c)

	id, ok := segmentID(c)
	if !ok {
		return
	}

	segment, err := h.segments.GetSegment(id, userID)
	if err != nil {
		respondSegmentError(c, err)
		return
	}
	response.Success(c, segment)
}

// Matches handles GET /api/v1/segments/:id/matches
func (h *SegmentHandler) Matches(c *gin.Context) {
	userID := middleware.UserID(c)

	id, ok := segmentID(c)
	if !ok {
		return
	}

	matches, err := h.segments.ListMatches(id, userID)
	if err != nil {
		respondSegmentError(c, err)
		return
	}
	response.Success(c, gin.H{"matches": matches})
}

// Refresh handles POST /api/v1/segments/:id/refresh. The recompute runs
// synchronously and returns the fresh match list.
func (h *SegmentHandler) Refresh(c *gin.Context) {
	userID := middleware.UserID(c)

	id, ok := segmentID(c)
	if !ok {
		return
	}

	matches, err := h.segments.RefreshSegment(id, userID)
	if err != nil {
		respondSegmentError(c, err)
		return
	}
	response.Success(c, gin.H{"matches": matches})
}

func segmentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid segment id")
		return 0, false
	}
	return id, true
}

func respondSegmentError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrSegmentNotFound) {
		response.NotFound(c, "segment not found")
		return
	}
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		response.UnprocessableEntity(c, ve.Error())
		return
	}
	response.InternalError(c, err.Error())
}
