// Package handler exposes the ingestion pipeline over HTTP.
package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openpace/activity-backend-go/internal/middleware"
	"github.com/openpace/activity-backend-go/internal/models"
	"github.com/openpace/activity-backend-go/internal/service"
	"github.com/openpace/activity-backend-go/pkg/response"
)

// ActivityHandler handles activity upload and retrieval endpoints
type ActivityHandler struct {
	ingest         *service.IngestService
	activities     service.ActivityStore
	maxUploadBytes int64
	maxBatchFiles  int
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(ingest *service.IngestService, activities service.ActivityStore, maxUploadBytes int64, maxBatchFiles int) *ActivityHandler {
	return &ActivityHandler{
		ingest:         ingest,
		activities:     activities,
		maxUploadBytes: maxUploadBytes,
		maxBatchFiles:  maxBatchFiles,
	}
}

// uploadResult is the upload endpoint payload.
type uploadResult struct {
	Activity  *models.Activity `json:"activity"`
	Duplicate bool             `json:"duplicate"`
}

// Upload handles POST /api/v1/activities. The request is a multipart form
// with one "file" part holding a GPX, TCX or FIT export.
func (h *ActivityHandler) Upload(c *gin.Context) {
	userID := middleware.UserID(c)

	data, filename, ok := h.readUpload(c)
	if !ok {
		return
	}

	activity, created, err := h.ingest.IngestFile(c.Request.Context(), userID, filename, data)
	if err != nil {
		respondIngestError(c, err)
		return
	}

	if created {
		response.Created(c, uploadResult{Activity: activity})
		return
	}
	response.Success(c, uploadResult{Activity: activity, Duplicate: true})
}

// UploadBatch handles POST /api/v1/activities/batch. Each file of the
// multipart "files" field is ingested independently; one bad file never
// fails the batch.
func (h *ActivityHandler) UploadBatch(c *gin.Context) {
	userID := middleware.UserID(c)

	form, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, "invalid multipart form: "+err.Error())
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		response.BadRequest(c, "no files in batch")
		return
	}
	if len(headers) > h.maxBatchFiles {
		response.BadRequest(c, fmt.Sprintf("batch too large: %d files, limit %d", len(headers), h.maxBatchFiles))
		return
	}

	var files []service.BatchFile
	for _, header := range headers {
		if header.Size > h.maxUploadBytes {
			files = append(files, service.BatchFile{Filename: header.Filename})
			continue
		}
		f, err := header.Open()
		if err != nil {
			response.InternalError(c, "failed to read upload: "+err.Error())
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
		f.Close()
		if err != nil {
			response.InternalError(c, "failed to read upload: "+err.Error())
			return
		}
		files = append(files, service.BatchFile{Filename: header.Filename, Data: data})
	}

	result := h.ingest.ImportBatch(c.Request.Context(), userID, files)
	response.Success(c, result)
}

// activityDetail is the retrieval endpoint payload.
type activityDetail struct {
	Activity *models.Activity `json:"activity"`
	Streams  []models.Stream  `json:"streams"`
	Laps     []models.Lap     `json:"laps"`
}

// Get handles GET /api/v1/activities/:id
func (h *ActivityHandler) Get(c *gin.Context) {
	userID := middleware.UserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid activity id")
		return
	}

	activity, err := h.activities.GetByID(id)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	if activity == nil || activity.UserID != userID {
		response.NotFound(c, "activity not found")
		return
	}

	streams, err := h.activities.GetStreams(id)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	laps, err := h.activities.GetLaps(id)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, activityDetail{Activity: activity, Streams: streams, Laps: laps})
}

// readUpload extracts the single "file" part, enforcing the size cap. On
// failure it writes the error response itself and returns ok=false.
func (h *ActivityHandler) readUpload(c *gin.Context) (data []byte, filename string, ok bool) {
	header, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file upload")
		return nil, "", false
	}
	if header.Size > h.maxUploadBytes {
		response.Error(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file exceeds %d byte limit", h.maxUploadBytes))
		return nil, "", false
	}

	f, err := header.Open()
	if err != nil {
		response.InternalError(c, "failed to read upload: "+err.Error())
		return nil, "", false
	}
	defer f.Close()

	data, err = io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		response.InternalError(c, "failed to read upload: "+err.Error())
		return nil, "", false
	}
	return data, header.Filename, true
}

// respondIngestError maps pipeline errors onto HTTP statuses: malformed
// files are the client's fault, unusable-but-well-formed files are 422,
// everything else is a server error.
func respondIngestError(c *gin.Context, err error) {
	var de *models.DecodeError
	if errors.As(err, &de) {
		response.BadRequest(c, de.Error())
		return
	}
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		response.UnprocessableEntity(c, ve.Error())
		return
	}
	response.InternalError(c, err.Error())
}
