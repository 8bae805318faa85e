package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/stationops/forecourt/internal/auth"
	"github.com/stationops/forecourt/internal/models"
	pkghttp "github.com/stationops/forecourt/pkg/http"
)

// LogServiceInterface defines the interface for log entry business logic
type LogServiceInterface interface {
	CreateEntry(ctx context.Context, entry *models.LogEntry) (*models.LogEntry, []*models.Alert, error)
	List(ctx context.Context, stationID, status string, limit, offset int) ([]*models.LogEntry, error)
}

// LogHandler handles log entry HTTP requests
type LogHandler struct {
	service LogServiceInterface
}

// NewLogHandler creates a new LogHandler
func NewLogHandler(service LogServiceInterface) *LogHandler {
	return &LogHandler{service: service}
}

// CreateLogRequest represents the request body for creating a log entry
type CreateLogRequest struct {
	StationID    string `json:"station_id" validate:"required"`
	Status       string `json:"status" validate:"required,oneof=ok warning error"`
	Severity     string `json:"severity" validate:"required"`
	IncidentType string `json:"incident_type"`
	Date         string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time         string `json:"time" validate:"omitempty,datetime=15:04"`
	Description  string `json:"description" validate:"max=2000"`
}

// CreateLogResponse carries the stored entry and any alerts it raised
type CreateLogResponse struct {
	Entry  *models.LogEntry `json:"entry"`
	Alerts []*models.Alert  `json:"alerts"`
}

// Create handles log entry creation
func (h *LogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLogRequest
	if err := pkghttp.DecodeJSON(r, &req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	createdBy := ""
	if claims, ok := auth.SessionFromContext(r.Context()); ok {
		createdBy = claims.Username
	}

	entry := &models.LogEntry{
		StationID:    req.StationID,
		Status:       req.Status,
		Severity:     req.Severity,
		IncidentType: req.IncidentType,
		EntryDate:    req.Date,
		EntryTime:    req.Time,
		CreatedBy:    createdBy,
		Description:  req.Description,
	}

	created, alerts, err := h.service.CreateEntry(r.Context(), entry)
	if err != nil {
		pkghttp.WriteInternalError(w, "failed to create log entry")
		return
	}

	if alerts == nil {
		alerts = []*models.Alert{}
	}
	pkghttp.WriteJSON(w, http.StatusCreated, CreateLogResponse{Entry: created, Alerts: alerts})
}

// List handles log entry listing with optional filters
func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	entries, err := h.service.List(r.Context(),
		r.URL.Query().Get("station_id"),
		r.URL.Query().Get("status"),
		limit, offset)
	if err != nil {
		pkghttp.WriteInternalError(w, "failed to list log entries")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, entries)
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
