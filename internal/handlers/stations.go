package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/stationops/forecourt/internal/models"
	pkghttp "github.com/stationops/forecourt/pkg/http"
)

// StationDirectoryInterface defines the interface for the station directory
type StationDirectoryInterface interface {
	List(ctx context.Context) ([]*models.Station, error)
	Create(ctx context.Context, station *models.Station) (*models.Station, error)
}

// StationHandler handles station directory requests
type StationHandler struct {
	directory StationDirectoryInterface
}

// NewStationHandler creates a new StationHandler
func NewStationHandler(directory StationDirectoryInterface) *StationHandler {
	return &StationHandler{directory: directory}
}

// CreateStationRequest represents the request body for creating a station
type CreateStationRequest struct {
	ID   string `json:"id" validate:"required,min=1,max=64"`
	Name string `json:"name" validate:"required,min=1,max=128"`
}

// List handles station listing
func (h *StationHandler) List(w http.ResponseWriter, r *http.Request) {
	stations, err := h.directory.List(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "failed to list stations")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, stations)
}

// Create handles station creation
func (h *StationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateStationRequest
	if err := pkghttp.DecodeJSON(r, &req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	station, err := h.directory.Create(r.Context(), &models.Station{ID: req.ID, Name: req.Name})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			pkghttp.WriteConflict(w, "station already exists")
			return
		}
		pkghttp.WriteInternalError(w, "failed to create station")
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, station)
}
