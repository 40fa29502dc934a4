package http

import (
	"encoding/json"
	"net/http"

	"drivehub-backend/internal/domain"
	"drivehub-backend/internal/service"
)

type TrackingHandler struct {
	tracking service.TrackingService
}

func NewTrackingHandler(tracking service.TrackingService) *TrackingHandler {
	return &TrackingHandler{tracking: tracking}
}

type trackRequest struct {
	Samples []domain.GeoSample `json:"samples"`
}

type trackResponse struct {
	CumulativeMeters float64 `json:"cumulative_meters"`
}

func (h *TrackingHandler) Track(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.Validationf("invalid request body"))
		return
	}

	cumulative, err := h.tracking.TrackDistance(r.Context(), userIDFromContext(r.Context()), id, req.Samples)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trackResponse{CumulativeMeters: cumulative})
}

func (h *TrackingHandler) Route(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	points, err := h.tracking.GetRoute(r.Context(), userIDFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}
