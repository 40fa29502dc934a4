package http

import (
	"io"
	"net/http"

	"drivehub-backend/internal/domain"
	"drivehub-backend/internal/service"
	"drivehub-backend/internal/storage"
)

// PhotoHandler stores and lists pre-trip inspection photos for a booking.
type PhotoHandler struct {
	bookings service.BookingService
	photos   storage.PhotoStorage
}

func NewPhotoHandler(bookings service.BookingService, photos storage.PhotoStorage) *PhotoHandler {
	return &PhotoHandler{bookings: bookings, photos: photos}
}

type uploadPhotoResponse struct {
	Path string `json:"path"`
}

func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	booking, err := h.bookings.GetBooking(r.Context(), userIDFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	switch booking.Status {
	case domain.BookingStatusApproved, domain.BookingStatusReadyForPickup:
	default:
		writeError(w, domain.Conflictf("inspection photos can only be added before the trip starts"))
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" {
		writeError(w, domain.Validationf("unsupported content type %q", contentType))
		return
	}
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		writeError(w, domain.Validationf("missing filename parameter"))
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, 10<<20))
	if err != nil {
		writeError(w, domain.Validationf("unreadable photo body"))
		return
	}

	path, err := h.photos.SavePhoto(r.Context(), id, filename, data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, uploadPhotoResponse{Path: path})
}

func (h *PhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.bookings.GetBooking(r.Context(), userIDFromContext(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}

	paths, err := h.photos.ListPhotos(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paths)
}
