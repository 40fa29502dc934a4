package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"drivehub-backend/internal/domain"
	"drivehub-backend/internal/service"
)

// BookingHandler exposes the booking lifecycle over REST.
type BookingHandler struct {
	bookings   service.BookingService
	extensions service.ExtensionService
}

func NewBookingHandler(bookings service.BookingService, extensions service.ExtensionService) *BookingHandler {
	return &BookingHandler{bookings: bookings, extensions: extensions}
}

type createBookingRequest struct {
	CarID     int32     `json:"car_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type rejectBookingRequest struct {
	Reason string `json:"reason"`
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

type confirmReturnRequest struct {
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
}

type changeDatesRequest struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type listBookingsResponse struct {
	Bookings []domain.Booking `json:"bookings"`
	Total    int32            `json:"total"`
}

func bookingIDFromRequest(r *http.Request) (int32, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, domain.Validationf("invalid booking id %q", raw)
	}
	return int32(id), nil
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.Validationf("invalid request body"))
		return
	}

	booking, err := h.bookings.CreateBooking(r.Context(), userIDFromContext(r.Context()), req.CarID, req.StartTime, req.EndTime)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	page, pageSize := paginationFromRequest(r)

	var (
		bookings []domain.Booking
		total    int32
		err      error
	)
	if r.URL.Query().Get("as") == "owner" {
		bookings, total, err = h.bookings.ListOwnerBookings(r.Context(), userIDFromContext(r.Context()), status, page, pageSize)
	} else {
		bookings, total, err = h.bookings.ListBookings(r.Context(), userIDFromContext(r.Context()), status, page, pageSize)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listBookingsResponse{Bookings: bookings, Total: total})
}

func (h *BookingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(userID, bookingID int32) (*domain.Booking, error) {
		return h.bookings.ApproveBooking(r.Context(), userID, bookingID)
	})
}

func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req rejectBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.Validationf("invalid request body"))
		return
	}
	h.transition(w, r, func(userID, bookingID int32) (*domain.Booking, error) {
		return h.bookings.RejectBooking(r.Context(), userID, bookingID, req.Reason)
	})
}

func (h *BookingHandler) MarkReady(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(userID, bookingID int32) (*domain.Booking, error) {
		return h.bookings.MarkReadyForPickup(r.Context(), userID, bookingID)
	})
}

func (h *BookingHandler) StartTrip(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(userID, bookingID int32) (*domain.Booking, error) {
		return h.bookings.StartTrip(r.Context(), userID, bookingID)
	})
}

func (h *BookingHandler) CompleteTrip(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(userID, bookingID int32) (*domain.Booking, error) {
		return h.bookings.CompleteTrip(r.Context(), userID, bookingID)
	})
}

func (h *BookingHandler) ConfirmReturn(w http.ResponseWriter, r *http.Request) {
	var req confirmReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.Validationf("invalid request body"))
		return
	}
	returnedAt := time.Time{}
	if req.ReturnedAt != nil {
		returnedAt = *req.ReturnedAt
	}
	h.transition(w, r, func(userID, bookingID int32) (*domain.Booking, error) {
		return h.bookings.ConfirmCarReturn(r.Context(), userID, bookingID, returnedAt)
	})
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.Validationf("invalid request body"))
		return
	}
	h.transition(w, r, func(userID, bookingID int32) (*domain.Booking, error) {
		return h.bookings.CancelBooking(r.Context(), userID, bookingID, req.Reason)
	})
}

func (h *BookingHandler) ChangeDates(w http.ResponseWriter, r *http.Request) {
	var req changeDatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.Validationf("invalid request body"))
		return
	}
	h.transition(w, r, func(userID, bookingID int32) (*domain.Booking, error) {
		return h.extensions.ChangeBookingDates(r.Context(), userID, bookingID, req.StartTime, req.EndTime)
	})
}

func (h *BookingHandler) transition(w http.ResponseWriter, r *http.Request, apply func(userID, bookingID int32) (*domain.Booking, error)) {
	id, err := bookingIDFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	booking, err := apply(userIDFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func paginationFromRequest(r *http.Request) (page, pageSize int32) {
	page, pageSize = 1, 20
	if raw := r.URL.Query().Get("page"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 32); err == nil && v > 0 {
			page = int32(v)
		}
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 32); err == nil && v > 0 && v <= 100 {
			pageSize = int32(v)
		}
	}
	return page, pageSize
}
