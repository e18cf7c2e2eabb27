package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	mw "github.com/lorrc/studyspace-backend/internal/adapters/primary/http/middleware"
	"github.com/lorrc/studyspace-backend/internal/adapters/primary/validation"
	"github.com/lorrc/studyspace-backend/internal/auth"
	"github.com/lorrc/studyspace-backend/internal/core/domain"
	apperrors "github.com/lorrc/studyspace-backend/internal/core/errors"
	"github.com/lorrc/studyspace-backend/internal/core/ports"
)

const maxBookingsPerPage = 100

// BookingHandler handles HTTP requests for seat bookings
type BookingHandler struct {
	bookingService ports.BookingService
	errorHandler   *ErrorHandler
	logger         *slog.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService ports.BookingService, errorHandler *ErrorHandler, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		errorHandler:   errorHandler,
		logger:         logger.With("handler", "booking"),
	}
}

// Router sets up a new chi Router for all booking routes.
func (h *BookingHandler) Router() http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes sets up the routing for all booking endpoints.
func (h *BookingHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleCreateBooking)

	r.Route("/{bookingID}", func(r chi.Router) {
		r.Get("/", h.HandleGetBooking)
		r.Patch("/", h.HandleRescheduleBooking)
		r.Post("/cancel", h.HandleCancelBooking)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(mw.StaffRoles...))
			r.Post("/checkin", h.HandleCheckIn)
			r.Post("/checkout", h.HandleCheckOut)
		})
	})
}

// --- Request DTOs ---

// CreateBookingRequest defines the expected JSON body for booking a seat
type CreateBookingRequest struct {
	LibraryID string    `json:"libraryId" validate:"required,excludes=:"`
	SeatID    string    `json:"seatId" validate:"required,max=64"`
	UserID    string    `json:"userId" validate:"omitempty,excludes=:"`
	StartTime time.Time `json:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime" validate:"required,gtfield=StartTime"`
}

// RescheduleBookingRequest defines the expected JSON body for moving a booking.
// Omitted fields keep their current value.
type RescheduleBookingRequest struct {
	SeatID    string     `json:"seatId" validate:"omitempty,max=64"`
	StartTime *time.Time `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
}

// --- Handlers ---

// HandleCreateBooking handles POST /bookings
func (h *BookingHandler) HandleCreateBooking(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[CreateBookingRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	// Staff may book on behalf of a student; everyone else books for themselves.
	userID := claims.UserID
	if req.UserID != "" && req.UserID != claims.UserID {
		if !claims.Role.IsStaff() {
			h.errorHandler.Handle(w, r, apperrors.NewForbiddenError("You can only book seats for yourself"))
			return
		}
		userID = req.UserID
	}

	booking, err := h.bookingService.CreateBooking(r.Context(), ports.CreateBookingParams{
		LibraryID: req.LibraryID,
		SeatID:    req.SeatID,
		UserID:    userID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "booking created",
		"booking_id", booking.ID,
		"library_id", booking.LibraryID,
		"seat_id", booking.SeatID,
	)

	WriteCreated(w, booking)
}

// HandleGetBooking handles GET /bookings/{bookingID}
func (h *BookingHandler) HandleGetBooking(w http.ResponseWriter, r *http.Request) {
	booking, ok := h.loadAuthorized(w, r)
	if !ok {
		return
	}

	WriteJSON(w, http.StatusOK, booking)
}

// HandleRescheduleBooking handles PATCH /bookings/{bookingID}
func (h *BookingHandler) HandleRescheduleBooking(w http.ResponseWriter, r *http.Request) {
	booking, ok := h.loadAuthorized(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[RescheduleBookingRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.RescheduleBookingParams{
		BookingID: booking.ID,
		SeatID:    req.SeatID,
	}
	if req.StartTime != nil {
		params.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		params.EndTime = *req.EndTime
	}

	updated, err := h.bookingService.RescheduleBooking(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, updated)
}

// HandleCancelBooking handles POST /bookings/{bookingID}/cancel
func (h *BookingHandler) HandleCancelBooking(w http.ResponseWriter, r *http.Request) {
	booking, ok := h.loadAuthorized(w, r)
	if !ok {
		return
	}

	cancelled, err := h.bookingService.CancelBooking(r.Context(), booking.ID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "booking cancelled", "booking_id", cancelled.ID)

	WriteJSON(w, http.StatusOK, cancelled)
}

// HandleCheckIn handles POST /bookings/{bookingID}/checkin
func (h *BookingHandler) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.bookingService.CheckIn, "booking checked in")
}

// HandleCheckOut handles POST /bookings/{bookingID}/checkout
func (h *BookingHandler) HandleCheckOut(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.bookingService.CheckOut, "booking checked out")
}

// HandleListLibraryBookings handles GET /libraries/{libraryID}/bookings
func (h *BookingHandler) HandleListLibraryBookings(w http.ResponseWriter, r *http.Request) {
	libraryID, err := pathID(r, "libraryID", apperrors.ErrLibraryIDRequired)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	pagination := validation.ParsePagination(r, maxBookingsPerPage)

	bookings, err := h.bookingService.ListLibraryBookings(r.Context(), ports.ListBookingsParams{
		LibraryID: libraryID,
		Limit:     pagination.Limit + 1,
		Offset:    pagination.Offset,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WritePage(w, bookings, pagination.Limit, pagination.Offset)
}

func (h *BookingHandler) handleTransition(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, bookingID string) (*domain.Booking, error),
	message string,
) {
	bookingID := chi.URLParam(r, "bookingID")
	if bookingID == "" {
		h.errorHandler.Handle(w, r, apperrors.ErrBookingIDRequired)
		return
	}

	booking, err := apply(r.Context(), bookingID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), message, "booking_id", booking.ID, "status", booking.Status)

	WriteJSON(w, http.StatusOK, booking)
}

// loadAuthorized fetches the booking in the path if the caller owns it or is staff.
func (h *BookingHandler) loadAuthorized(w http.ResponseWriter, r *http.Request) (*domain.Booking, bool) {
	claims, ok := requireClaims(w, r, h.errorHandler)
	if !ok {
		return nil, false
	}

	bookingID := chi.URLParam(r, "bookingID")
	if bookingID == "" {
		h.errorHandler.Handle(w, r, apperrors.ErrBookingIDRequired)
		return nil, false
	}

	booking, err := h.bookingService.GetBooking(r.Context(), bookingID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return nil, false
	}

	if !canAccessBooking(claims, booking) {
		h.errorHandler.Handle(w, r, apperrors.NewForbiddenError("You do not have access to this booking"))
		return nil, false
	}
	return booking, true
}

func canAccessBooking(claims *auth.Claims, booking *domain.Booking) bool {
	return claims.Role.IsStaff() || booking.UserID == claims.UserID
}
