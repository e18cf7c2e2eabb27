package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/lorrc/studyspace-backend/internal/adapters/primary/http/middleware"
	"github.com/lorrc/studyspace-backend/internal/adapters/primary/validation"
	apperrors "github.com/lorrc/studyspace-backend/internal/core/errors"
	"github.com/lorrc/studyspace-backend/internal/core/ports"
)

// SeatHandler handles seat availability of a library
type SeatHandler struct {
	seatService  ports.SeatService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewSeatHandler creates a new seat handler
func NewSeatHandler(seatService ports.SeatService, errorHandler *ErrorHandler, logger *slog.Logger) *SeatHandler {
	return &SeatHandler{
		seatService:  seatService,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "seat"),
	}
}

// RegisterRoutes sets up the seat endpoints under /libraries/{libraryID}/seats.
func (h *SeatHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListSeats)
	r.With(mw.RequireRole(mw.StaffRoles...)).Put("/{seatID}", h.HandleSetAvailability)
}

// SetAvailabilityRequest defines the expected JSON body for a seat change
type SetAvailabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

// HandleListSeats handles GET /libraries/{libraryID}/seats
func (h *SeatHandler) HandleListSeats(w http.ResponseWriter, r *http.Request) {
	libraryID, err := pathID(r, "libraryID", apperrors.ErrLibraryIDRequired)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	seats, err := h.seatService.ListSeats(r.Context(), libraryID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, seats)
}

// HandleSetAvailability handles PUT /libraries/{libraryID}/seats/{seatID}
func (h *SeatHandler) HandleSetAvailability(w http.ResponseWriter, r *http.Request) {
	libraryID, err := pathID(r, "libraryID", apperrors.ErrLibraryIDRequired)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	seatID := chi.URLParam(r, "seatID")
	if seatID == "" {
		h.errorHandler.Handle(w, r, apperrors.ErrSeatIDRequired)
		return
	}

	req, err := validation.DecodeAndValidate[SetAvailabilityRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	seat, err := h.seatService.SetAvailability(r.Context(), ports.SetSeatAvailabilityParams{
		LibraryID: libraryID,
		SeatID:    seatID,
		Available: *req.Available,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "seat availability changed",
		"seat_id", seatID,
		"available", seat.Available,
	)

	WriteJSON(w, http.StatusOK, seat)
}
