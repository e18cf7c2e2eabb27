package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/lorrc/studyspace-backend/internal/adapters/primary/http/middleware"
	"github.com/lorrc/studyspace-backend/internal/adapters/primary/validation"
	"github.com/lorrc/studyspace-backend/internal/auth"
	"github.com/lorrc/studyspace-backend/internal/core/domain"
	apperrors "github.com/lorrc/studyspace-backend/internal/core/errors"
	"github.com/lorrc/studyspace-backend/internal/core/ports"
)

// LibraryHandler handles HTTP requests for libraries
type LibraryHandler struct {
	libraryService ports.LibraryService
	seatHandler    *SeatHandler
	bookingHandler *BookingHandler
	errorHandler   *ErrorHandler
	logger         *slog.Logger
}

// NewLibraryHandler creates a new library handler. The seat and booking
// handlers, when given, are mounted under /{libraryID}.
func NewLibraryHandler(
	libraryService ports.LibraryService,
	seatHandler *SeatHandler,
	bookingHandler *BookingHandler,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *LibraryHandler {
	return &LibraryHandler{
		libraryService: libraryService,
		seatHandler:    seatHandler,
		bookingHandler: bookingHandler,
		errorHandler:   errorHandler,
		logger:         logger.With("handler", "library"),
	}
}

// Router sets up a new chi Router for all library routes.
func (h *LibraryHandler) Router() http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes sets up the routing for all library endpoints.
func (h *LibraryHandler) RegisterRoutes(r chi.Router) {
	r.With(mw.RequireRole(mw.ManagerRoles...)).Post("/", h.HandleCreateLibrary)

	r.Route("/{libraryID}", func(r chi.Router) {
		r.Use(mw.LibraryScope("libraryID"))
		r.Get("/", h.HandleGetLibrary)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(mw.ManagerRoles...))
			r.Patch("/", h.HandleUpdateLibrary)
			r.Delete("/", h.HandleDeleteLibrary)
			r.Put("/pricing", h.HandleUpdatePricing)
		})

		if h.seatHandler != nil {
			r.Route("/seats", h.seatHandler.RegisterRoutes)
		}
		if h.bookingHandler != nil {
			r.With(mw.RequireRole(mw.StaffRoles...)).Get("/bookings", h.bookingHandler.HandleListLibraryBookings)
		}
	})
}

// --- Request DTOs ---

// PricingRequest is the JSON shape of a library's rates
type PricingRequest struct {
	HourlyRate  int64  `json:"hourlyRate" validate:"min=0"`
	DailyRate   int64  `json:"dailyRate" validate:"min=0"`
	MonthlyRate int64  `json:"monthlyRate" validate:"min=0"`
	Currency    string `json:"currency" validate:"required,len=3,uppercase"`
}

func (p PricingRequest) toDomain() domain.Pricing {
	return domain.Pricing{
		HourlyRate:  p.HourlyRate,
		DailyRate:   p.DailyRate,
		MonthlyRate: p.MonthlyRate,
		Currency:    p.Currency,
	}
}

// CreateLibraryRequest defines the expected JSON body for registering a library
type CreateLibraryRequest struct {
	Name       string         `json:"name" validate:"required,max=200"`
	Address    string         `json:"address" validate:"max=500"`
	OwnerID    string         `json:"ownerId" validate:"omitempty,excludes=:"`
	TotalSeats int            `json:"totalSeats" validate:"min=0"`
	Pricing    PricingRequest `json:"pricing"`
}

// UpdateLibraryRequest defines the expected JSON body for library changes.
// Omitted fields are left untouched.
type UpdateLibraryRequest struct {
	Name       *string `json:"name" validate:"omitempty,max=200"`
	Address    *string `json:"address" validate:"omitempty,max=500"`
	TotalSeats *int    `json:"totalSeats" validate:"omitempty,min=0"`
}

// --- Handlers ---

// HandleCreateLibrary handles POST /libraries
func (h *LibraryHandler) HandleCreateLibrary(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[CreateLibraryRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	// Only admins register libraries on behalf of another owner.
	ownerID := claims.UserID
	if claims.Role == domain.RoleAdmin && req.OwnerID != "" {
		ownerID = req.OwnerID
	}

	library, err := h.libraryService.CreateLibrary(r.Context(), ports.CreateLibraryParams{
		Name:       req.Name,
		Address:    req.Address,
		OwnerID:    ownerID,
		TotalSeats: req.TotalSeats,
		Pricing:    req.Pricing.toDomain(),
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "library created", "library_id", library.ID, "owner_id", library.OwnerID)

	WriteCreated(w, library)
}

// HandleGetLibrary handles GET /libraries/{libraryID}
func (h *LibraryHandler) HandleGetLibrary(w http.ResponseWriter, r *http.Request) {
	libraryID, err := pathID(r, "libraryID", apperrors.ErrLibraryIDRequired)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	library, err := h.libraryService.GetLibrary(r.Context(), libraryID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, library)
}

// HandleUpdateLibrary handles PATCH /libraries/{libraryID}
func (h *LibraryHandler) HandleUpdateLibrary(w http.ResponseWriter, r *http.Request) {
	libraryID, ok := h.authorizeManager(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[UpdateLibraryRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	library, err := h.libraryService.UpdateLibrary(r.Context(), ports.UpdateLibraryParams{
		LibraryID:  libraryID,
		Name:       req.Name,
		Address:    req.Address,
		TotalSeats: req.TotalSeats,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, library)
}

// HandleDeleteLibrary handles DELETE /libraries/{libraryID}
func (h *LibraryHandler) HandleDeleteLibrary(w http.ResponseWriter, r *http.Request) {
	libraryID, ok := h.authorizeManager(w, r)
	if !ok {
		return
	}

	if err := h.libraryService.DeleteLibrary(r.Context(), libraryID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "library deleted")

	WriteNoContent(w)
}

// HandleUpdatePricing handles PUT /libraries/{libraryID}/pricing
func (h *LibraryHandler) HandleUpdatePricing(w http.ResponseWriter, r *http.Request) {
	libraryID, ok := h.authorizeManager(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[PricingRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	library, err := h.libraryService.UpdatePricing(r.Context(), ports.UpdatePricingParams{
		LibraryID: libraryID,
		Pricing:   req.toDomain(),
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "library pricing updated", "currency", library.Pricing.Currency)

	WriteJSON(w, http.StatusOK, library)
}

// authorizeManager resolves the library in the path and checks the caller
// may change it: admins manage every library, owners only their own.
func (h *LibraryHandler) authorizeManager(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := requireClaims(w, r, h.errorHandler)
	if !ok {
		return "", false
	}

	libraryID, err := pathID(r, "libraryID", apperrors.ErrLibraryIDRequired)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return "", false
	}

	if err := h.checkOwnership(r.Context(), claims, libraryID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return "", false
	}
	return libraryID, true
}

func (h *LibraryHandler) checkOwnership(ctx context.Context, claims *auth.Claims, libraryID string) error {
	if claims.Role == domain.RoleAdmin {
		return nil
	}

	library, err := h.libraryService.GetLibrary(ctx, libraryID)
	if err != nil {
		return err
	}
	if library.OwnerID != claims.UserID {
		return apperrors.NewForbiddenError("You do not own this library")
	}
	return nil
}
