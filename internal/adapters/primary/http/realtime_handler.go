package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/lorrc/studyspace-backend/internal/adapters/primary/http/middleware"
	"github.com/lorrc/studyspace-backend/internal/adapters/primary/validation"
	"github.com/lorrc/studyspace-backend/internal/core/domain"
	apperrors "github.com/lorrc/studyspace-backend/internal/core/errors"
	"github.com/lorrc/studyspace-backend/internal/core/ports"
)

// RealtimeHandler exposes role broadcasts and connection statistics
type RealtimeHandler struct {
	router       ports.RealtimeRouter
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewRealtimeHandler creates a new realtime handler
func NewRealtimeHandler(router ports.RealtimeRouter, errorHandler *ErrorHandler, logger *slog.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		router:       router,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "realtime"),
	}
}

// RegisterRoutes sets up the realtime endpoints. All of them require a manager role.
func (h *RealtimeHandler) RegisterRoutes(r chi.Router) {
	r.Use(mw.RequireRole(mw.ManagerRoles...))
	r.Post("/broadcast", h.HandleBroadcast)
	r.Get("/stats", h.HandleStats)
}

// BroadcastRequest defines the expected JSON body for a role broadcast
type BroadcastRequest struct {
	Role  string `json:"role" validate:"required,oneof=library_owner staff front_desk student admin"`
	Event string `json:"event" validate:"required,max=100"`
	Data  any    `json:"data"`
}

// BroadcastResponse acknowledges a broadcast. Delivery is best effort.
type BroadcastResponse struct {
	Room  string `json:"room"`
	Event string `json:"event"`
}

// HandleBroadcast handles POST /realtime/broadcast
func (h *RealtimeHandler) HandleBroadcast(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[BroadcastRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	// Without a registered server the broadcast would be silently dropped.
	if h.router.Server() == nil {
		h.errorHandler.Handle(w, r, apperrors.ErrRealtimeUnavailable)
		return
	}

	role := domain.Role(req.Role)
	h.router.BroadcastToRole(role, domain.EventType(req.Event), req.Data)

	h.logger.InfoContext(r.Context(), "role broadcast requested", "role", role, "event", req.Event)

	WriteJSON(w, http.StatusAccepted, BroadcastResponse{
		Room:  domain.RoleTarget(role).RoomKey(),
		Event: req.Event,
	})
}

// HandleStats handles GET /realtime/stats
func (h *RealtimeHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.router.ConnectionStats(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if stats == nil {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}
