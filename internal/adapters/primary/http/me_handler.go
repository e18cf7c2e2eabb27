package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/studyspace-backend/internal/core/domain"
)

// MeResponse describes the caller and the rooms a socket of theirs joins on connect.
type MeResponse struct {
	UserID string      `json:"userId"`
	Role   domain.Role `json:"role"`
	Rooms  []string    `json:"rooms"`
}

// MeHandler handles HTTP requests for the authenticated user.
type MeHandler struct {
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewMeHandler creates a new MeHandler.
func NewMeHandler(errorHandler *ErrorHandler, logger *slog.Logger) *MeHandler {
	return &MeHandler{
		errorHandler: errorHandler,
		logger:       logger.With("handler", "me"),
	}
}

// RegisterRoutes registers the /me routes.
func (h *MeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleMe)
}

// HandleMe handles GET /me.
func (h *MeHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	rooms := domain.RoomKeys(domain.CollectTargets(
		domain.UserTarget(claims.UserID),
		domain.RoleTarget(claims.Role),
	))

	WriteJSON(w, http.StatusOK, MeResponse{
		UserID: claims.UserID,
		Role:   claims.Role,
		Rooms:  rooms,
	})
}
