package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/lorrc/studyspace-backend/internal/adapters/primary/http/middleware"
	"github.com/lorrc/studyspace-backend/internal/adapters/primary/validation"
	"github.com/lorrc/studyspace-backend/internal/core/domain"
	"github.com/lorrc/studyspace-backend/internal/core/ports"
)

// NotificationHandler handles direct user notifications
type NotificationHandler struct {
	notificationService ports.NotificationService
	errorHandler        *ErrorHandler
	logger              *slog.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(
	notificationService ports.NotificationService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		errorHandler:        errorHandler,
		logger:              logger.With("handler", "notification"),
	}
}

// RegisterRoutes sets up the notification endpoints.
func (h *NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListNotifications)
	r.With(mw.RequireRole(mw.StaffRoles...)).Post("/", h.HandleSendNotification)
}

// SendNotificationRequest defines the expected JSON body for a direct notification
type SendNotificationRequest struct {
	UserID  string `json:"userId" validate:"required,excludes=:"`
	Kind    string `json:"kind" validate:"omitempty,oneof=info booking billing message"`
	Title   string `json:"title" validate:"required,max=200"`
	Message string `json:"message" validate:"max=2000"`
}

// HandleSendNotification handles POST /notifications
func (h *NotificationHandler) HandleSendNotification(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[SendNotificationRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	notification, err := h.notificationService.Send(r.Context(), ports.SendNotificationParams{
		UserID:  req.UserID,
		Kind:    domain.NotificationKind(req.Kind),
		Title:   req.Title,
		Message: req.Message,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "notification sent",
		"notification_id", notification.ID,
		"recipient_id", notification.UserID,
	)

	WriteCreated(w, notification)
}

// HandleListNotifications handles GET /notifications for the caller
func (h *NotificationHandler) HandleListNotifications(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	limit := validation.ParseIntQueryParam(r, "limit", 0)

	notifications, err := h.notificationService.ListForUser(r.Context(), claims.UserID, limit)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, notifications)
}
