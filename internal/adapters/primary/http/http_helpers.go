package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/lorrc/studyspace-backend/internal/adapters/primary/http/middleware"
	"github.com/lorrc/studyspace-backend/internal/auth"
	"github.com/lorrc/studyspace-backend/internal/core/domain"
	apperrors "github.com/lorrc/studyspace-backend/internal/core/errors"
)

// requireClaims returns the caller's claims, writing a 401 when there are none.
func requireClaims(w http.ResponseWriter, r *http.Request, eh *ErrorHandler) (*auth.Claims, bool) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		eh.Handle(w, r, apperrors.NewUnauthorizedError("Authentication required"))
		return nil, false
	}
	return claims, true
}

// pathID reads a chi URL parameter that is used as a room identifier.
func pathID(r *http.Request, name string, missing error) (string, error) {
	id := chi.URLParam(r, name)
	if id == "" {
		return "", missing
	}
	if !domain.ValidIdentifier(id) {
		return "", apperrors.ErrInvalidIdentifier
	}
	return id, nil
}
