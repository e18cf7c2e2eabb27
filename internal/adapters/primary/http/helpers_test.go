package http

import (
	"encoding/json"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	mw "github.com/lorrc/studyspace-backend/internal/adapters/primary/http/middleware"
	"github.com/lorrc/studyspace-backend/internal/auth"
	"github.com/lorrc/studyspace-backend/internal/core/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestErrorHandler() *ErrorHandler {
	return NewErrorHandler(newTestLogger())
}

func claimsFor(userID string, role domain.Role) *auth.Claims {
	return &auth.Claims{UserID: userID, Role: role}
}

// serve sends a request through h as the given caller. A nil caller is anonymous.
func serve(h stdhttp.Handler, caller *auth.Claims, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if caller != nil {
		req = req.WithContext(mw.WithClaims(req.Context(), caller))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}
