package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/username/playfolio/backend/src/config"
	"github.com/username/playfolio/backend/src/logger"
	"github.com/username/playfolio/backend/src/security"
	"github.com/username/playfolio/backend/src/utils"
)

type contextKey string

const sessionIDContextKey = contextKey("sessionID")

// GetSessionIDFromContext extracts the session ID the auth middleware stored.
func GetSessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(sessionIDContextKey).(string)
	return sessionID, ok
}

func contextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDContextKey, sessionID)
}

type SessionHandler struct {
	sessionService *security.SessionService
}

func NewSessionHandler(sessionService *security.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// HandleCreateSession mints a fresh anonymous session and its bearer token.
// There is no registration; a session is the unit of data ownership.
func (h *SessionHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := h.sessionService.NewSessionID()
	if err != nil {
		logger.L.Error("Failed to generate session ID", "error", err)
		utils.SendJSONError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	token, err := h.sessionService.IssueToken(sessionID)
	if err != nil {
		logger.L.Error("Failed to issue session token", "sessionID", sessionID, "error", err)
		utils.SendJSONError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	logger.L.Info("Created session", "sessionID", sessionID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"sessionId": sessionID,
		"token":     token,
		"expiresIn": int64(config.Cfg.SessionTokenExpiry.Seconds()),
	})
}

// AuthMiddleware validates the bearer token and puts the session ID in the
// request context for downstream handlers.
func (h *SessionHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logger.L.Debug("AuthMiddleware: Authorization header missing", "path", r.URL.Path)
			utils.SendJSONError(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			logger.L.Debug("AuthMiddleware: Token string empty", "path", r.URL.Path)
			utils.SendJSONError(w, "Malformed token", http.StatusUnauthorized)
			return
		}

		sessionID, err := h.sessionService.ValidateToken(tokenString)
		if err != nil {
			logger.L.Warn("AuthMiddleware: Token validation failed", "path", r.URL.Path, "error", err)
			utils.SendJSONError(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := contextWithSessionID(r.Context(), sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}
