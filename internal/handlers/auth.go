package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/meridiancap/cms-apiserver/internal/services"
	"github.com/meridiancap/cms-apiserver/types"
)

type contextKey string

const (
	contextAdminKey contextKey = "admin"
	contextTokenKey contextKey = "session_token"
)

// sessionCookieName is the cookie the frontend may use instead of the
// Authorization header.
const sessionCookieName = "admin_token"

// maxTokenBodyBytes bounds the body peek performed by the body-field
// token fallback.
const maxTokenBodyBytes = 1 << 20

// AuthHandler provides session authentication endpoints and the
// RequireSession gate used by every admin route.
type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RequireSession validates the request's session token and injects the
// authenticated admin into the context. On failure it terminates the
// request with a 401 envelope before the wrapped handler can perform any
// side effect.
func (h *AuthHandler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		admin, err := h.auth.Validate(r.Context(), token)
		if err != nil {
			if isAuthFailure(err) {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			writeRepoError(w, r, err, "authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), contextAdminKey, admin)
		ctx = context.WithValue(ctx, contextTokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func isAuthFailure(err error) bool {
	return errors.Is(err, services.ErrUnknownToken) ||
		errors.Is(err, services.ErrExpiredSession) ||
		errors.Is(err, services.ErrInactivePrincipal)
}

// AdminFromContext returns the authenticated admin injected by
// RequireSession.
func AdminFromContext(ctx context.Context) (types.Admin, bool) {
	admin, ok := ctx.Value(contextAdminKey).(types.Admin)
	return admin, ok
}

func tokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(contextTokenKey).(string)
	return token
}

// extractToken accepts the session token from any of the supported
// transports, in order: Authorization bearer header, session cookie,
// query parameter, and finally a "token" field in a JSON body. All are
// treated equivalently.
func extractToken(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token
			}
		}
	}

	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if token := strings.TrimSpace(cookie.Value); token != "" {
			return token
		}
	}

	if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
		return token
	}

	return tokenFromBody(r)
}

// tokenFromBody peeks at a JSON body for a "token" field, restoring the
// body so the downstream handler can still read it.
func tokenFromBody(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxTokenBodyBytes))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(data))
	if err != nil {
		return ""
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	return strings.TrimSpace(body.Token)
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  types.Admin `json:"user"`
}

// Login verifies credentials and issues a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	fields := map[string]string{}
	if req.Username == "" {
		fields["username"] = "username is required"
	}
	if req.Password == "" {
		fields["password"] = "password is required"
	}
	if len(fields) > 0 {
		writeValidation(w, fields)
		return
	}

	token, admin, err := h.auth.Login(r.Context(), req.Username, req.Password, clientIP(r), r.UserAgent())
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeRepoError(w, r, err, "invalid credentials")
		return
	}

	writeSuccess(w, "login successful", LoginResponse{Token: token, User: admin})
}

// CheckAuth returns the admin bound to the current session.
func (h *AuthHandler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	admin, ok := AdminFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeSuccess(w, "authenticated", admin)
}

// Logout revokes the current session. Revoking an already-revoked token
// succeeds: logout is idempotent.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), tokenFromContext(r.Context())); err != nil {
		writeRepoError(w, r, err, "session not found")
		return
	}
	writeSuccess(w, "logged out", nil)
}

// clientIP prefers chi's RealIP-resolved remote address.
func clientIP(r *http.Request) string {
	addr := r.RemoteAddr
	if i := strings.LastIndex(addr, ":"); i > 0 && !strings.Contains(addr[i:], "]") {
		addr = addr[:i]
	}
	return addr
}
