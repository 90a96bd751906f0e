package httpapi

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"matchduo.org/internal/audit"
	"matchduo.org/internal/auth"
	"matchduo.org/internal/obs"
)

// Condition codes exposed by the auth endpoints.
const (
	codeNotFoundEmail    = "NOT_FOUND_EMAIL"
	codeWrongPassword    = "WRONG_PASSWORD"
	codeUnauthorizedUser = "UNAUTHORIZED_USER"
	codeNotFoundUser     = "NOT_FOUND_USER"
	codeRateLimited      = "RATE_LIMITED"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User         auth.UserSummary `json:"user"`
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
}

type refreshResponse struct {
	User        auth.UserSummary `json:"user"`
	AccessToken string           `json:"accessToken"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	// The throttle gate runs before anything else: a throttled client gets
	// no identity lookup and no credential check.
	key := clientIP(r)
	if key == "" {
		key = "unknown"
	}
	if !a.logins.Allow(key) {
		obs.ObserveRateLimited()
		_ = audit.LogEvent(r.Context(), audit.EventRateLimited, map[string]any{"client": key})
		retry := int(math.Ceil(a.logins.RetryAfter(key).Seconds()))
		if retry > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(retry))
		}
		writeErrorCode(w, r, http.StatusTooManyRequests, codeRateLimited,
			"too many login attempts, retry later")
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := a.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailNotFound):
			obs.ObserveLogin("email_not_found")
			writeErrorCode(w, r, http.StatusNotFound, codeNotFoundEmail, "email not found")
		case errors.Is(err, auth.ErrWrongPassword):
			obs.ObserveLogin("wrong_password")
			writeErrorCode(w, r, http.StatusUnauthorized, codeWrongPassword, "wrong password")
		default:
			obs.ObserveLogin("error")
			writeError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	obs.ObserveLogin("success")
	if result.CredentialMigrated {
		obs.ObserveCredentialMigration()
		_ = audit.LogEvent(r.Context(), audit.EventCredentialMigrated,
			map[string]any{"user_id": result.User.ID})
	}
	_ = audit.LogEvent(r.Context(), audit.EventLogin,
		map[string]any{"user_id": result.User.ID, "client": key})

	a.cookies.WriteAccess(w, result.Access)
	a.cookies.WriteRefresh(w, result.Refresh)

	writeJSON(w, http.StatusOK, loginResponse{
		User:         result.User,
		AccessToken:  result.Access.Value,
		RefreshToken: result.Refresh.Value,
	})
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	token := a.cookies.ReadRefresh(r)
	result, err := a.sessions.Refresh(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUnauthorized):
			obs.ObserveRefresh("unauthorized")
			writeErrorCode(w, r, http.StatusUnauthorized, codeUnauthorizedUser, "unauthorized")
		case errors.Is(err, auth.ErrUserNotFound):
			obs.ObserveRefresh("user_not_found")
			writeErrorCode(w, r, http.StatusNotFound, codeNotFoundUser, "user not found")
		default:
			obs.ObserveRefresh("error")
			writeError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	obs.ObserveRefresh("success")
	_ = audit.LogEvent(r.Context(), audit.EventRefresh,
		map[string]any{"user_id": result.User.ID})

	a.cookies.WriteAccess(w, result.Access)

	// The refresh token stays cookie-only; it is never echoed in the body.
	writeJSON(w, http.StatusOK, refreshResponse{
		User:        result.User,
		AccessToken: result.Access.Value,
	})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	status := a.sessions.Logout(r.Context(), a.cookies.ReadRefresh(r))
	_ = audit.LogEvent(r.Context(), audit.EventLogout,
		map[string]any{"cleared": status == auth.LogoutCleared})

	// Cookies are expired no matter what the token looked like.
	a.cookies.ExpireAll(w)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// handleMe resolves the authenticated identity; it is the template for how
// domain services consume the session context.
func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeErrorCode(w, r, http.StatusUnauthorized, codeUnauthorizedUser, "unauthorized")
		return
	}
	summary, err := a.sessions.Whoami(r.Context(), userID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeErrorCode(w, r, http.StatusNotFound, codeNotFoundUser, "user not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": summary})
}
