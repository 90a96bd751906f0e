package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"matchduo.org/internal/auth"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

// accessValidator is the slice of the token issuer the middleware needs.
type accessValidator interface {
	ValidateAccess(token string) (string, error)
}

var publicPaths = []string{
	"/api/v1/auth/login",
	"/api/v1/auth/refresh",
	"/api/v1/auth/logout",
	"/api/v1/info",
	"/metrics",
	"/healthz",
	"/readyz",
	"/",
}

// withAuth resolves the access token (cookie first, bearer header as the
// API-client fallback) into a context identity for downstream handlers.
func (a *API) withAuth(next http.Handler) http.Handler {
	if a == nil || a.tokens == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token := a.cookies.ReadAccess(r)
		if token == "" {
			var err error
			token, err = extractBearerToken(r.Header.Get(authHeader))
			if err != nil {
				writeErrorCode(w, r, http.StatusUnauthorized, codeUnauthorizedUser, err.Error())
				return
			}
		}

		userID, err := a.tokens.ValidateAccess(token)
		if err != nil {
			writeErrorCode(w, r, http.StatusUnauthorized, codeUnauthorizedUser, "invalid token")
			return
		}

		ctx := auth.ContextWithUser(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
