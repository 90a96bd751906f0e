package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"matchduo.org/internal/auth"
)

func protectedEcho(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			t.Fatal("identity missing from context")
		}
		w.Header().Set("X-User", userID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestWithAuthAcceptsAccessCookie(t *testing.T) {
	api, _, issuer := newTestAPI(t, nil)
	token, err := issuer.IssueAccess("u-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u-1", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token.Value})
	rr := httptest.NewRecorder()
	api.withAuth(protectedEcho(t)).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("X-User"); got != "u-1" {
		t.Fatalf("unexpected identity: %q", got)
	}
}

func TestWithAuthAcceptsBearerFallback(t *testing.T) {
	api, _, issuer := newTestAPI(t, nil)
	token, err := issuer.IssueAccess("u-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u-1", nil)
	req.Header.Set("Authorization", "Bearer "+token.Value)
	rr := httptest.NewRecorder()
	api.withAuth(protectedEcho(t)).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestWithAuthRejectsMissingToken(t *testing.T) {
	api, _, _ := newTestAPI(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u-1", nil)
	rr := httptest.NewRecorder()
	api.withAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestWithAuthRejectsRefreshTokenAsAccess(t *testing.T) {
	api, _, issuer := newTestAPI(t, nil)
	refresh, err := issuer.IssueRefresh("u-1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u-1", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: refresh.Value})
	rr := httptest.NewRecorder()
	api.withAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for refresh token, got %d", rr.Code)
	}
}

func TestWithAuthSkipsPublicPaths(t *testing.T) {
	api, _, _ := newTestAPI(t, nil)

	for _, path := range []string{
		"/api/v1/auth/login",
		"/api/v1/auth/refresh",
		"/api/v1/auth/logout",
		"/api/v1/info",
		"/healthz",
		"/readyz",
		"/metrics",
	} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rr := httptest.NewRecorder()
		called := false
		api.withAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		})).ServeHTTP(rr, req)
		if !called {
			t.Fatalf("expected %s to bypass authn", path)
		}
	}
}

func TestExtractBearerToken(t *testing.T) {
	if _, err := extractBearerToken(""); err == nil {
		t.Fatal("expected error for empty header")
	}
	if _, err := extractBearerToken("Basic dXNlcg=="); err == nil {
		t.Fatal("expected error for non-bearer scheme")
	}
	if _, err := extractBearerToken("Bearer   "); err == nil {
		t.Fatal("expected error for empty token")
	}
	token, err := extractBearerToken("Bearer abc.def.ghi")
	if err != nil {
		t.Fatalf("extractBearerToken: %v", err)
	}
	if token != "abc.def.ghi" {
		t.Fatalf("unexpected token: %q", token)
	}
}
