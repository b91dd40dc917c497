package auth

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/casafind/casafind-server/internal/config"
	"github.com/casafind/casafind-server/pkg/apperror"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testIssuer(t *testing.T, ttl time.Duration) *TokenIssuer {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.TTL = ttl

	issuer, err := NewTokenIssuer(cfg)
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}
	return issuer
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := testIssuer(t, time.Hour)

	token, err := issuer.Issue("user-123", "admin")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.Subject != "user-123" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "user-123")
	}
	if claims.Role != "admin" {
		t.Errorf("Role = %q, want %q", claims.Role, "admin")
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	issuer := testIssuer(t, -time.Minute)

	token, err := issuer.Issue("user-123", "user")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := issuer.Verify(token); err == nil {
		t.Error("Verify() should reject an expired token")
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := testIssuer(t, time.Hour)
	token, err := issuer.Issue("user-123", "user")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	other := testIssuer(t, time.Hour)
	other.secret = []byte("different-secret")

	if _, err := other.Verify(token); err == nil {
		t.Error("Verify() should reject a token signed with another secret")
	}
}

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	cfg := &config.Config{}
	if _, err := NewTokenIssuer(cfg); err == nil {
		t.Error("NewTokenIssuer() should fail without JWT_SECRET")
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "hunter2" {
		t.Error("HashPassword() returned the plaintext")
	}
	if !CheckPassword("hunter2", hash) {
		t.Error("CheckPassword() rejected the correct password")
	}
	if CheckPassword("wrong", hash) {
		t.Error("CheckPassword() accepted a wrong password")
	}
}

func TestRequireAuth(t *testing.T) {
	issuer := testIssuer(t, time.Hour)
	m := NewMiddleware(issuer, discardLogger())

	handler := m.RequireAuth()(func(c echo.Context) error {
		user := GetUser(c)
		if user == nil {
			t.Fatal("GetUser() returned nil inside an authenticated handler")
		}
		return c.NoContent(http.StatusOK)
	})

	e := echo.New()

	t.Run("valid token", func(t *testing.T) {
		token, _ := issuer.Issue("user-1", "user")
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		rec := httptest.NewRecorder()

		if err := handler(e.NewContext(req, rec)); err != nil {
			t.Errorf("handler error = %v", err)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		err := handler(e.NewContext(req, rec))
		if appErr, ok := err.(*apperror.Error); !ok || appErr.HTTPStatus != http.StatusUnauthorized {
			t.Errorf("error = %v, want 401 app error", err)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-token")
		rec := httptest.NewRecorder()

		err := handler(e.NewContext(req, rec))
		if appErr, ok := err.(*apperror.Error); !ok || appErr.Code != "invalid_token" {
			t.Errorf("error = %v, want invalid_token", err)
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	issuer := testIssuer(t, time.Hour)
	m := NewMiddleware(issuer, discardLogger())

	handler := m.RequireAdmin()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	e := echo.New()

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(string(UserContextKey), &AuthUser{ID: "a", Role: "admin"})

		if err := handler(c); err != nil {
			t.Errorf("handler error = %v", err)
		}
	})

	t.Run("user forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(string(UserContextKey), &AuthUser{ID: "u", Role: "user"})

		err := handler(c)
		if appErr, ok := err.(*apperror.Error); !ok || appErr.HTTPStatus != http.StatusForbidden {
			t.Errorf("error = %v, want 403 app error", err)
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		err := handler(e.NewContext(req, rec))
		if appErr, ok := err.(*apperror.Error); !ok || appErr.HTTPStatus != http.StatusUnauthorized {
			t.Errorf("error = %v, want 401 app error", err)
		}
	})
}
