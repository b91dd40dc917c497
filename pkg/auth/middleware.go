package auth

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/casafind/casafind-server/pkg/apperror"
	"github.com/casafind/casafind-server/pkg/logger"
)

var Module = fx.Module("auth",
	fx.Provide(NewTokenIssuer),
	fx.Provide(NewMiddleware),
)

// AuthUser represents the authenticated caller attached to the request context.
type AuthUser struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// IsAdmin reports whether the caller has the admin role.
func (u *AuthUser) IsAdmin() bool {
	return u.Role == "admin"
}

type contextKey string

const UserContextKey contextKey = "auth_user"

// GetUser retrieves the authenticated user from the Echo context.
func GetUser(c echo.Context) *AuthUser {
	if user, ok := c.Get(string(UserContextKey)).(*AuthUser); ok {
		return user
	}
	return nil
}

// Middleware handles authentication for routes.
type Middleware struct {
	issuer *TokenIssuer
	log    *slog.Logger
}

// NewMiddleware creates a new auth middleware.
func NewMiddleware(issuer *TokenIssuer, log *slog.Logger) *Middleware {
	return &Middleware{
		issuer: issuer,
		log:    log.With(logger.Scope("auth")),
	}
}

// RequireAuth returns middleware that requires a valid bearer token.
func (m *Middleware) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := m.authenticate(c)
			if err != nil {
				m.log.Warn("authentication failed", logger.Error(err))
				return err
			}
			c.Set(string(UserContextKey), user)
			return next(c)
		}
	}
}

// RequireAdmin returns middleware that requires an authenticated admin.
// It must be chained after RequireAuth.
func (m *Middleware) RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := GetUser(c)
			if user == nil {
				return apperror.ErrUnauthorized
			}
			if !user.IsAdmin() {
				return apperror.ErrInsufficientPermissions
			}
			return next(c)
		}
	}
}

func (m *Middleware) authenticate(c echo.Context) (*AuthUser, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return nil, apperror.ErrMissingToken
	}

	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, apperror.ErrMissingToken.WithMessage("Authorization header must use the Bearer scheme")
	}

	claims, err := m.issuer.Verify(tokenString)
	if err != nil {
		return nil, apperror.ErrInvalidToken.WithInternal(err)
	}

	return &AuthUser{ID: claims.Subject, Role: claims.Role}, nil
}
