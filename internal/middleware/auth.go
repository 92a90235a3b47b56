package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/pharmacy-admin-backend/internal/handler"
	"github.com/shinyyama/pharmacy-admin-backend/internal/reqctx"
	"github.com/shinyyama/pharmacy-admin-backend/internal/service"
	"github.com/shinyyama/pharmacy-admin-backend/internal/session"
)

// Authenticator resolves a bearer token into a session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*session.Session, error)
}

type AuthMiddleware struct {
	auth Authenticator
}

func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// bearer reads the Authorization header, falling back to ?token= since
// browsers cannot set headers on websocket upgrades.
func bearer(c echo.Context) string {
	authz := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	}
	return c.QueryParam("token")
}

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearer(c)
		if token == "" {
			return c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized", "missing token"))
		}
		req := c.Request()
		sess, err := m.auth.Authenticate(req.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrForbidden) {
				return c.JSON(http.StatusForbidden, handler.NewErrorResponse("forbidden", "not an admin"))
			}
			if !errors.Is(err, service.ErrUnauthorized) {
				log.Printf("[auth] rid=%s authenticate: %v", reqctx.RID(req.Context()), err)
			}
			return c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized", "invalid_token"))
		}
		c.Set("uid", sess.UID)
		c.Set(handler.ContextKeySession, sess)
		c.Set(handler.ContextKeyToken, token)
		c.SetRequest(req.WithContext(reqctx.WithActor(req.Context(), sess.UID)))
		return next(c)
	}
}
