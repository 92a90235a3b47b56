package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/pharmacy-admin-backend/internal/handler"
	"github.com/shinyyama/pharmacy-admin-backend/internal/reqctx"
	"github.com/shinyyama/pharmacy-admin-backend/internal/service"
	"github.com/shinyyama/pharmacy-admin-backend/internal/session"
	"github.com/stretchr/testify/assert"
)

type authFunc func(ctx context.Context, token string) (*session.Session, error)

func (f authFunc) Authenticate(ctx context.Context, token string) (*session.Session, error) {
	return f(ctx, token)
}

func TestRequireAuth(t *testing.T) {
	auth := authFunc(func(_ context.Context, token string) (*session.Session, error) {
		switch token {
		case "good":
			return &session.Session{ID: "good", UID: "admin-1", Location: "Pune"}, nil
		case "customer":
			return nil, service.ErrForbidden
		case "broken":
			return nil, errors.New("redis: connection refused")
		}
		return nil, service.ErrUnauthorized
	})
	mw := NewAuthMiddleware(auth)

	var seen struct {
		uid, actor, token string
		sess              *session.Session
	}
	next := func(c echo.Context) error {
		seen.uid, _ = c.Get("uid").(string)
		seen.token, _ = c.Get(handler.ContextKeyToken).(string)
		seen.sess, _ = c.Get(handler.ContextKeySession).(*session.Session)
		seen.actor = reqctx.Actor(c.Request().Context())
		return c.NoContent(http.StatusOK)
	}

	cases := []struct {
		name   string
		header string
		query  string
		code   int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"bearer", "Bearer good", "", http.StatusOK},
		{"query token", "", "?token=good", http.StatusOK},
		{"not bearer", "Basic good", "", http.StatusUnauthorized},
		{"unknown", "Bearer nope", "", http.StatusUnauthorized},
		{"not an admin", "Bearer customer", "", http.StatusForbidden},
		{"store failure", "Bearer broken", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen.uid, seen.actor, seen.token, seen.sess = "", "", "", nil
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/me"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			_ = mw.RequireAuth(next)(c)

			assert.Equal(t, tc.code, rec.Code)
			if tc.code == http.StatusOK {
				assert.Equal(t, "admin-1", seen.uid)
				assert.Equal(t, "admin-1", seen.actor)
				assert.Equal(t, "good", seen.token)
				if assert.NotNil(t, seen.sess) {
					assert.Equal(t, "Pune", seen.sess.Location)
				}
			} else {
				assert.Empty(t, seen.uid)
			}
		})
	}
}
