package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/shinyyama/pharmacy-admin-backend/internal/session"
)

// Context keys set by the auth middleware.
const (
	ContextKeySession = "session"
	ContextKeyToken   = "token"
)

func currentSession(c echo.Context) *session.Session {
	s, _ := c.Get(ContextKeySession).(*session.Session)
	return s
}
