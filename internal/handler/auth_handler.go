package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/pharmacy-admin-backend/internal/model"
	"github.com/shinyyama/pharmacy-admin-backend/internal/service"
)

type AuthHandler struct {
	svc service.AdminService
}

func NewAuthHandler(svc service.AdminService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type AdminResponse struct {
	UID         string  `json:"uid"`
	Email       string  `json:"email"`
	DisplayName string  `json:"displayName"`
	Location    string  `json:"location"`
	Role        string  `json:"role"`
	CreatedAt   string  `json:"createdAt"`
	LastLogin   *string `json:"lastLogin"`
}

func toAdminResponse(a *model.Admin) AdminResponse {
	var last *string
	if !a.LastLogin.IsZero() {
		val := a.LastLogin.Format(time.RFC3339)
		last = &val
	}
	return AdminResponse{
		UID:         a.UID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		Location:    a.Location,
		Role:        a.Role,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
		LastLogin:   last,
	}
}

type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt string        `json:"expiresAt"`
	Admin     AdminResponse `json:"admin"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var body struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"displayName"`
		Location    string `json:"location"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	a, err := h.svc.Register(c.Request().Context(), service.RegisterInput(body))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toAdminResponse(a))
}

func (h *AuthHandler) Login(c echo.Context) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	sess, a, err := h.svc.Login(c.Request().Context(), body.Email, body.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, LoginResponse{
		Token:     sess.ID,
		ExpiresAt: sess.ExpiresAt.Format(time.RFC3339),
		Admin:     toAdminResponse(a),
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	token, _ := c.Get(ContextKeyToken).(string)
	if err := h.svc.Logout(c.Request().Context(), token); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) Me(c echo.Context) error {
	sess := currentSession(c)
	if sess == nil {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing session"))
	}
	a, err := h.svc.Me(c.Request().Context(), sess.UID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toAdminResponse(a))
}

func (h *AuthHandler) UpdateLocation(c echo.Context) error {
	sess := currentSession(c)
	if sess == nil {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing session"))
	}
	var body struct {
		Location string `json:"location"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	a, err := h.svc.UpdateLocation(c.Request().Context(), sess, body.Location)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toAdminResponse(a))
}
