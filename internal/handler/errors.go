package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/pharmacy-admin-backend/internal/repository"
	"github.com/shinyyama/pharmacy-admin-backend/internal/reqctx"
	"github.com/shinyyama/pharmacy-admin-backend/internal/service"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Error: errorPayload{Code: code, Message: message}}
}

// writeError maps service errors onto HTTP statuses. Anything unrecognised
// came from Firestore, Auth or Storage and is reported as a bad gateway with
// the underlying message.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", err.Error()))
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	case errors.Is(err, service.ErrNoSellerAvailable):
		return c.JSON(http.StatusConflict, NewErrorResponse("no_seller_available", err.Error()))
	case errors.Is(err, service.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, NewErrorResponse("invalid_transition", err.Error()))
	case errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", err.Error()))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", err.Error()))
	case errors.Is(err, repository.ErrDBNotReady):
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("unavailable", err.Error()))
	}
	log.Printf("[http] rid=%s %s %s: %v", reqctx.RID(c.Request().Context()), c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusBadGateway, NewErrorResponse("upstream_error", err.Error()))
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", msg))
}
