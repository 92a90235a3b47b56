package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"github.com/shinyyama/pharmacy-admin-backend/internal/model"
	"github.com/shinyyama/pharmacy-admin-backend/internal/service"
)

type ActivityHandler struct {
	svc service.ActivityService
}

func NewActivityHandler(svc service.ActivityService) *ActivityHandler {
	return &ActivityHandler{svc: svc}
}

type ActivityResponse struct {
	ID         uint64 `json:"id"`
	ActorUID   string `json:"actorUid"`
	Kind       string `json:"kind"`
	EntityType string `json:"entityType"`
	EntityID   string `json:"entityId"`
	Message    string `json:"message"`
	CreatedAt  string `json:"createdAt"`
}

// List returns the newest entries, or one entity's trail when entity_type
// and entity_id are given.
func (h *ActivityHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		list []model.Activity
		err  error
	)
	if et, id := c.QueryParam("entity_type"), c.QueryParam("entity_id"); et != "" && id != "" {
		list, err = h.svc.ListByEntity(ctx, et, id)
	} else {
		limit := 0
		if raw := c.QueryParam("limit"); raw != "" {
			n, convErr := strconv.Atoi(raw)
			if convErr != nil || n < 0 {
				return badRequest(c, "invalid limit")
			}
			limit = n
		}
		list, err = h.svc.ListRecent(ctx, limit)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, lo.Map(list, func(a model.Activity, _ int) ActivityResponse {
		return ActivityResponse{
			ID:         a.ID,
			ActorUID:   a.ActorUID,
			Kind:       a.Kind,
			EntityType: a.EntityType,
			EntityID:   a.EntityID,
			Message:    a.Message,
			CreatedAt:  a.CreatedAt.Format(time.RFC3339),
		}
	}))
}
