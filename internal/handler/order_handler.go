package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"github.com/shinyyama/pharmacy-admin-backend/internal/model"
	"github.com/shinyyama/pharmacy-admin-backend/internal/orderstatus"
	"github.com/shinyyama/pharmacy-admin-backend/internal/service"
)

type OrderHandler struct {
	svc service.OrderService
}

func NewOrderHandler(svc service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type StatusHistoryResponse struct {
	Status    string `json:"status"`
	Label     string `json:"label"`
	Note      string `json:"note"`
	Timestamp string `json:"timestamp"`
}

type OrderResponse struct {
	ID                string                  `json:"id"`
	UserID            string                  `json:"userId"`
	Customer          string                  `json:"customer"`
	Items             []model.OrderItem       `json:"items"`
	TotalAmount       float64                 `json:"totalAmount"`
	Status            string                  `json:"status"`
	StatusLabel       string                  `json:"statusLabel"`
	StatusHistory     []StatusHistoryResponse `json:"statusHistory"`
	DeliveryAddress   string                  `json:"deliveryAddress"`
	Location          string                  `json:"location"`
	TrackingNumber    *string                 `json:"trackingNumber,omitempty"`
	EstimatedDelivery *string                 `json:"estimatedDelivery,omitempty"`
	CreatedAt         string                  `json:"createdAt"`
	UpdatedAt         string                  `json:"updatedAt"`
}

func toOrderResponse(o *model.Order) OrderResponse {
	var eta *string
	if o.EstimatedDelivery != nil {
		val := o.EstimatedDelivery.Format(time.RFC3339)
		eta = &val
	}
	items := o.Items
	if items == nil {
		items = []model.OrderItem{}
	}
	return OrderResponse{
		ID:          o.ID,
		UserID:      o.UserID,
		Customer:    o.Customer(),
		Items:       items,
		TotalAmount: o.TotalAmount,
		Status:      string(o.Status),
		StatusLabel: string(orderstatus.ToLabel(o.Status)),
		StatusHistory: lo.Map(o.StatusHistory, func(h model.StatusHistoryEntry, _ int) StatusHistoryResponse {
			return StatusHistoryResponse{
				Status:    h.Status,
				Label:     string(orderstatus.ToLabel(model.OrderStatus(h.Status))),
				Note:      h.Note,
				Timestamp: h.Timestamp.Format(time.RFC3339),
			}
		}),
		DeliveryAddress:   o.DeliveryAddress,
		Location:          o.Location,
		TrackingNumber:    o.TrackingNumber,
		EstimatedDelivery: eta,
		CreatedAt:         o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         o.UpdatedAt.Format(time.RFC3339),
	}
}

func toOrderResponses(list []model.Order) []OrderResponse {
	return lo.Map(list, func(o model.Order, _ int) OrderResponse { return toOrderResponse(&o) })
}

func orderFilterFromQuery(c echo.Context) service.OrderFilter {
	return service.OrderFilter{
		Status: model.OrderStatus(c.QueryParam("status")),
		Label:  orderstatus.Label(c.QueryParam("label")),
		UserID: c.QueryParam("user_id"),
	}
}

func (h *OrderHandler) List(c echo.Context) error {
	list, err := h.svc.List(c.Request().Context(), orderFilterFromQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponses(list))
}

// ListMineLocation lists orders delivered to the signed-in admin's city.
func (h *OrderHandler) ListMineLocation(c echo.Context) error {
	sess := currentSession(c)
	if sess == nil {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing session"))
	}
	if sess.Location == "" {
		return c.JSON(http.StatusOK, []OrderResponse{})
	}
	f := orderFilterFromQuery(c)
	f.Location = sess.Location
	list, err := h.svc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponses(list))
}

func (h *OrderHandler) Get(c echo.Context) error {
	o, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

type createOrderRequest struct {
	UserID          string            `json:"userId"`
	Items           []model.OrderItem `json:"items"`
	TotalAmount     *float64          `json:"totalAmount"`
	DeliveryAddress string            `json:"deliveryAddress"`
}

func (h *OrderHandler) Create(c echo.Context) error {
	var body createOrderRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	o, err := h.svc.Create(c.Request().Context(), service.CreateOrderInput{
		UserID:          body.UserID,
		Items:           body.Items,
		TotalAmount:     body.TotalAmount,
		DeliveryAddress: body.DeliveryAddress,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toOrderResponse(o))
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var body struct {
		Status string `json:"status"`
		Note   string `json:"note"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	o, err := h.svc.UpdateStatus(c.Request().Context(), c.Param("id"), orderstatus.Label(body.Status), body.Note)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) UpdateTracking(c echo.Context) error {
	var body struct {
		TrackingNumber string `json:"trackingNumber"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	o, err := h.svc.UpdateTracking(c.Request().Context(), c.Param("id"), body.TrackingNumber)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Labels lists the staff statuses with their default notes.
func (h *OrderHandler) Labels(c echo.Context) error {
	type labelResponse struct {
		Label  string `json:"label"`
		Status string `json:"status"`
		Note   string `json:"note"`
	}
	out := lo.Map(orderstatus.Labels(), func(l orderstatus.Label, _ int) labelResponse {
		status, note := orderstatus.Translate(l)
		return labelResponse{Label: string(l), Status: string(status), Note: note}
	})
	return c.JSON(http.StatusOK, out)
}
