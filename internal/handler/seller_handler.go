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

type SellerHandler struct {
	svc service.SellerService
}

func NewSellerHandler(svc service.SellerService) *SellerHandler {
	return &SellerHandler{svc: svc}
}

type SellerResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	City            string  `json:"city"`
	Pincode         string  `json:"pincode"`
	Address         string  `json:"address"`
	Active          bool    `json:"active"`
	TotalOrders     int64   `json:"totalOrders"`
	CompletedOrders int64   `json:"completedOrders"`
	Rating          float64 `json:"rating"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

func toSellerResponse(s *model.Seller) SellerResponse {
	return SellerResponse{
		ID:              s.ID,
		Name:            s.Name,
		Email:           s.Email,
		Phone:           s.Phone,
		City:            s.City,
		Pincode:         s.Pincode,
		Address:         s.Address,
		Active:          s.Active,
		TotalOrders:     s.TotalOrders,
		CompletedOrders: s.CompletedOrders,
		Rating:          s.Rating,
		CreatedAt:       s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       s.UpdatedAt.Format(time.RFC3339),
	}
}

func toSellerResponses(list []model.Seller) []SellerResponse {
	return lo.Map(list, func(s model.Seller, _ int) SellerResponse { return toSellerResponse(&s) })
}

type sellerRequest struct {
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Phone   string   `json:"phone"`
	City    string   `json:"city"`
	Pincode string   `json:"pincode"`
	Address string   `json:"address"`
	Active  *bool    `json:"active"`
	Rating  *float64 `json:"rating"`
}

func (r sellerRequest) input() service.SellerInput {
	return service.SellerInput(r)
}

func (h *SellerHandler) List(c echo.Context) error {
	activeOnly := false
	if raw := c.QueryParam("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return badRequest(c, "invalid active flag")
		}
		activeOnly = v
	}
	list, err := h.svc.List(c.Request().Context(), activeOnly, c.QueryParam("city"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toSellerResponses(list))
}

func (h *SellerHandler) Get(c echo.Context) error {
	s, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toSellerResponse(s))
}

func (h *SellerHandler) Create(c echo.Context) error {
	var body sellerRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	s, err := h.svc.Create(c.Request().Context(), body.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toSellerResponse(s))
}

func (h *SellerHandler) Update(c echo.Context) error {
	var body sellerRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	s, err := h.svc.Update(c.Request().Context(), c.Param("id"), body.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toSellerResponse(s))
}

func (h *SellerHandler) SetActive(c echo.Context) error {
	var body struct {
		Active *bool `json:"active"`
	}
	if err := c.Bind(&body); err != nil || body.Active == nil {
		return badRequest(c, "active is required")
	}
	s, err := h.svc.SetActive(c.Request().Context(), c.Param("id"), *body.Active)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toSellerResponse(s))
}

func (h *SellerHandler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
