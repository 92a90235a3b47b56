package handler

import (
	"bytes"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"github.com/shinyyama/pharmacy-admin-backend/internal/model"
	"github.com/shinyyama/pharmacy-admin-backend/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ProductHandler struct {
	svc service.ProductService
}

func NewProductHandler(svc service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

type ProductResponse struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	Category             string  `json:"category"`
	Price                float64 `json:"price"`
	Rating               float64 `json:"rating"`
	Stock                int64   `json:"stock"`
	Description          string  `json:"description"`
	SellerID             string  `json:"sellerId"`
	SellerName           string  `json:"sellerName"`
	Image                string  `json:"image"`
	RequiresPrescription bool    `json:"requiresPrescription"`
	Available            bool    `json:"available"`
	CreatedAt            string  `json:"createdAt"`
	UpdatedAt            string  `json:"updatedAt"`
}

func toProductResponse(p *model.Product) ProductResponse {
	return ProductResponse{
		ID:                   p.ID,
		Name:                 p.Name,
		Category:             p.Category,
		Price:                p.Price,
		Rating:               p.Rating,
		Stock:                p.Stock,
		Description:          p.Description,
		SellerID:             p.SellerID,
		SellerName:           p.SellerName,
		Image:                p.Image,
		RequiresPrescription: p.RequiresPrescription,
		Available:            p.Available,
		CreatedAt:            p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            p.UpdatedAt.Format(time.RFC3339),
	}
}

type productRequest struct {
	Name                 string  `json:"name"`
	Category             string  `json:"category"`
	Price                float64 `json:"price"`
	Rating               float64 `json:"rating"`
	Stock                int64   `json:"stock"`
	Description          string  `json:"description"`
	SellerID             string  `json:"sellerId"`
	Image                string  `json:"image"`
	RequiresPrescription bool    `json:"requiresPrescription"`
	Available            *bool   `json:"available"`
}

func (h *ProductHandler) List(c echo.Context) error {
	list, err := h.svc.List(c.Request().Context(), c.QueryParam("seller_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, lo.Map(list, func(p model.Product, _ int) ProductResponse { return toProductResponse(&p) }))
}

func (h *ProductHandler) Get(c echo.Context) error {
	p, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

func (h *ProductHandler) Create(c echo.Context) error {
	var body productRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	p, err := h.svc.Create(c.Request().Context(), service.ProductInput(body))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toProductResponse(p))
}

func (h *ProductHandler) Update(c echo.Context) error {
	var body productRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	p, err := h.svc.Update(c.Request().Context(), c.Param("id"), service.ProductInput(body))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

func (h *ProductHandler) UpdateStock(c echo.Context) error {
	var body struct {
		Stock *int64 `json:"stock"`
	}
	if err := c.Bind(&body); err != nil || body.Stock == nil {
		return badRequest(c, "stock is required")
	}
	p, err := h.svc.UpdateStock(c.Request().Context(), c.Param("id"), *body.Stock)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

func (h *ProductHandler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHandler) Export(c echo.Context) error {
	var buf bytes.Buffer
	if err := h.svc.Export(c.Request().Context(), c.QueryParam("seller_id"), &buf); err != nil {
		return writeError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=products.xlsx")
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}
