package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"github.com/shinyyama/pharmacy-admin-backend/internal/model"
	"github.com/shinyyama/pharmacy-admin-backend/internal/service"
)

type PrescriptionHandler struct {
	svc service.PrescriptionService
}

func NewPrescriptionHandler(svc service.PrescriptionService) *PrescriptionHandler {
	return &PrescriptionHandler{svc: svc}
}

type PrescriptionResponse struct {
	ID                 string  `json:"id"`
	UserID             string  `json:"userId"`
	CustomerName       string  `json:"customerName"`
	CustomerPhone      string  `json:"customerPhone"`
	OrderID            string  `json:"orderId,omitempty"`
	FileName           string  `json:"fileName"`
	FileURL            string  `json:"fileUrl"`
	FileType           string  `json:"fileType,omitempty"`
	DeliveryAddress    string  `json:"deliveryAddress"`
	Location           string  `json:"location"`
	Notes              string  `json:"notes,omitempty"`
	Status             string  `json:"status"`
	AssignedSellerID   string  `json:"assignedSellerId,omitempty"`
	AssignedSellerName string  `json:"assignedSellerName,omitempty"`
	VerifiedBy         string  `json:"verifiedBy,omitempty"`
	VerifiedAt         *string `json:"verifiedAt,omitempty"`
	RejectionReason    string  `json:"rejectionReason,omitempty"`
	CreatedAt          string  `json:"createdAt"`
	UpdatedAt          string  `json:"updatedAt"`
}

func toPrescriptionResponse(p *model.Prescription) PrescriptionResponse {
	var verifiedAt *string
	if p.VerifiedAt != nil {
		val := p.VerifiedAt.Format(time.RFC3339)
		verifiedAt = &val
	}
	return PrescriptionResponse{
		ID:                 p.ID,
		UserID:             p.UserID,
		CustomerName:       p.CustomerName,
		CustomerPhone:      p.CustomerPhone,
		OrderID:            p.OrderID,
		FileName:           p.FileName,
		FileURL:            p.FileURL,
		FileType:           p.FileType,
		DeliveryAddress:    p.DeliveryAddress,
		Location:           p.Location,
		Notes:              p.Notes,
		Status:             string(p.Status),
		AssignedSellerID:   p.AssignedSellerID,
		AssignedSellerName: p.AssignedSellerName,
		VerifiedBy:         p.VerifiedBy,
		VerifiedAt:         verifiedAt,
		RejectionReason:    p.RejectionReason,
		CreatedAt:          p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          p.UpdatedAt.Format(time.RFC3339),
	}
}

func toPrescriptionResponses(list []model.Prescription) []PrescriptionResponse {
	return lo.Map(list, func(p model.Prescription, _ int) PrescriptionResponse { return toPrescriptionResponse(&p) })
}

func prescriptionStatusParam(c echo.Context) (model.PrescriptionStatus, bool) {
	raw := c.QueryParam("status")
	if raw == "" {
		return "", true
	}
	return model.ToPrescriptionStatus(raw)
}

func (h *PrescriptionHandler) List(c echo.Context) error {
	status, ok := prescriptionStatusParam(c)
	if !ok {
		return badRequest(c, "invalid status")
	}
	list, err := h.svc.List(c.Request().Context(), service.PrescriptionFilter{Status: status})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPrescriptionResponses(list))
}

func (h *PrescriptionHandler) ListMineLocation(c echo.Context) error {
	sess := currentSession(c)
	if sess == nil {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing session"))
	}
	status, ok := prescriptionStatusParam(c)
	if !ok {
		return badRequest(c, "invalid status")
	}
	if sess.Location == "" {
		return c.JSON(http.StatusOK, []PrescriptionResponse{})
	}
	list, err := h.svc.List(c.Request().Context(), service.PrescriptionFilter{Status: status, Location: sess.Location})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPrescriptionResponses(list))
}

// ListBySeller serves /sellers/:id/prescriptions.
func (h *PrescriptionHandler) ListBySeller(c echo.Context) error {
	list, err := h.svc.List(c.Request().Context(), service.PrescriptionFilter{SellerID: c.Param("id")})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPrescriptionResponses(list))
}

func (h *PrescriptionHandler) Get(c echo.Context) error {
	p, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPrescriptionResponse(p))
}

type createPrescriptionRequest struct {
	UserID          string `json:"userId"`
	CustomerName    string `json:"customerName"`
	CustomerPhone   string `json:"customerPhone"`
	OrderID         string `json:"orderId"`
	FileName        string `json:"fileName"`
	FileURL         string `json:"fileUrl"`
	FileType        string `json:"fileType"`
	DeliveryAddress string `json:"deliveryAddress"`
	Notes           string `json:"notes"`
}

func (h *PrescriptionHandler) Create(c echo.Context) error {
	var body createPrescriptionRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	p, err := h.svc.Create(c.Request().Context(), service.CreatePrescriptionInput(body))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toPrescriptionResponse(p))
}

func (h *PrescriptionHandler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PrescriptionHandler) File(c echo.Context) error {
	u, err := h.svc.FileURL(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"url": u})
}

func (h *PrescriptionHandler) Verify(c echo.Context) error {
	p, err := h.svc.Verify(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPrescriptionResponse(p))
}

func (h *PrescriptionHandler) Reject(c echo.Context) error {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	p, err := h.svc.Reject(c.Request().Context(), c.Param("id"), body.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPrescriptionResponse(p))
}

func (h *PrescriptionHandler) Assign(c echo.Context) error {
	var body struct {
		SellerID string `json:"sellerId"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	p, err := h.svc.Assign(c.Request().Context(), c.Param("id"), body.SellerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPrescriptionResponse(p))
}

func (h *PrescriptionHandler) AutoAssign(c echo.Context) error {
	var body struct {
		City string `json:"city"`
	}
	// an empty body binds to nothing and leaves the city to the address
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	p, err := h.svc.AutoAssign(c.Request().Context(), c.Param("id"), body.City)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPrescriptionResponse(p))
}

func (h *PrescriptionHandler) UpdateStatus(c echo.Context) error {
	var body struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	p, err := h.svc.UpdateStatus(c.Request().Context(), c.Param("id"), model.PrescriptionStatus(body.Status), body.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPrescriptionResponse(p))
}
