package handlers

import (
	"net/http"
	"strings"
	"time"

	"propertyms/internal/common"
	"propertyms/internal/models"
	"propertyms/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// PaymentHandlers serves rent payment endpoints.
type PaymentHandlers struct {
	paymentSvc services.PaymentService
	logger     *logrus.Logger
	now        func() time.Time
}

func NewPaymentHandlers(paymentSvc services.PaymentService, logger *logrus.Logger) *PaymentHandlers {
	return &PaymentHandlers{paymentSvc: paymentSvc, logger: logger, now: time.Now}
}

type generatePaymentsRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

type updatePaymentRequest struct {
	Status        *models.PaymentStatus `json:"status"`
	PaymentMethod *models.PaymentMethod `json:"payment_method"`
	Amount        *decimal.Decimal      `json:"amount"`
	Notes         *string               `json:"notes"`
	PaidAt        *string               `json:"paid_at"`
}

// ListPayments handles GET /payments
func (h *PaymentHandlers) ListPayments(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	filter := models.PaymentFilter{Status: models.PaymentStatus(strings.ToUpper(c.QueryParam("status")))}
	if filter.Status != "" && !filter.Status.IsValid() {
		return common.SendValidationError(c, "status", "invalid payment status")
	}
	var tenancyID, buildingID int
	for _, q := range []struct {
		name string
		dst  *int
	}{
		{"tenancy_id", &tenancyID},
		{"building_id", &buildingID},
		{"month", &filter.Month},
		{"year", &filter.Year},
	} {
		v, err := common.QueryInt(c, q.name, 0)
		if err != nil {
			return respondError(c, h.logger, err)
		}
		*q.dst = v
	}
	filter.TenancyID = int64(tenancyID)
	filter.BuildingID = int64(buildingID)

	limit, offset := common.Pagination(c)
	payments, err := h.paymentSvc.List(c.Request().Context(), caller, filter, limit, offset)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"payments": payments,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetPayment handles GET /payments/:id
func (h *PaymentHandlers) GetPayment(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := common.ParseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	payment, err := h.paymentSvc.GetByID(c.Request().Context(), caller, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, payment)
}

// GeneratePayments handles POST /payments/generate. An empty body targets
// the current month.
func (h *PaymentHandlers) GeneratePayments(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req generatePaymentsRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	now := h.now()
	if req.Month == 0 {
		req.Month = int(now.Month())
	}
	if req.Year == 0 {
		req.Year = now.Year()
	}

	result, err := h.paymentSvc.GenerateMonthly(c.Request().Context(), caller, req.Month, req.Year)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, result)
}

// UpdatePayment handles PUT /payments/:id
func (h *PaymentHandlers) UpdatePayment(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := common.ParseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req updatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	paidAt, err := parseOptionalDate(req.PaidAt, "paid_at")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	payment, err := h.paymentSvc.Update(c.Request().Context(), caller, id, models.PaymentUpdate{
		Status:        req.Status,
		PaymentMethod: req.PaymentMethod,
		Amount:        req.Amount,
		Notes:         req.Notes,
		PaidAt:        paidAt,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, payment)
}

// DeletePayment handles DELETE /payments/:id
func (h *PaymentHandlers) DeletePayment(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := common.ParseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := h.paymentSvc.Delete(c.Request().Context(), caller, id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreatePaymentLink handles POST /payments/:id/link
func (h *PaymentHandlers) CreatePaymentLink(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := common.ParseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	result, err := h.paymentSvc.CreatePaymentLink(c.Request().Context(), caller, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, result)
}

// BuildingSummary handles GET /payments/summary/building/:buildingId
func (h *PaymentHandlers) BuildingSummary(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	buildingID, err := common.ParseIDParam(c, "buildingId")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	month, year, err := periodParams(c, h.now())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	summary, err := h.paymentSvc.BuildingSummary(c.Request().Context(), caller, buildingID, month, year)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, summary)
}
