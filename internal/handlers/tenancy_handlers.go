package handlers

import (
	"net/http"

	"propertyms/internal/common"
	"propertyms/internal/models"
	"propertyms/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// TenancyHandlers serves tenancy management endpoints.
type TenancyHandlers struct {
	tenancySvc services.TenancyService
	logger     *logrus.Logger
}

func NewTenancyHandlers(tenancySvc services.TenancyService, logger *logrus.Logger) *TenancyHandlers {
	return &TenancyHandlers{tenancySvc: tenancySvc, logger: logger}
}

type createTenancyRequest struct {
	UnitID        int64           `json:"unit_id"`
	TenantID      int64           `json:"tenant_id"`
	StartDate     string          `json:"start_date"`
	EndDate       *string         `json:"end_date"`
	MonthlyRent   decimal.Decimal `json:"monthly_rent"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
}

type updateTenancyRequest struct {
	StartDate     *string          `json:"start_date"`
	EndDate       *string          `json:"end_date"`
	MonthlyRent   *decimal.Decimal `json:"monthly_rent"`
	DepositAmount *decimal.Decimal `json:"deposit_amount"`
	IsActive      *bool            `json:"is_active"`
}

// CreateTenancy handles POST /tenancies
func (h *TenancyHandlers) CreateTenancy(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	var req createTenancyRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return common.SendValidationError(c, "start_date", "must be a date (YYYY-MM-DD)")
	}
	end, err := parseOptionalDate(req.EndDate, "end_date")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	tenancy, err := h.tenancySvc.Create(c.Request().Context(), caller, &services.CreateTenancyRequest{
		UnitID:        req.UnitID,
		TenantID:      req.TenantID,
		StartDate:     start,
		EndDate:       end,
		MonthlyRent:   req.MonthlyRent,
		DepositAmount: req.DepositAmount,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, tenancy)
}

// ListTenancies handles GET /tenancies
func (h *TenancyHandlers) ListTenancies(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	var filter models.TenancyFilter
	buildingID, err := common.QueryInt(c, "building_id", 0)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	unitID, err := common.QueryInt(c, "unit_id", 0)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	filter.BuildingID = int64(buildingID)
	filter.UnitID = int64(unitID)
	filter.ActiveOnly = c.QueryParam("active") == "true"

	limit, offset := common.Pagination(c)
	tenancies, err := h.tenancySvc.List(c.Request().Context(), caller, filter, limit, offset)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tenancies": tenancies,
		"limit":     limit,
		"offset":    offset,
	})
}

// MyTenancies handles GET /tenancies/me
func (h *TenancyHandlers) MyTenancies(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	tenancies, err := h.tenancySvc.ListForTenant(c.Request().Context(), caller)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"tenancies": tenancies})
}

// GetTenancy handles GET /tenancies/:id
func (h *TenancyHandlers) GetTenancy(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := common.ParseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	tenancy, err := h.tenancySvc.GetByID(c.Request().Context(), caller, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, tenancy)
}

// UpdateTenancy handles PUT /tenancies/:id
func (h *TenancyHandlers) UpdateTenancy(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := common.ParseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req updateTenancyRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	start, err := parseOptionalDate(req.StartDate, "start_date")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	end, err := parseOptionalDate(req.EndDate, "end_date")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	tenancy, err := h.tenancySvc.Update(c.Request().Context(), caller, id, models.TenancyUpdate{
		StartDate:     start,
		EndDate:       end,
		MonthlyRent:   req.MonthlyRent,
		DepositAmount: req.DepositAmount,
		IsActive:      req.IsActive,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, tenancy)
}

// EndTenancy handles POST /tenancies/:id/end
func (h *TenancyHandlers) EndTenancy(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := common.ParseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	tenancy, err := h.tenancySvc.End(c.Request().Context(), caller, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, tenancy)
}

// DeleteTenancy handles DELETE /tenancies/:id
func (h *TenancyHandlers) DeleteTenancy(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := common.ParseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := h.tenancySvc.Delete(c.Request().Context(), caller, id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
