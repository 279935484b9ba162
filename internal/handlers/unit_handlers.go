package handlers

import (
	"net/http"
	"strings"

	"propertyms/internal/common"
	"propertyms/internal/models"
	"propertyms/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type UnitHandlers struct {
	unitSvc services.UnitService
	logger  *logrus.Logger
}

func NewUnitHandlers(unitSvc services.UnitService, logger *logrus.Logger) *UnitHandlers {
	return &UnitHandlers{unitSvc: unitSvc, logger: logger}
}

// CreateUnit handles POST /units
func (h *UnitHandlers) CreateUnit(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req services.CreateUnitRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	unit, err := h.unitSvc.Create(c.Request().Context(), caller, &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, unit)
}

// ListUnits handles GET /units
func (h *UnitHandlers) ListUnits(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	buildingID, err := common.QueryInt(c, "building_id", 0)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	filter := models.UnitFilter{
		BuildingID: int64(buildingID),
		Status:     models.UnitStatus(strings.ToUpper(c.QueryParam("status"))),
	}
	limit, offset := common.Pagination(c)

	units, err := h.unitSvc.List(c.Request().Context(), caller, filter, limit, offset)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"units":  units,
		"limit":  limit,
		"offset": offset,
	})
}

// GetUnit handles GET /units/:id
func (h *UnitHandlers) GetUnit(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := common.ParseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	unit, err := h.unitSvc.GetByID(c.Request().Context(), caller, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, unit)
}

// UpdateUnit handles PUT /units/:id
func (h *UnitHandlers) UpdateUnit(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := common.ParseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var upd models.UnitUpdate
	if err := c.Bind(&upd); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	unit, err := h.unitSvc.Update(c.Request().Context(), caller, id, upd)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, unit)
}

// DeleteUnit handles DELETE /units/:id
func (h *UnitHandlers) DeleteUnit(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := common.ParseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := h.unitSvc.Delete(c.Request().Context(), caller, id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
