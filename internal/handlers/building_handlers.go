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

type BuildingHandlers struct {
	buildingSvc services.BuildingService
	unitSvc     services.UnitService
	logger      *logrus.Logger
}

func NewBuildingHandlers(buildingSvc services.BuildingService, unitSvc services.UnitService, logger *logrus.Logger) *BuildingHandlers {
	return &BuildingHandlers{buildingSvc: buildingSvc, unitSvc: unitSvc, logger: logger}
}

// ListBuildings handles GET /buildings
func (h *BuildingHandlers) ListBuildings(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	filter := models.BuildingFilter{Search: strings.TrimSpace(c.QueryParam("search"))}
	limit, offset := common.Pagination(c)

	buildings, err := h.buildingSvc.List(c.Request().Context(), caller, filter, limit, offset)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"buildings": buildings,
		"limit":     limit,
		"offset":    offset,
	})
}

// GetBuilding handles GET /buildings/:id
func (h *BuildingHandlers) GetBuilding(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := common.ParseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	building, err := h.buildingSvc.GetByID(c.Request().Context(), caller, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, building)
}

// CreateBuilding handles POST /buildings
func (h *BuildingHandlers) CreateBuilding(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req services.CreateBuildingRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	building, err := h.buildingSvc.Create(c.Request().Context(), caller, &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, building)
}

// UpdateBuilding handles PUT /buildings/:id
func (h *BuildingHandlers) UpdateBuilding(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := common.ParseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var upd models.BuildingUpdate
	if err := c.Bind(&upd); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	building, err := h.buildingSvc.Update(c.Request().Context(), caller, id, upd)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, building)
}

// DeleteBuilding handles DELETE /buildings/:id
func (h *BuildingHandlers) DeleteBuilding(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := common.ParseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := h.buildingSvc.Delete(c.Request().Context(), caller, id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListBuildingUnits handles GET /buildings/:id/units
func (h *BuildingHandlers) ListBuildingUnits(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := common.ParseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	limit, offset := common.Pagination(c)

	units, err := h.unitSvc.ListByBuilding(c.Request().Context(), caller, id, limit, offset)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"units":  units,
		"limit":  limit,
		"offset": offset,
	})
}
