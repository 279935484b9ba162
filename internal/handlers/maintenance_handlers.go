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

// MaintenanceHandlers serves tenant repair requests.
type MaintenanceHandlers struct {
	maintenanceSvc services.MaintenanceService
	logger         *logrus.Logger
}

func NewMaintenanceHandlers(maintenanceSvc services.MaintenanceService, logger *logrus.Logger) *MaintenanceHandlers {
	return &MaintenanceHandlers{maintenanceSvc: maintenanceSvc, logger: logger}
}

// ListRequests handles GET /maintenance
func (h *MaintenanceHandlers) ListRequests(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	unitID, err := common.QueryInt(c, "unit_id", 0)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	filter := models.MaintenanceFilter{
		UnitID:   int64(unitID),
		Status:   models.MaintenanceStatus(strings.ToUpper(c.QueryParam("status"))),
		Priority: models.MaintenancePriority(strings.ToUpper(c.QueryParam("priority"))),
		Category: models.MaintenanceCategory(strings.ToUpper(c.QueryParam("category"))),
	}
	limit, offset := common.Pagination(c)

	requests, err := h.maintenanceSvc.List(c.Request().Context(), caller, filter, limit, offset)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"requests": requests,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetRequest handles GET /maintenance/:id
func (h *MaintenanceHandlers) GetRequest(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := common.ParseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	req, err := h.maintenanceSvc.GetByID(c.Request().Context(), caller, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, req)
}

// CreateRequest handles POST /maintenance
func (h *MaintenanceHandlers) CreateRequest(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req services.CreateMaintenanceRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	req.Category = models.MaintenanceCategory(strings.ToUpper(string(req.Category)))
	req.Priority = models.MaintenancePriority(strings.ToUpper(string(req.Priority)))

	created, err := h.maintenanceSvc.Create(c.Request().Context(), caller, &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdateRequest handles PUT /maintenance/:id
func (h *MaintenanceHandlers) UpdateRequest(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := common.ParseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var upd models.MaintenanceUpdate
	if err := c.Bind(&upd); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	updated, err := h.maintenanceSvc.Update(c.Request().Context(), caller, id, upd)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteRequest handles DELETE /maintenance/:id
func (h *MaintenanceHandlers) DeleteRequest(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := common.ParseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := h.maintenanceSvc.Delete(c.Request().Context(), caller, id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
