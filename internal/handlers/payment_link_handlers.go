package handlers

import (
	"net/http"

	"propertyms/internal/common"
	"propertyms/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type PaymentLinkHandlers struct {
	linkSvc services.PaymentLinkService
	logger  *logrus.Logger
}

func NewPaymentLinkHandlers(linkSvc services.PaymentLinkService, logger *logrus.Logger) *PaymentLinkHandlers {
	return &PaymentLinkHandlers{linkSvc: linkSvc, logger: logger}
}

// GeneratePaymentLink handles POST /payment-links
func (h *PaymentLinkHandlers) GeneratePaymentLink(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req services.GeneratePaymentLinkRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	link, err := h.linkSvc.Generate(c.Request().Context(), caller, &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, link)
}

// ListPaymentLinks handles GET /payment-links
func (h *PaymentLinkHandlers) ListPaymentLinks(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	limit, offset := common.Pagination(c)
	links, total, err := h.linkSvc.List(c.Request().Context(), caller, c.QueryParam("status"), limit, offset)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"links":  links,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}
