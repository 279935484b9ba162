package handlers

import (
	"net/http"

	"propertyms/internal/common"
	"propertyms/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// NotificationHandlers serves the caller's own notifications.
type NotificationHandlers struct {
	notificationSvc services.NotificationService
	logger          *logrus.Logger
}

func NewNotificationHandlers(notificationSvc services.NotificationService, logger *logrus.Logger) *NotificationHandlers {
	return &NotificationHandlers{notificationSvc: notificationSvc, logger: logger}
}

// ListNotifications handles GET /notifications
func (h *NotificationHandlers) ListNotifications(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	limit, offset := common.Pagination(c)
	unreadOnly := c.QueryParam("unread") == "true"

	notifications, err := h.notificationSvc.List(c.Request().Context(), caller.UserID, unreadOnly, limit, offset)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"limit":         limit,
		"offset":        offset,
	})
}

// UnreadCount handles GET /notifications/unread-count
func (h *NotificationHandlers) UnreadCount(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	count, err := h.notificationSvc.UnreadCount(c.Request().Context(), caller.UserID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]int{"count": count})
}

// MarkAsRead handles PUT /notifications/:id/read
func (h *NotificationHandlers) MarkAsRead(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := common.ParseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := h.notificationSvc.MarkAsRead(c.Request().Context(), id, caller.UserID); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

// MarkAllAsRead handles PUT /notifications/read-all
func (h *NotificationHandlers) MarkAllAsRead(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	updated, err := h.notificationSvc.MarkAllAsRead(c.Request().Context(), caller.UserID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"message": "All notifications marked as read", "updated": updated})
}

// DeleteNotification handles DELETE /notifications/:id
func (h *NotificationHandlers) DeleteNotification(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := common.ParseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := h.notificationSvc.Delete(c.Request().Context(), id, caller.UserID); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
