package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sampahku/internal/services"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// MyNotifications lists the signed-in citizen's notifications
func (h *NotificationHandler) MyNotifications(c echo.Context) error {
	items, err := h.notifications.ListCitizenNotifications(c.Request().Context(), principal(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// MarkRead marks one of the citizen's notifications as read
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	n, err := h.notifications.MarkNotificationRead(c.Request().Context(), principal(c).ID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}
