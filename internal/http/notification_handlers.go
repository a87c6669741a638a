package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ProjectSGH/pashumitra/internal/auth"
)

// @Summary List caller's notifications
// @Tags notifications
// @Produce json
// @Param unread query bool false "Unread only"
// @Success 200 {array} domain.Notification
// @Router /notifications [get]
func (s *Server) listNotifications(c *gin.Context) {
	claims, _ := auth.Identity(c)
	unreadOnly := c.Query("unread") == "true"
	list, err := s.deps.Notifications.ListForUser(c, claims.UserID, unreadOnly)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Mark notification read
// @Tags notifications
// @Param id path int true "Notification ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /notifications/{id}/read [post]
func (s *Server) markNotificationRead(c *gin.Context) {
	claims, _ := auth.Identity(c)
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := s.deps.Notifications.MarkRead(c, id, claims.UserID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Mark all notifications read
// @Tags notifications
// @Success 204
// @Router /notifications/read-all [post]
func (s *Server) markAllNotificationsRead(c *gin.Context) {
	claims, _ := auth.Identity(c)
	if err := s.deps.Notifications.MarkAllRead(c, claims.UserID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Delete notification
// @Tags notifications
// @Param id path int true "Notification ID"
// @Success 204
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /notifications/{id} [delete]
func (s *Server) deleteNotification(c *gin.Context) {
	claims, _ := auth.Identity(c)
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := s.deps.Notifications.Delete(c, id, claims.UserID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
