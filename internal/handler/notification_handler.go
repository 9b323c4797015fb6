package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	notifications := router.Group("/api/notifications", middleware.RequireRole())
	{
		notifications.GET("", h.ListNotifications)
		notifications.GET("/unread-count", h.UnreadCount)
		notifications.POST("/read-all", h.MarkAllRead)
		notifications.PUT("/:id/read", h.MarkRead)
	}

	announcements := router.Group("/api/announcements")
	{
		announcements.GET("", middleware.RequireRole(), h.ActiveAnnouncement)
		announcements.POST("", middleware.RequireRole(model.RoleAdmin), h.PublishAnnouncement)
		announcements.DELETE("", middleware.RequireRole(model.RoleAdmin), h.ClearAnnouncement)
	}
}

// ListNotifications returns the caller's notification inbox
// @Summary      List notifications
// @Tags         notifications
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	params := pagination.Parse(c)
	notifications, total, err := h.notificationService.ListNotifications(c.Request.Context(), actor, params.Page, params.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"total":         total,
		"page":          params.Page,
		"limit":         params.Limit,
	}))
}

// UnreadCount returns the caller's unread notification count
// @Summary      Unread notification count
// @Tags         notifications
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	count, err := h.notificationService.UnreadCount(c.Request.Context(), actor)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"count": count}))
}

// MarkRead marks one notification as read
// @Summary      Mark notification read
// @Tags         notifications
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  response.Response
// @Router       /api/notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notificationService.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Marked read"}))
}

// MarkAllRead marks the caller's whole inbox as read
// @Summary      Mark all notifications read
// @Tags         notifications
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	if err := h.notificationService.MarkAllRead(c.Request.Context(), actor); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "All marked read"}))
}

// ActiveAnnouncement returns the current broadcast banner
// @Summary      Active announcement
// @Tags         announcements
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.AnnouncementResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/announcements [get]
func (h *NotificationHandler) ActiveAnnouncement(c *gin.Context) {
	announcement, err := h.notificationService.ActiveAnnouncement(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, announcement))
}

// PublishAnnouncement replaces the broadcast banner
// @Summary      Publish announcement (admin)
// @Tags         announcements
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.PublishAnnouncementRequest  true  "Announcement"
// @Success      201      {object}  response.Response{data=service.AnnouncementResponse}
// @Router       /api/announcements [post]
func (h *NotificationHandler) PublishAnnouncement(c *gin.Context) {
	var req service.PublishAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	announcement, err := h.notificationService.PublishAnnouncement(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, announcement))
}

// ClearAnnouncement deactivates the broadcast banner
// @Summary      Clear announcement (admin)
// @Tags         announcements
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/announcements [delete]
func (h *NotificationHandler) ClearAnnouncement(c *gin.Context) {
	if err := h.notificationService.ClearAnnouncement(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Announcement cleared"}))
}
