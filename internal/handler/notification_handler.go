package handler

import (
	"net/http"
	"strconv"

	"showroom/internal/handler/respond"
	"showroom/internal/middleware"
	"showroom/internal/repository"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	repo *repository.NotificationRepository
}

func NewNotificationHandler(repo *repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{repo: repo}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.repo.ListByUserID(userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "list failed")
		return
	}
	unread, _ := h.repo.CountUnread(userID)
	respond.OK(c, http.StatusOK, gin.H{"notifications": list, "unreadCount": unread})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := h.repo.MarkRead(uint(id), userID); err != nil {
		respond.Error(c, http.StatusInternalServerError, "update failed")
		return
	}
	respond.Message(c, http.StatusOK, "marked read")
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if err := h.repo.MarkAllRead(userID); err != nil {
		respond.Error(c, http.StatusInternalServerError, "update failed")
		return
	}
	respond.Message(c, http.StatusOK, "all marked read")
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := h.repo.Delete(uint(id), userID); err != nil {
		respond.Error(c, http.StatusInternalServerError, "delete failed")
		return
	}
	respond.Message(c, http.StatusOK, "deleted")
}

func (h *NotificationHandler) DeleteAllRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if err := h.repo.DeleteAllRead(userID); err != nil {
		respond.Error(c, http.StatusInternalServerError, "delete failed")
		return
	}
	respond.Message(c, http.StatusOK, "read notifications deleted")
}
