package handler

import (
	"net/http"
	"strconv"

	"showroom/internal/handler/respond"
	"showroom/internal/middleware"
	"showroom/internal/models"
	"showroom/internal/repository"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatRepo     *repository.ChatRepository
	groupRepo    *repository.GroupRepository
	academicRepo *repository.AcademicRepository
}

func NewChatHandler(chatRepo *repository.ChatRepository, groupRepo *repository.GroupRepository, academicRepo *repository.AcademicRepository) *ChatHandler {
	return &ChatHandler{chatRepo: chatRepo, groupRepo: groupRepo, academicRepo: academicRepo}
}

// Rooms ensures a room exists for every group the caller belongs to and
// returns them. Rooms are created lazily on first open.
func (h *ChatHandler) Rooms(c *gin.Context) {
	userID := middleware.GetUserID(c)
	groups, err := h.groupRepo.ListByMember(userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "list failed")
		return
	}
	rooms := make([]models.ChatRoom, 0, len(groups))
	for _, g := range groups {
		className := ""
		if cl, err := h.academicRepo.GetClass(g.ClassID); err == nil {
			className = cl.Name
		}
		room, err := h.chatRepo.EnsureRoom(&g, className)
		if err != nil {
			continue
		}
		rooms = append(rooms, *room)
	}
	respond.OK(c, http.StatusOK, rooms)
}

// Messages returns room history, newest first.
func (h *ChatHandler) Messages(c *gin.Context) {
	userID := middleware.GetUserID(c)
	roomID, _ := strconv.ParseUint(c.Param("roomId"), 10, 64)
	room, err := h.chatRepo.GetRoom(uint(roomID))
	if err != nil {
		respond.Error(c, http.StatusNotFound, "room not found")
		return
	}
	member, err := h.groupRepo.IsMember(room.GroupID, userID)
	if err != nil || !member {
		respond.Error(c, http.StatusForbidden, "not a member of this group")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.chatRepo.ListMessages(uint(roomID), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "list failed")
		return
	}
	respond.OK(c, http.StatusOK, list)
}
