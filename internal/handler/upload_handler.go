package handler

import (
	"fmt"
	"net/http"
	"strings"

	"showroom/internal/handler/respond"
	"showroom/internal/middleware"
	"showroom/internal/repository"
	"showroom/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxChatUploadBytes = 25 << 20

// UploadHandler stores chat attachments. The resulting descriptor is sent
// back to the client, which attaches it to a send_message socket frame.
type UploadHandler struct {
	groupRepo *repository.GroupRepository
	cloud     cloudinary.Client
}

func NewUploadHandler(groupRepo *repository.GroupRepository, cloud cloudinary.Client) *UploadHandler {
	return &UploadHandler{groupRepo: groupRepo, cloud: cloud}
}

type chatFileResponse struct {
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
	MimeType string `json:"mimeType"`
}

func (h *UploadHandler) ChatFile(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var form struct {
		GroupID uint `form:"groupId" binding:"required"`
	}
	if err := c.ShouldBind(&form); err != nil {
		respond.Error(c, http.StatusBadRequest, "groupId is required")
		return
	}
	member, err := h.groupRepo.IsMember(form.GroupID, userID)
	if err != nil || !member {
		respond.Error(c, http.StatusForbidden, "not a member of this group")
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "file is required")
		return
	}
	if fh.Size > maxChatUploadBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "cannot read file")
		return
	}
	defer f.Close()

	folder := fmt.Sprintf("showroom/chat/%d", form.GroupID)
	publicID := "chat_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	url, err := h.cloud.UploadRaw(c.Request.Context(), f, folder, publicID)
	if err != nil {
		respond.Error(c, http.StatusBadGateway, "upload failed")
		return
	}
	respond.OK(c, http.StatusOK, chatFileResponse{
		FileURL:  url,
		FileName: fh.Filename,
		FileSize: fh.Size,
		MimeType: fh.Header.Get("Content-Type"),
	})
}
