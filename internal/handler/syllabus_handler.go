package handler

import (
	"net/http"
	"strconv"
	"strings"

	"showroom/internal/handler/respond"
	"showroom/internal/models"
	"showroom/internal/repository"
	"showroom/internal/service"
	"showroom/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SyllabusHandler struct {
	syllabusRepo *repository.SyllabusRepository
	academicRepo *repository.AcademicRepository
	notifSvc     *service.NotificationService
	cloud        cloudinary.Client
}

func NewSyllabusHandler(syllabusRepo *repository.SyllabusRepository, academicRepo *repository.AcademicRepository, notifSvc *service.NotificationService, cloud cloudinary.Client) *SyllabusHandler {
	return &SyllabusHandler{syllabusRepo: syllabusRepo, academicRepo: academicRepo, notifSvc: notifSvc, cloud: cloud}
}

type syllabusRequest struct {
	ClassID     uint   `json:"classId" binding:"required"`
	Title       string `json:"title" binding:"required,min=2,max=255"`
	Description string `json:"description"`
}

// Create publishes a syllabus and notifies every enrolled student.
func (h *SyllabusHandler) Create(c *gin.Context) {
	var req syllabusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.academicRepo.GetClass(req.ClassID); err != nil {
		respond.Error(c, http.StatusNotFound, "class not found")
		return
	}
	s := &models.Syllabus{ClassID: req.ClassID, Title: req.Title, Description: req.Description}
	if err := h.syllabusRepo.Create(s); err != nil {
		respond.Error(c, http.StatusInternalServerError, "create failed")
		return
	}
	if enrollments, err := h.academicRepo.ListEnrollments(req.ClassID); err == nil {
		for _, e := range enrollments {
			_ = h.notifSvc.NotifySyllabusPublished(e.StudentID, s.ID, s.Title)
		}
	}
	respond.OK(c, http.StatusCreated, s)
}

func (h *SyllabusHandler) Get(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	s, err := h.syllabusRepo.GetByID(uint(id))
	if err != nil {
		respond.Error(c, http.StatusNotFound, "syllabus not found")
		return
	}
	respond.OK(c, http.StatusOK, s)
}

func (h *SyllabusHandler) ListByClass(c *gin.Context) {
	classID, _ := strconv.ParseUint(c.Query("classId"), 10, 64)
	if classID == 0 {
		respond.Error(c, http.StatusBadRequest, "classId required")
		return
	}
	list, err := h.syllabusRepo.ListByClass(uint(classID))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "list failed")
		return
	}
	respond.OK(c, http.StatusOK, list)
}

func (h *SyllabusHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	s, err := h.syllabusRepo.GetByID(uint(id))
	if err != nil {
		respond.Error(c, http.StatusNotFound, "syllabus not found")
		return
	}
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Title != "" {
		s.Title = req.Title
	}
	if req.Description != "" {
		s.Description = req.Description
	}
	if err := h.syllabusRepo.Update(s); err != nil {
		respond.Error(c, http.StatusInternalServerError, "update failed")
		return
	}
	respond.OK(c, http.StatusOK, s)
}

func (h *SyllabusHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := h.syllabusRepo.Delete(uint(id)); err != nil {
		respond.Error(c, http.StatusInternalServerError, "delete failed")
		return
	}
	respond.Message(c, http.StatusOK, "syllabus deleted")
}

// UploadFile accepts multipart form data: syllabusId, file,
// description?, displayOrder?.
func (h *SyllabusHandler) UploadFile(c *gin.Context) {
	syllabusID, _ := strconv.ParseUint(c.PostForm("syllabusId"), 10, 64)
	if syllabusID == 0 {
		respond.Error(c, http.StatusBadRequest, "syllabusId required")
		return
	}
	if _, err := h.syllabusRepo.GetByID(uint(syllabusID)); err != nil {
		respond.Error(c, http.StatusNotFound, "syllabus not found")
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "file required")
		return
	}
	f, err := file.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "could not read file")
		return
	}
	defer f.Close()
	folder := "showroom/syllabi/" + strconv.FormatUint(syllabusID, 10)
	publicID := "doc_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	url, err := h.cloud.UploadRaw(c.Request.Context(), f, folder, publicID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "upload failed")
		return
	}
	displayOrder, _ := strconv.Atoi(c.DefaultPostForm("displayOrder", "0"))
	sf := &models.SyllabusFile{
		SyllabusID:   uint(syllabusID),
		FileName:     file.Filename,
		FileURL:      url,
		FileSize:     file.Size,
		MimeType:     file.Header.Get("Content-Type"),
		Description:  c.PostForm("description"),
		DisplayOrder: displayOrder,
	}
	if err := h.syllabusRepo.AddFile(sf); err != nil {
		respond.Error(c, http.StatusInternalServerError, "save failed")
		return
	}
	respond.OK(c, http.StatusCreated, sf)
}

func (h *SyllabusHandler) DeleteFile(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("fileId"), 10, 64)
	f, err := h.syllabusRepo.GetFile(uint(id))
	if err != nil {
		respond.Error(c, http.StatusNotFound, "file not found")
		return
	}
	if err := h.syllabusRepo.DeleteFile(uint(id)); err != nil {
		respond.Error(c, http.StatusInternalServerError, "delete failed")
		return
	}
	_ = h.cloud.DeleteByURL(c.Request.Context(), f.FileURL)
	respond.Message(c, http.StatusOK, "file deleted")
}
