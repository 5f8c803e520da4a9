package handler

import (
	"net/http"
	"strconv"
	"time"

	"showroom/internal/domain"
	"showroom/internal/handler/respond"
	"showroom/internal/middleware"
	"showroom/internal/models"
	"showroom/internal/repository"
	"showroom/internal/service"

	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	projectRepo *repository.ProjectRepository
	groupRepo   *repository.GroupRepository
	notifSvc    *service.NotificationService
}

func NewProjectHandler(projectRepo *repository.ProjectRepository, groupRepo *repository.GroupRepository, notifSvc *service.NotificationService) *ProjectHandler {
	return &ProjectHandler{projectRepo: projectRepo, groupRepo: groupRepo, notifSvc: notifSvc}
}

type projectRequest struct {
	GroupID     uint   `json:"groupId" binding:"required"`
	Name        string `json:"name" binding:"required,min=2,max=255"`
	Description string `json:"description"`
}

func (h *ProjectHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	member, err := h.groupRepo.IsMember(req.GroupID, userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "create failed")
		return
	}
	if !member {
		respond.Error(c, http.StatusForbidden, "not a member of this group")
		return
	}
	p := &models.Project{
		GroupID:     req.GroupID,
		Name:        req.Name,
		Description: req.Description,
		Status:      domain.ProjectStatusDraft,
	}
	if err := h.projectRepo.Create(p); err != nil {
		respond.Error(c, http.StatusInternalServerError, "create failed")
		return
	}
	respond.OK(c, http.StatusCreated, p)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	p, err := h.projectRepo.GetByID(uint(id))
	if err != nil {
		respond.Error(c, http.StatusNotFound, "project not found")
		return
	}
	respond.OK(c, http.StatusOK, p)
}

func (h *ProjectHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.projectRepo.List(c.Query("status"), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "list failed")
		return
	}
	respond.OK(c, http.StatusOK, list)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	p, err := h.projectRepo.GetByID(uint(id))
	if err != nil {
		respond.Error(c, http.StatusNotFound, "project not found")
		return
	}
	if ok := h.memberOrStaff(c, p.GroupID, userID); !ok {
		return
	}
	if p.Status == domain.ProjectStatusGraded {
		respond.Error(c, http.StatusConflict, "graded projects cannot be edited")
		return
	}
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Description != "" {
		p.Description = req.Description
	}
	if err := h.projectRepo.Update(p); err != nil {
		respond.Error(c, http.StatusInternalServerError, "update failed")
		return
	}
	respond.OK(c, http.StatusOK, p)
}

// Submit moves a draft to Submitted and notifies the class instructor.
func (h *ProjectHandler) Submit(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	p, err := h.projectRepo.GetByID(uint(id))
	if err != nil {
		respond.Error(c, http.StatusNotFound, "project not found")
		return
	}
	member, err := h.groupRepo.IsMember(p.GroupID, userID)
	if err != nil || !member {
		respond.Error(c, http.StatusForbidden, "not a member of this group")
		return
	}
	if p.Status != domain.ProjectStatusDraft {
		respond.Error(c, http.StatusConflict, "project already submitted")
		return
	}
	now := time.Now()
	p.Status = domain.ProjectStatusSubmitted
	p.SubmittedAt = &now
	if err := h.projectRepo.Update(p); err != nil {
		respond.Error(c, http.StatusInternalServerError, "submit failed")
		return
	}
	if g, err := h.groupRepo.GetByID(p.GroupID); err == nil {
		if cl := g.Class; cl.InstructorID != 0 {
			_ = h.notifSvc.NotifyProjectSubmitted(cl.InstructorID, p.ID, p.Name, g.Name)
		}
	}
	respond.OK(c, http.StatusOK, p)
}

// Grade records the instructor's grade and notifies every group member.
func (h *ProjectHandler) Grade(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	p, err := h.projectRepo.GetByID(uint(id))
	if err != nil {
		respond.Error(c, http.StatusNotFound, "project not found")
		return
	}
	if p.Status != domain.ProjectStatusSubmitted {
		respond.Error(c, http.StatusConflict, "project is not submitted")
		return
	}
	var req struct {
		Grade    *float64 `json:"grade" binding:"required"`
		Feedback string   `json:"feedback"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	p.Grade = req.Grade
	p.Feedback = req.Feedback
	p.Status = domain.ProjectStatusGraded
	if err := h.projectRepo.Update(p); err != nil {
		respond.Error(c, http.StatusInternalServerError, "grade failed")
		return
	}
	if g, err := h.groupRepo.GetByID(p.GroupID); err == nil {
		for _, m := range g.Members {
			_ = h.notifSvc.NotifyProjectGraded(m.UserID, p.ID, p.Name, *req.Grade)
		}
	}
	respond.OK(c, http.StatusOK, p)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := h.projectRepo.Delete(uint(id)); err != nil {
		respond.Error(c, http.StatusInternalServerError, "delete failed")
		return
	}
	respond.Message(c, http.StatusOK, "project deleted")
}

func (h *ProjectHandler) memberOrStaff(c *gin.Context, groupID, userID uint) bool {
	role := middleware.GetRole(c)
	if role == domain.RoleAdmin || role == domain.RoleInstructor {
		return true
	}
	member, err := h.groupRepo.IsMember(groupID, userID)
	if err != nil || !member {
		respond.Error(c, http.StatusForbidden, "not a member of this group")
		return false
	}
	return true
}
